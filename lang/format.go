package lang

import (
	"fmt"
	"sort"
)

// FormatTerm formats a term for display. Unevaluated subterms inside
// lists and records render as <expr>; forcing them is the machine's
// job, not the formatter's.
func FormatTerm(t Term) string {
	switch val := t.(type) {
	case Bool:
		if val {
			return "True"
		}
		return "False"
	case Num:
		return fmt.Sprintf("%g", float64(val))
	case Str:
		return fmt.Sprintf("%q", string(val))
	case *Fun:
		return fmt.Sprintf("<fun %s>", val.Param)
	case *List:
		if len(val.Elems) == 0 {
			return "[]"
		}
		result := "["
		for i, elem := range val.Elems {
			if i > 0 {
				result += ", "
			}
			if i >= 5 {
				result += fmt.Sprintf("... (%d more)", len(val.Elems)-i)
				break
			}
			result += FormatTerm(elem)
		}
		result += "]"
		return result
	case *Record:
		if len(val.Fields) == 0 {
			return "{}"
		}
		keys := make([]string, 0, len(val.Fields))
		for k := range val.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		result := "{"
		for i, k := range keys {
			if i > 0 {
				result += ", "
			}
			if i >= 5 {
				result += fmt.Sprintf("... (%d more)", len(val.Fields)-i)
				break
			}
			result += fmt.Sprintf("%s: %s", k, FormatTerm(val.Fields[k]))
		}
		result += "}"
		return result
	case *Var:
		return val.Name
	default:
		return "<expr>"
	}
}
