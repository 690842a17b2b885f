package lang

import "fmt"

// Span is a source location carried by terms and stack frames for
// diagnostics. A nil *Span means the term was synthesized and has no
// source position.
type Span struct {
	File string
	Line int32
	Col  int32
}

func (s *Span) String() string {
	if s == nil {
		return "<unknown>"
	}
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Col)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}
