package eval

import (
	"fmt"
	"strings"

	"github.com/needle-lang/needle/lang"
)

// EvalError is a runtime evaluation failure: an unbound identifier, a
// type mismatch, an application of a non-function, or a comparison of
// incomparable values. Wrong-variant stack pops are not errors; they
// are normal control flow signalled by a false ok result.
type EvalError struct {
	Msg   string
	Span  *lang.Span
	Trace []CallEntry
}

func (e *EvalError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Span != nil {
		fmt.Fprintf(&b, " at %s", e.Span)
	}
	for i := len(e.Trace) - 1; i >= 0; i-- {
		entry := e.Trace[i]
		if entry.Name != "" {
			fmt.Fprintf(&b, "\n  while forcing %s (%s)", entry.Name, entry.Span)
		} else {
			fmt.Fprintf(&b, "\n  in call at %s", entry.Span)
		}
	}
	return b.String()
}

func (m *Machine) errorf(span *lang.Span, format string, args ...any) *EvalError {
	return &EvalError{
		Msg:   fmt.Sprintf(format, args...),
		Span:  span,
		Trace: m.calls.Trace(),
	}
}
