package eval

import "github.com/needle-lang/needle/lang"

// CallEntry records one diagnostic call-stack event: a variable being
// forced (Name set) or an application site (Name empty).
type CallEntry struct {
	Name string
	Span *lang.Span
}

// CallStack tracks where evaluation currently is, for error reports
// only; it plays no part in control flow. Cont frames snapshot its
// depth at suspension time and restore it on resume.
type CallStack []CallEntry

func (c *CallStack) PushVar(name string, span *lang.Span) {
	*c = append(*c, CallEntry{Name: name, Span: span})
}

func (c *CallStack) PushApp(span *lang.Span) {
	*c = append(*c, CallEntry{Span: span})
}

func (c CallStack) Len() int {
	return len(c)
}

func (c *CallStack) TruncateTo(n int) {
	if n < len(*c) {
		*c = (*c)[:n]
	}
}

// Trace returns a copy of the current entries for attaching to errors.
func (c CallStack) Trace() []CallEntry {
	out := make([]CallEntry, len(c))
	copy(out, c)
	return out
}
