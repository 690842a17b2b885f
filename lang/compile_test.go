package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFileBindings(t *testing.T) {
	src := `
x = 1
y = x + 1

def inc(n):
	return n + 1

inc(y)
`
	c, err := CompileFile("test.ndl", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "test.ndl", c.File)
	require.Len(t, c.Bindings, 3)
	assert.Equal(t, "x", c.Bindings[0].Name)
	assert.Equal(t, "y", c.Bindings[1].Name)
	assert.Equal(t, "inc", c.Bindings[2].Name)
	require.NotNil(t, c.Main)

	app, ok := c.Main.(*App)
	require.True(t, ok)
	fn, ok := app.Fn.(*Var)
	require.True(t, ok)
	assert.Equal(t, "inc", fn.Name)
}

func TestCompileDefBecomesCurriedFun(t *testing.T) {
	src := `
def add3(a, b, c):
	return a + b + c
`
	c, err := CompileFile("test.ndl", []byte(src))
	require.NoError(t, err)
	require.Len(t, c.Bindings, 1)

	f1, ok := c.Bindings[0].Term.(*Fun)
	require.True(t, ok)
	assert.Equal(t, "a", f1.Param)
	f2, ok := f1.Body.(*Fun)
	require.True(t, ok)
	assert.Equal(t, "b", f2.Param)
	f3, ok := f2.Body.(*Fun)
	require.True(t, ok)
	assert.Equal(t, "c", f3.Param)
}

func TestCompileDefBodyBindings(t *testing.T) {
	src := `
def f(x):
	a = x + 1
	b = a * 2
	return b
`
	c, err := CompileFile("test.ndl", []byte(src))
	require.NoError(t, err)

	fun, ok := c.Bindings[0].Term.(*Fun)
	require.True(t, ok)
	let, ok := fun.Body.(*Let)
	require.True(t, ok)
	assert.Equal(t, "a", let.Name)
	inner, ok := let.Body.(*Let)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Name)
}

func TestCompileDefRequiresReturn(t *testing.T) {
	src := `
def f(x):
	a = x + 1
`
	_, err := CompileFile("test.ndl", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end in a return")
}

func TestCompileBareExpressionMustBeLast(t *testing.T) {
	src := `
1 + 1
x = 2
`
	_, err := CompileFile("test.ndl", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final statement")
}

func TestParseExprBuiltins(t *testing.T) {
	term, err := ParseExprString("test", "head([1, 2])")
	require.NoError(t, err)
	op, ok := term.(*Op1)
	require.True(t, ok)
	assert.Equal(t, Head, op.Op)

	term, err = ParseExprString("test", "concat([1], [2])")
	require.NoError(t, err)
	op2, ok := term.(*Op2)
	require.True(t, ok)
	assert.Equal(t, Concat, op2.Op)

	_, err = ParseExprString("test", "concat([1])")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly two arguments")

	// Unknown names stay ordinary calls.
	term, err = ParseExprString("test", "helper(1)")
	require.NoError(t, err)
	_, ok = term.(*App)
	assert.True(t, ok)
}

func TestParseExprDesugaring(t *testing.T) {
	term, err := ParseExprString("test", "a and b")
	require.NoError(t, err)
	iff, ok := term.(*If)
	require.True(t, ok)
	assert.Equal(t, Term(Bool(false)), iff.Else)

	term, err = ParseExprString("test", "a != b")
	require.NoError(t, err)
	not, ok := term.(*Op1)
	require.True(t, ok)
	assert.Equal(t, Not, not.Op)
	eq, ok := not.Arg.(*Op2)
	require.True(t, ok)
	assert.Equal(t, Eq, eq.Op)
}

func TestParseExprSpans(t *testing.T) {
	term, err := ParseExprString("spans.ndl", "foo")
	require.NoError(t, err)
	v, ok := term.(*Var)
	require.True(t, ok)
	require.NotNil(t, v.Pos)
	assert.Equal(t, "spans.ndl", v.Pos.File)
	assert.Equal(t, int32(1), v.Pos.Line)
}

func TestParseExprRejectsKeywordArgs(t *testing.T) {
	_, err := ParseExprString("test", "f(x=1)")
	require.Error(t, err)
}
