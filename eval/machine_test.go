package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/needle-lang/needle/lang"
)

func evalString(t *testing.T, src string) (lang.Term, Stats, error) {
	t.Helper()
	term, err := lang.ParseExprString("test", src)
	require.NoError(t, err)
	m := New()
	out, evalErr := m.Eval(term, Env{})
	return out, m.Stats(), evalErr
}

func requireEval(t *testing.T, src string) lang.Term {
	t.Helper()
	out, _, err := evalString(t, src)
	require.NoError(t, err)
	return out
}

func TestEvalLiterals(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Num(5)), requireEval(t, "5"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "True"))
	assert.Equal(t, lang.Term(lang.Str("hi")), requireEval(t, `"hi"`))
}

func TestEvalArithmetic(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Num(7)), requireEval(t, "1 + 2 * 3"))
	assert.Equal(t, lang.Term(lang.Num(2)), requireEval(t, "6 / 3"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "2 < 3"))
	assert.Equal(t, lang.Term(lang.Str("ab")), requireEval(t, `"a" + "b"`))
}

func TestEvalApplication(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Num(3)), requireEval(t, "(lambda x, y: x + y)(1, 2)"))

	// Partial application yields a function.
	out := requireEval(t, "(lambda x, y: x + y)(1)")
	_, ok := out.(*lang.Fun)
	assert.True(t, ok)
}

func TestEvalLaziness(t *testing.T) {
	// The argument diverges if forced; the function never uses it.
	out, _, err := evalString(t, "(lambda x: 42)(1 / 0)")
	require.NoError(t, err)
	assert.Equal(t, lang.Term(lang.Num(42)), out)

	// Only the selected conditional branch is evaluated.
	assert.Equal(t, lang.Term(lang.Num(3)), requireEval(t, "3 if True else 1 / 0"))
}

func TestEvalSharing(t *testing.T) {
	// let-bound work runs once; the second use hits the updated cell.
	term, err := lang.ParseExprString("test", "x + x")
	require.NoError(t, err)
	let := &lang.Let{Name: "x", Bound: &lang.Op2{Op: lang.Add, Left: lang.Num(1), Right: lang.Num(2)}, Body: term}

	m := New()
	out, evalErr := m.Eval(let, Env{})
	require.NoError(t, evalErr)
	assert.Equal(t, lang.Term(lang.Num(6)), out)
	assert.Equal(t, 1, m.Stats().ThunkUpdates)
}

func TestEvalConditionDesugar(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, "True and False"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "False or True"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "not False"))
}

func TestEvalUnaryBuiltins(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "is_num(4)"))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, `is_num("x")`))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "is_fun(lambda x: x)"))
	assert.Equal(t, lang.Term(lang.Num(1)), requireEval(t, "head([1, 2, 3])"))
	assert.Equal(t, lang.Term(lang.Num(3)), requireEval(t, "length([1, 2, 3])"))
	assert.Equal(t, lang.Term(lang.Num(2)), requireEval(t, "head(tail([1, 2, 3]))"))
}

func TestEvalConcat(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Str("abcd")), requireEval(t, `concat("ab", "cd")`))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "concat([1, 2], [3]) == [1, 2, 3]"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "concat([], []) == []"))

	// The joined halves keep their own environments.
	assert.Equal(t, lang.Term(lang.Bool(true)),
		requireEval(t, "(lambda x: (lambda y: concat([x], [y]))(2))(1) == [1, 2]"))

	// Elements stay unevaluated until something consumes them.
	assert.Equal(t, lang.Term(lang.Num(1)), requireEval(t, "head(concat([1], [1 / 0]))"))

	_, _, err := evalString(t, "concat(1, 2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concat")

	_, _, err = evalString(t, `concat([1], "x")`)
	require.Error(t, err)
}

func TestEvalEqScalars(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "1 == 1"))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, "1 == 2"))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, `1 == "1"`))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "1 != 2"))
}

func TestEvalEqLists(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "[1, [2, \"a\"]] == [1, [2, \"a\"]]"))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, "[1, 2] == [1, 3]"))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, "[1, 2] == [1, 2, 3]"))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "[] == []"))

	// Elements are evaluated on demand during comparison.
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "[1 + 1, 4] == [2, 2 + 2]"))

	out, stats, err := evalString(t, "[[1], [2]] == [[1], [2]]")
	require.NoError(t, err)
	assert.Equal(t, lang.Term(lang.Bool(true)), out)
	assert.Equal(t, 3, stats.EqDecompositions)
}

func TestEvalEqRecords(t *testing.T) {
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, `{"a": 1, "b": 2} == {"b": 2, "a": 1}`))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, `{"a": 1} == {"a": 2}`))
	assert.Equal(t, lang.Term(lang.Bool(false)), requireEval(t, `{"a": 1} == {"b": 1}`))
	assert.Equal(t, lang.Term(lang.Bool(true)), requireEval(t, "{} == {}"))
}

func TestEvalEqFunctionsError(t *testing.T) {
	_, _, err := evalString(t, "(lambda x: x) == (lambda y: y)")
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Msg, "cannot be compared")
}

func TestEvalEqDiscardsMootChecks(t *testing.T) {
	// The element pairs are checked from the tail; once 1 == 2 fails,
	// the function pair is discarded wholesale and never compared, so
	// no incomparability error surfaces.
	out, _, err := evalString(t, "[lambda x: x, 1] == [lambda y: y, 2]")
	require.NoError(t, err)
	assert.Equal(t, lang.Term(lang.Bool(false)), out)
}

func TestEvalUnboundIdentifier(t *testing.T) {
	_, _, err := evalString(t, "nope")
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Msg, "unbound identifier")
	assert.NotNil(t, evalErr.Span)
}

func TestEvalNotAFunction(t *testing.T) {
	m := New()
	app := &lang.App{Fn: lang.Num(1), Arg: lang.Num(2)}
	_, err := m.Eval(app, Env{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-function")
}

func TestEvalDivisionByZero(t *testing.T) {
	_, _, err := evalString(t, "1 / 0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestEvalErrorCarriesTrace(t *testing.T) {
	term, err := lang.ParseExprString("test", "x")
	require.NoError(t, err)
	let := &lang.Let{
		Name:  "x",
		Bound: &lang.Op1{Op: lang.Not, Arg: lang.Num(1)},
		Body:  term,
	}
	m := New()
	_, evalErr := m.Eval(let, Env{})
	require.Error(t, evalErr)
	var ee *EvalError
	require.ErrorAs(t, evalErr, &ee)
	require.NotEmpty(t, ee.Trace)
	assert.Equal(t, "x", ee.Trace[len(ee.Trace)-1].Name)
}

func TestEvalStats(t *testing.T) {
	_, stats, err := evalString(t, "(lambda x: x + x)(2 + 3)")
	require.NoError(t, err)
	assert.Greater(t, stats.Steps, 0)
	assert.Greater(t, stats.MaxStack, 0)
	assert.Equal(t, 1, stats.ThunkUpdates)
}
