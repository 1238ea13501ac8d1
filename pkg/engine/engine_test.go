package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		g, evalErrs, err := NewEngine().Evaluate(src)
		require.NoError(t, err)
		require.Empty(t, evalErrs)
		require.NotNil(t, g)
		assert.Equal(t, 0, g.NodeCount())
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	source := `
(def x 10)
(def y 20)
(+ x y)
`
	g, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, g)
	assert.Equal(t, 0, g.NodeCount())
}

func TestEvaluateSyntaxError(t *testing.T) {
	g, evalErrs, err := NewEngine().Evaluate("(+ 1 2")
	require.NoError(t, err, "syntax errors are not fatal")
	assert.Nil(t, g)
	require.NotEmpty(t, evalErrs)
	assert.NotEmpty(t, evalErrs[0].Message)
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	g, evalErrs, err := NewEngine().Evaluate("(+ 1 undefined-symbol)")
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.NotEmpty(t, evalErrs)
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate("(+ 1 2)\n(+ 3")
	require.NoError(t, err)
	require.NotEmpty(t, evalErrs)

	// Line info depends on the zygomys message format; when present it
	// must be positive.
	e := evalErrs[0]
	assert.NotEmpty(t, e.Message)
	assert.GreaterOrEqual(t, e.Line, 0)
}

func TestEvalErrorString(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	assert.Equal(t, "line 5: something went wrong", e.Error())

	e = EvalError{Message: "no location"}
	assert.Equal(t, "no location", e.Error())
}

func TestEngineTimeoutDefault(t *testing.T) {
	assert.Equal(t, EvalTimeout, NewEngine().Timeout)
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "timed out after 20ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitDiscardsStaleGeneration(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)
	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second)
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad", 3, "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantLine, errs[0].Line)
			assert.True(t, strings.Contains(errs[0].Message, tt.wantMsg), errs[0].Message)
		})
	}
}
