package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRegex(t *testing.T) {
	p, compileErr := CompileRegex(`(\w+)@(\w+)`)
	require.Nil(t, compileErr)
	assert.Equal(t, 2, p.Groups())

	got, ok, err := p.FirstMatch("mail: ana@example and bob@test")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ana", got)
}

func TestCompileRegex_Errors(t *testing.T) {
	for _, expr := range []string{`(`, `[a-`, `*x`} {
		t.Run(expr, func(t *testing.T) {
			p, err := CompileRegex(expr)
			assert.Nil(t, p)
			require.NotNil(t, err)
			assert.Equal(t, expr, err.Pattern)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestPattern_NonCapturingGroupUsesWholeMatch(t *testing.T) {
	p, compileErr := CompileRegex(`(?:v)\d+`)
	require.Nil(t, compileErr)
	assert.Equal(t, 0, p.Groups())

	got, ok, err := p.FirstMatch("release v42 out")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v42", got)
}

func TestPattern_NoMatch(t *testing.T) {
	p, compileErr := CompileRegex(`\d+`)
	require.Nil(t, compileErr)

	_, ok, err := p.FirstMatch("none here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPattern_TimeoutIsAnError(t *testing.T) {
	p, compileErr := CompileRegex(`^(a+)+$`)
	require.Nil(t, compileErr)
	p.re.MatchTimeout = 50 * time.Millisecond

	_, ok, err := p.FirstMatch(strings.Repeat("a", 40) + "!")
	assert.False(t, ok)
	assert.Error(t, err)
}
