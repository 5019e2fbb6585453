package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     Query
	}{
		{name: "id", selector: "#price", want: Query{ID: "price"}},
		{name: "tag and class", selector: "p.value", want: Query{Tag: "p", Classes: []string{"value"}}},
		{name: "nth of type", selector: "li:nth-of-type(2)", want: Query{Tag: "li", NthOfType: 2}},
		{name: "mixed case", selector: "  DIV#Main.Card.HOT ", want: Query{Tag: "div", ID: "main", Classes: []string{"card", "hot"}}},
		{name: "class only", selector: ".banner", want: Query{Classes: []string{"banner"}}},
		{name: "nth with spaces", selector: "td:nth-of-type( 3 )", want: Query{Tag: "td", NthOfType: 3}},
		{name: "nth non numeric", selector: "td:nth-of-type(x)", want: Query{Tag: "td"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelector(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelector_Failures(t *testing.T) {
	_, err := ParseSelector("")
	assert.ErrorIs(t, err, ErrEmptySelector)

	_, err = ParseSelector("   \t ")
	assert.ErrorIs(t, err, ErrEmptySelector)

	_, err = ParseSelector("#")
	assert.ErrorIs(t, err, ErrInvalidSelector)

	_, err = ParseSelector(":nth-of-type(2)")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestQuery_Matches(t *testing.T) {
	q := Query{Tag: "li", Classes: []string{"a", "b"}, NthOfType: 2}

	assert.True(t, q.Matches("li", "", []string{"b", "x", "a"}, 2))
	assert.False(t, q.Matches("li", "", []string{"a"}, 2))
	assert.False(t, q.Matches("li", "", []string{"a", "b"}, 1))
	assert.False(t, q.Matches("ul", "", []string{"a", "b"}, 2))

	assert.True(t, Query{ID: "x"}.Matches("span", "x", nil, 7))
}
