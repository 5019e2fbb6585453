package differ

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContentDiffer_Compare(t *testing.T) {
	cd := NewContentDiffer(DefaultConfig(), zerolog.Nop())

	tests := []struct {
		name     string
		previous string
		current  string
		want     Stats
	}{
		{
			name:     "identical",
			previous: "a\nb\n",
			current:  "a\nb\n",
			want:     Stats{Identical: true},
		},
		{
			name:     "one line replaced",
			previous: "price: 10\nstock: 4\n",
			current:  "price: 12\nstock: 4\n",
			want:     Stats{LinesAdded: 1, LinesDeleted: 1},
		},
		{
			name:     "lines appended",
			previous: "a\n",
			current:  "a\nb\nc\n",
			want:     Stats{LinesAdded: 2},
		},
		{
			name:     "from empty",
			previous: "",
			current:  "$ 9.99",
			want:     Stats{LinesAdded: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cd.Compare(tt.previous, tt.current))
		})
	}
}

func TestContentDiffer_TooLarge(t *testing.T) {
	cd := NewContentDiffer(Config{LineBased: true, MaxContentBytes: 8}, zerolog.Nop())

	got := cd.Compare("short", strings.Repeat("x", 9))
	assert.Equal(t, Stats{TooLarge: true}, got)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("x"))
	assert.Equal(t, 1, countLines("x\n"))
	assert.Equal(t, 2, countLines("x\ny"))
}
