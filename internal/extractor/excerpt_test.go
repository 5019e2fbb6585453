package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", Excerpt("a\nb\rc"))
	assert.Equal(t, "", Excerpt(""))

	long := strings.Repeat("é", 130)
	assert.Equal(t, strings.Repeat("é", ExcerptLength), Excerpt(long))
}
