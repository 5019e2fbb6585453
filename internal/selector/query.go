// Package selector implements a small CSS-like selector matcher over raw markup.
//
// It understands an optional tag name, .class tokens, a #id token and an
// optional :nth-of-type(N) pseudo-class. Matching is case-insensitive and
// returns the trimmed inner text of the first matching element.
package selector

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrEmptySelector is returned for an empty or whitespace-only selector.
	ErrEmptySelector = errors.New("empty selector")
	// ErrInvalidSelector is returned when no tag, id or class could be parsed.
	ErrInvalidSelector = errors.New("selector has no tag, id or class")
	// ErrNoMatch is returned when no element satisfies the selector.
	ErrNoMatch = errors.New("no match")
)

const nthOfTypePrefix = ":nth-of-type("

// Query is a parsed selector. Zero values mean "unconstrained".
type Query struct {
	Tag       string
	ID        string
	Classes   []string
	NthOfType int
}

// ParseSelector parses the supported selector subset. Tag, id and classes are
// lowercased.
func ParseSelector(selector string) (Query, error) {
	var q Query

	working := strings.TrimSpace(selector)
	if working == "" {
		return q, ErrEmptySelector
	}

	working, q.NthOfType = stripNthOfType(working)

	i := 0
	for i < len(working) {
		switch c := working[i]; {
		case c == '#':
			i++
			start := i
			for i < len(working) && working[i] != '.' && working[i] != '#' {
				i++
			}
			q.ID = strings.TrimSpace(working[start:i])
		case c == '.':
			i++
			start := i
			for i < len(working) && working[i] != '.' && working[i] != '#' {
				i++
			}
			if cls := strings.TrimSpace(working[start:i]); cls != "" {
				q.Classes = append(q.Classes, strings.ToLower(cls))
			}
		case !isSpace(c):
			start := i
			for i < len(working) && working[i] != '.' && working[i] != '#' && !isSpace(working[i]) {
				i++
			}
			q.Tag = working[start:i]
		default:
			i++
		}
	}

	q.Tag = strings.ToLower(q.Tag)
	q.ID = strings.ToLower(q.ID)

	if q.Tag == "" && q.ID == "" && len(q.Classes) == 0 {
		return q, ErrInvalidSelector
	}
	return q, nil
}

// stripNthOfType removes the first :nth-of-type(N) token and returns N.
// A token without a closing parenthesis is left in place.
func stripNthOfType(s string) (string, int) {
	idx := strings.Index(s, nthOfTypePrefix)
	if idx < 0 {
		return s, 0
	}
	closeIdx := strings.IndexByte(s[idx:], ')')
	if closeIdx < 0 {
		return s, 0
	}
	closeIdx += idx

	n := leadingInt(strings.TrimSpace(s[idx+len(nthOfTypePrefix) : closeIdx]))
	return s[:idx] + s[closeIdx+1:], n
}

// leadingInt parses an optionally signed run of leading digits, 0 if none.
func leadingInt(s string) int {
	sign := 1
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<30 {
			break
		}
	}
	return sign * n
}

// Matches reports whether an element with the given properties satisfies q.
// tag and id must already be lowercased.
func (q Query) Matches(tag, id string, classes []string, nth int) bool {
	if q.Tag != "" && q.Tag != tag {
		return false
	}
	if q.ID != "" && q.ID != id {
		return false
	}
	for _, want := range q.Classes {
		if !containsString(classes, want) {
			return false
		}
	}
	if q.NthOfType > 0 && q.NthOfType != nth {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c < unicode.MaxASCII && unicode.IsSpace(rune(c))
}
