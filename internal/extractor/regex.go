package extractor

import (
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single search.
const matchTimeout = 2 * time.Second

// Pattern is a compiled ECMAScript-flavoured regular expression.
type Pattern struct {
	re *regexp2.Regexp
}

// CompileError carries the compiler's diagnostic for an invalid pattern.
type CompileError struct {
	Pattern string
	Message string
}

func (e *CompileError) Error() string {
	return "invalid regex: " + e.Message
}

// CompileRegex compiles expr with ECMAScript semantics. It never panics.
func CompileRegex(expr string) (*Pattern, *CompileError) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, &CompileError{Pattern: expr, Message: err.Error()}
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{re: re}, nil
}

// Groups returns the number of capture groups, excluding the whole match.
func (p *Pattern) Groups() int {
	return len(p.re.GetGroupNumbers()) - 1
}

// FirstMatch returns the first capture group of the leftmost match, or the
// whole match when the pattern has no groups. An unset group yields "".
// The error is non-nil only when the search was aborted, for instance by
// the match timeout.
func (p *Pattern) FirstMatch(s string) (string, bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	if p.Groups() > 0 {
		return m.GroupByNumber(1).String(), true, nil
	}
	return m.String(), true, nil
}
