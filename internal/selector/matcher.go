package selector

import "strings"

// SelectInnerText returns the trimmed text between the opening and matching
// closing tag of the first element satisfying selector. Inner markup is kept
// verbatim.
func SelectInnerText(html, selector string) (string, error) {
	q, err := ParseSelector(selector)
	if err != nil {
		return "", err
	}
	return q.InnerText(html)
}

// InnerText runs an already parsed query over html.
//
// nth-of-type is counted among siblings: each open element gets its own
// per-tag counter scope, discarded on any end tag. Void elements written
// without a trailing slash open a scope that is never closed.
func (q Query) InnerText(html string) (string, error) {
	scopes := []map[string]int{{}}

	tz := NewTokenizer(html)
	for {
		tok := tz.Next()
		switch tok.Kind {
		case TokenEOF:
			return "", ErrNoMatch
		case TokenSkip:
			continue
		case TokenEndTag:
			if len(scopes) > 1 {
				scopes = scopes[:len(scopes)-1]
			}
			continue
		}

		counters := scopes[len(scopes)-1]
		counters[tok.Name]++
		nth := counters[tok.Name]

		if q.Matches(tok.Name, tok.ID, tok.Classes, nth) {
			if tok.Kind == TokenSelfClosingTag {
				return "", nil
			}
			if closeStart, ok := findClosingTag(html, tok.End, tok.Name); ok {
				return strings.TrimSpace(html[tok.End:closeStart]), nil
			}
			// unbalanced; keep looking past this element
		}

		if tok.Kind == TokenStartTag {
			scopes = append(scopes, map[string]int{})
		}
	}
}

// findClosingTag scans from contentStart for the end tag that balances an
// element named name. It returns the index of that end tag's '<'.
// Self-closing children do not change the depth.
func findClosingTag(html string, contentStart int, name string) (int, bool) {
	depth := 1
	tz := NewTokenizer(html)
	tz.Reset(contentStart)
	for {
		tok := tz.Next()
		switch tok.Kind {
		case TokenEOF:
			return 0, false
		case TokenStartTag:
			depth++
		case TokenEndTag:
			if tok.Name == name {
				depth--
				if depth == 0 {
					return tok.Start, true
				}
			}
		}
	}
}
