package selector

import "strings"

// TokenKind classifies a tag found by the Tokenizer.
type TokenKind int

const (
	// TokenEOF means no further complete tag exists.
	TokenEOF TokenKind = iota
	TokenStartTag
	TokenEndTag
	TokenSelfClosingTag
	// TokenSkip covers comments, doctypes and processing instructions.
	TokenSkip
)

// Token is one "<...>" construct. Start is the index of '<' and End the index
// just past '>'.
type Token struct {
	Kind    TokenKind
	Name    string
	ID      string
	Classes []string
	Start   int
	End     int
}

type tokenizerState int

const (
	stateText tokenizerState = iota
	stateTag
	stateDone
)

// Tokenizer walks markup tag by tag. Text between tags is skipped.
type Tokenizer struct {
	src      string
	pos      int
	tagStart int
	state    tokenizerState
}

// NewTokenizer starts tokenizing src at offset 0.
func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Reset moves the tokenizer to an absolute offset.
func (t *Tokenizer) Reset(pos int) {
	t.pos = pos
	t.state = stateText
}

// Next returns the next tag. A '<' without a later '>' ends tokenization.
func (t *Tokenizer) Next() Token {
	for {
		switch t.state {
		case stateText:
			if t.pos >= len(t.src) {
				t.state = stateDone
				continue
			}
			open := strings.IndexByte(t.src[t.pos:], '<')
			if open < 0 {
				t.state = stateDone
				continue
			}
			t.tagStart = t.pos + open
			t.state = stateTag
		case stateTag:
			closeRel := strings.IndexByte(t.src[t.tagStart+1:], '>')
			if closeRel < 0 {
				t.state = stateDone
				continue
			}
			closeIdx := t.tagStart + 1 + closeRel
			tok := classify(t.src[t.tagStart+1 : closeIdx])
			tok.Start = t.tagStart
			tok.End = closeIdx + 1
			t.pos = tok.End
			t.state = stateText
			return tok
		default:
			return Token{Kind: TokenEOF, Start: len(t.src), End: len(t.src)}
		}
	}
}

// classify inspects the text between '<' and '>'.
func classify(content string) Token {
	switch {
	case strings.HasPrefix(content, "/"):
		return Token{Kind: TokenEndTag, Name: strings.ToLower(strings.TrimSpace(content[1:]))}
	case strings.HasPrefix(content, "!"), strings.HasPrefix(content, "?"):
		return Token{Kind: TokenSkip}
	}

	kind := TokenStartTag
	if strings.HasSuffix(content, "/") {
		kind = TokenSelfClosingTag
		content = content[:len(content)-1]
	}
	content = strings.TrimSpace(content)

	nameEnd := 0
	for nameEnd < len(content) && !isSpace(content[nameEnd]) {
		nameEnd++
	}

	tok := Token{Kind: kind, Name: strings.ToLower(content[:nameEnd])}
	parseAttributes(content[nameEnd:], &tok)
	return tok
}

// parseAttributes fills in id and class from quoted values. Other attributes
// and unquoted values are skipped.
func parseAttributes(s string, tok *Token) {
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		start := i
		for i < len(s) && s[i] != '=' && !isSpace(s[i]) {
			i++
		}
		key := strings.ToLower(s[start:i])

		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			if i == start {
				i++
			}
			continue
		}
		i++
		for i < len(s) && isSpace(s[i]) {
			i++
		}

		var value string
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			quote := s[i]
			i++
			end := strings.IndexByte(s[i:], quote)
			if end < 0 {
				value = s[i:]
				i = len(s)
			} else {
				value = s[i : i+end]
				i += end + 1
			}
		} else {
			// unquoted values are skipped, never interpreted
			for i < len(s) && !isSpace(s[i]) {
				i++
			}
			continue
		}

		switch key {
		case "id":
			tok.ID = strings.ToLower(strings.TrimSpace(value))
		case "class":
			tok.Classes = strings.Fields(strings.ToLower(value))
		}
	}
}
