// Package sed implements the restricted two-command stream-editor language
// applied to keys of a key/value batch: an optional /regex/ address followed
// by either a substitution (s<delim>pattern<delim>replacement<delim>[g]) or
// a delete (d).
package sed

import "strings"

// tokenKind enumerates the token types the lexer produces.
type tokenKind int

const (
	tokAddress tokenKind = iota // the regex text between slashes
	tokCommand                  // a single command letter
	tokPattern                  // substitution pattern
	tokReplacement              // substitution replacement
	tokFlags                    // trailing substitution flags, possibly empty
	tokEOF
)

// token is one lexical unit of an expression.
type token struct {
	kind tokenKind
	text string
}

// lexer tokenizes one filter expression. It is delimiter-driven: the
// substitution parts are lexed against whatever delimiter character the
// author chose.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.input[l.pos]
}

// lexAddress consumes a /regex/ address. The opening slash must already be
// at the current position. A backslash escapes a slash inside the regex.
func (l *lexer) lexAddress() (token, error) {
	if l.peek() != '/' {
		return token{}, errf(Internal, l.input, "lexAddress called off a slash")
	}
	l.pos++
	var b strings.Builder
	for !l.eof() {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
			b.WriteByte('/')
			l.pos += 2
			continue
		}
		if c == '/' {
			l.pos++
			return token{kind: tokAddress, text: b.String()}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, &SyntaxError{Category: UnterminatedAddress, Input: l.input}
}

// lexCommand consumes the single command letter.
func (l *lexer) lexCommand() (token, error) {
	if l.eof() {
		return token{}, &SyntaxError{Category: MissingCommand, Input: l.input}
	}
	c := l.input[l.pos]
	l.pos++
	return token{kind: tokCommand, text: string(c)}, nil
}

// lexDelimited consumes text up to the next unescaped occurrence of delim.
// A backslash escapes the delimiter; any other backslash sequence is kept
// verbatim for the regex engine.
func (l *lexer) lexDelimited(delim byte, kind tokenKind) (token, error) {
	var b strings.Builder
	for !l.eof() {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			if l.input[l.pos+1] == delim {
				b.WriteByte(delim)
			} else {
				b.WriteByte('\\')
				b.WriteByte(l.input[l.pos+1])
			}
			l.pos += 2
			continue
		}
		if c == delim {
			l.pos++
			return token{kind: kind, text: b.String()}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, &SyntaxError{Category: MissingDelimiter, Input: l.input}
}

// lexRest consumes everything remaining as the flags token.
func (l *lexer) lexRest() token {
	text := l.input[l.pos:]
	l.pos = len(l.input)
	return token{kind: tokFlags, text: text}
}
