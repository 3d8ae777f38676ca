package sed

import (
	"regexp"
)

// Command is one parsed sed command. Execute is applied to a key and
// returns the (possibly transformed) key; ok=false means the key/value pair
// is to be dropped from the batch.
type Command interface {
	Execute(key string) (result string, ok bool)
}

// Parse tokenizes and parses one expression into an executable Command.
func Parse(expr string) (Command, error) {
	p := &parser{lex: newLexer(expr), input: expr}
	return p.parse()
}

// parser consumes the token stream produced by the lexer.
type parser struct {
	lex   *lexer
	input string
}

func (p *parser) parse() (Command, error) {
	p.lex.skipSpace()
	if p.lex.eof() {
		return nil, errf(InvalidCommand, p.input, "empty expression")
	}

	var addr *regexp.Regexp
	if p.lex.peek() == '/' {
		tok, err := p.lex.lexAddress()
		if err != nil {
			return nil, err
		}
		addr, err = regexp.Compile(tok.text)
		if err != nil {
			return nil, errf(UnterminatedAddress, p.input, "cannot compile address: %v", err)
		}
		p.lex.skipSpace()
		if p.lex.eof() {
			return nil, &SyntaxError{Category: MissingCommand, Input: p.input}
		}
	}

	cmd, err := p.lex.lexCommand()
	if err != nil {
		return nil, err
	}
	if cmd.kind != tokCommand {
		return nil, errf(Internal, p.input, "lexer produced token kind %d for a command", cmd.kind)
	}

	switch cmd.text {
	case "s":
		return p.parseSubstitute(addr)
	case "d":
		return p.parseDelete(addr)
	default:
		return nil, errf(InvalidCommand, p.input, "unsupported command %q", cmd.text)
	}
}

// parseSubstitute parses s<delim>pattern<delim>replacement<delim>[g]. The
// delimiter is whatever non-whitespace, non-backslash character follows the
// s.
func (p *parser) parseSubstitute(addr *regexp.Regexp) (Command, error) {
	if p.lex.eof() {
		return nil, errf(MissingDelimiter, p.input, "no delimiter after s")
	}
	delim := p.lex.peek()
	if delim == ' ' || delim == '\t' || delim == '\\' {
		return nil, errf(MissingDelimiter, p.input, "illegal delimiter %q", string(delim))
	}
	p.lex.pos++

	pat, err := p.lex.lexDelimited(delim, tokPattern)
	if err != nil {
		return nil, err
	}
	repl, err := p.lex.lexDelimited(delim, tokReplacement)
	if err != nil {
		return nil, err
	}
	flags := p.lex.lexRest()

	global := false
	switch flags.text {
	case "":
	case "g":
		global = true
	default:
		return nil, errf(InvalidFlag, p.input, "unsupported flag %q", flags.text)
	}

	re, err := regexp.Compile(pat.text)
	if err != nil {
		return nil, errf(InvalidCommand, p.input, "cannot compile pattern: %v", err)
	}
	return &substitute{addr: addr, pattern: re, replacement: repl.text, global: global}, nil
}

// parseDelete parses the bare d command; trailing text is an error.
func (p *parser) parseDelete(addr *regexp.Regexp) (Command, error) {
	p.lex.skipSpace()
	if !p.lex.eof() {
		return nil, errf(InvalidCommand, p.input, "trailing text after d")
	}
	return &del{addr: addr}, nil
}

// substitute rewrites matching keys. With no address it applies to every
// key; with an address it applies only to keys the address finds a match in.
type substitute struct {
	addr        *regexp.Regexp
	pattern     *regexp.Regexp
	replacement string
	global      bool
}

// Execute implements Command.
func (c *substitute) Execute(key string) (string, bool) {
	if c.addr != nil && !c.addr.MatchString(key) {
		return key, true
	}
	if c.global {
		return c.pattern.ReplaceAllString(key, c.replacement), true
	}
	loc := c.pattern.FindStringSubmatchIndex(key)
	if loc == nil {
		return key, true
	}
	expanded := c.pattern.ExpandString(nil, c.replacement, key, loc)
	return key[:loc[0]] + string(expanded) + key[loc[1]:], true
}

// del drops matching keys. With no address it drops every key.
type del struct {
	addr *regexp.Regexp
}

// Execute implements Command.
func (c *del) Execute(key string) (string, bool) {
	if c.addr == nil || c.addr.MatchString(key) {
		return "", false
	}
	return key, true
}
