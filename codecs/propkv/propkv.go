// Package propkv implements the properties text representation, the default
// codec for loaded resources: one key/value pair per line, separated by '='
// or ':', with comment lines and backslash line continuations.
package propkv

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
)

// MediaType identifies the properties representation.
const MediaType = "text/x-java-properties"

// Codec parses and formats properties text.
type Codec struct{}

// MediaTypes implements registry.Codec.
func (Codec) MediaTypes() []string { return []string{MediaType, "text/plain"} }

// Extensions implements registry.Codec.
func (Codec) Extensions() []string { return []string{".properties", ".props", ".conf"} }

// Parse decodes properties text into ordered pairs. Lines starting with '#'
// or '!' are comments; a trailing backslash continues the value on the next
// line.
func (Codec) Parse(data []byte) ([]kv.Pair, error) {
	var (
		out     []kv.Pair
		logical string
		cont    bool
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !cont {
			trimmed := strings.TrimLeft(line, " \t")
			if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
				continue
			}
			line = trimmed
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		if continued, rest := splitContinuation(line); continued {
			logical += rest
			cont = true
			continue
		}
		logical += line
		out = append(out, splitPair(logical))
		logical = ""
		cont = false
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("propkv: reading line %d: %w", lineNo, err)
	}
	if cont {
		// Trailing continuation at EOF: the accumulated text is the pair.
		out = append(out, splitPair(logical))
	}
	return out, nil
}

// splitContinuation reports whether the line ends in an odd number of
// backslashes, in which case the final one is a continuation marker.
func splitContinuation(line string) (bool, string) {
	n := 0
	for n < len(line) && line[len(line)-1-n] == '\\' {
		n++
	}
	if n%2 == 1 {
		return true, line[:len(line)-1]
	}
	return false, line
}

// splitPair splits a logical line at the first unescaped '=' or ':'. A line
// with no separator is a key with an empty value.
func splitPair(line string) kv.Pair {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '=', ':':
			return kv.Pair{
				Key:   unescape(strings.TrimRight(line[:i], " \t")),
				Value: unescape(strings.TrimLeft(line[i+1:], " \t")),
			}
		}
	}
	return kv.Pair{Key: unescape(strings.TrimRight(line, " \t"))}
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Format renders a resolved batch as properties text, one pair per line.
// Sensitive values render as the redaction placeholder.
func (Codec) Format(batch []kv.KeyValue) ([]byte, error) {
	var b bytes.Buffer
	for _, k := range batch {
		b.WriteString(escape(k.Key(), true))
		b.WriteByte('=')
		b.WriteString(escape(k.Display(), false))
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\\':
			b.WriteString(`\\`)
		case isKey && (c == '=' || c == ':' || c == ' '):
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Module registers the codec and makes it the default representation.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterCodec(Codec{})
	r.SetDefaultMediaType(MediaType)
}
