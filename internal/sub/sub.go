// Package sub implements the variable-substitution language used in loaded
// values: ${name} references with default values (${name:-fallback}), nested
// references inside variable names, escaping, and cycle detection.
package sub

import (
	"errors"
	"slices"
	"strings"
)

// Lookup resolves a variable name to its value. Implementations are layered;
// the interpolator consults them in order and uses the first hit.
type Lookup interface {
	LookupVar(name string) (string, bool)
}

// Options controls the substitution syntax.
type Options struct {
	// Start and End delimit a variable reference.
	Start string
	End   string
	// DefaultSep separates the variable name from its default value inside
	// the delimiters.
	DefaultSep string
	// Escape suppresses expansion of the single reference it precedes.
	Escape byte
	// Nested enables resolution of references inside variable names.
	Nested bool
}

// DefaultOptions returns the standard ${name:-default} syntax with backslash
// escaping and nested names enabled.
func DefaultOptions() Options {
	return Options{
		Start:      "${",
		End:        "}",
		DefaultSep: ":-",
		Escape:     '\\',
		Nested:     true,
	}
}

// Interpolator expands variable references against a layered lookup.
type Interpolator struct {
	opts    Options
	lookups []Lookup
}

// New creates an Interpolator. Lookups are consulted in the given order.
func New(opts Options, lookups ...Lookup) *Interpolator {
	if opts.Start == "" {
		opts = DefaultOptions()
	}
	return &Interpolator{opts: opts, lookups: lookups}
}

// MissingVariableError reports a reference to an undefined variable with no
// default value. It is always fatal and must never be swallowed by recovery
// logic further up the stack.
type MissingVariableError struct {
	// Name is the unresolvable variable.
	Name string
	// Key is the key whose value contained the reference.
	Key string
}

// Error implements the error interface for MissingVariableError.
func (e *MissingVariableError) Error() string {
	return "sub: no value for variable ${" + e.Name + "} referenced by key " + e.Key
}

// CycleError reports a circular chain of variable references.
type CycleError struct {
	// Chain is the substitution path, ending with the variable that closed
	// the cycle.
	Chain []string
}

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return "sub: circular variable reference: " + strings.Join(e.Chain, " -> ")
}

// Interpolate expands every variable reference in raw. The key is carried
// for diagnostics only. Values containing no '$' are returned unchanged
// without scanning. A reference to an undefined variable with no default
// is a MissingVariableError.
func (ip *Interpolator) Interpolate(key, raw string) (string, error) {
	if !strings.ContainsRune(raw, '$') {
		return raw, nil
	}
	return ip.expandText(raw, key, nil, true)
}

// TryInterpolate expands what it can: a reference to a variable that is not
// defined yet is left in the text verbatim instead of failing, so the
// caller can re-expand once more variables become available. Cycles are
// still an error.
func (ip *Interpolator) TryInterpolate(key, raw string) (string, error) {
	if !strings.ContainsRune(raw, '$') {
		return raw, nil
	}
	return ip.expandText(raw, key, nil, false)
}

// expandText scans text left to right, replacing each balanced reference.
// The stack holds the variable names currently being substituted, outermost
// first, and is used to detect cycles.
func (ip *Interpolator) expandText(text, key string, stack []string, strict bool) (string, error) {
	start := ip.opts.Start
	var b strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == ip.opts.Escape && strings.HasPrefix(text[i+1:], start) {
			// Escaped start marker: emit it literally, drop the escape.
			b.WriteString(start)
			i += 1 + len(start)
			continue
		}
		if strings.HasPrefix(text[i:], start) {
			expr, next, ok := ip.scanBalanced(text, i)
			if !ok {
				// No balanced end marker; the rest of the text is literal.
				b.WriteString(text[i:])
				break
			}
			replaced, err := ip.resolveExpr(expr, key, stack, strict)
			if err != nil {
				var missing *MissingVariableError
				if !strict && errors.As(err, &missing) {
					// Leave the unresolved reference in place for a later
					// pass.
					b.WriteString(text[i:next])
					i = next
					continue
				}
				return "", err
			}
			b.WriteString(replaced)
			i = next
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String(), nil
}

// scanBalanced starts at a start marker and walks forward counting nested
// start markers until the matching end marker. It returns the inner
// expression and the offset just past the end marker.
func (ip *Interpolator) scanBalanced(text string, i int) (string, int, bool) {
	start, end := ip.opts.Start, ip.opts.End
	depth := 1
	j := i + len(start)
	for j < len(text) {
		switch {
		case strings.HasPrefix(text[j:], start):
			depth++
			j += len(start)
		case strings.HasPrefix(text[j:], end):
			depth--
			if depth == 0 {
				return text[i+len(start) : j], j + len(end), true
			}
			j += len(end)
		default:
			j++
		}
	}
	return "", 0, false
}

// resolveExpr resolves one name expression (the text between the markers):
// nested references inside the name are expanded first, then the name is
// split from its default, looked up, and the substituted value is itself
// re-expanded.
func (ip *Interpolator) resolveExpr(expr, key string, stack []string, strict bool) (string, error) {
	if ip.opts.Nested && strings.Contains(expr, ip.opts.Start) {
		resolved, err := ip.expandText(expr, key, stack, strict)
		if err != nil {
			return "", err
		}
		expr = resolved
	}

	name, def, hasDef := ip.splitDefault(expr)

	if slices.Contains(stack, name) {
		return "", &CycleError{Chain: append(slices.Clone(stack), name)}
	}

	for _, l := range ip.lookups {
		if value, ok := l.LookupVar(name); ok {
			return ip.expandText(value, key, append(stack, name), strict)
		}
	}

	if hasDef {
		return ip.expandText(def, key, stack, strict)
	}
	return "", &MissingVariableError{Name: name, Key: key}
}

// splitDefault splits a name expression on the first unescaped default
// separator. Escaped separators are unescaped in both halves.
func (ip *Interpolator) splitDefault(expr string) (name, def string, hasDef bool) {
	sep := ip.opts.DefaultSep
	esc := string(ip.opts.Escape) + sep
	for p := 0; p+len(sep) <= len(expr); p++ {
		if expr[p:p+len(sep)] != sep {
			continue
		}
		if p > 0 && expr[p-1] == ip.opts.Escape {
			continue
		}
		return strings.ReplaceAll(expr[:p], esc, sep),
			strings.ReplaceAll(expr[p+len(sep):], esc, sep),
			true
	}
	return strings.ReplaceAll(expr, esc, sep), "", false
}
