// Package flagset defines the behavioral flags that can be attached to a
// resource declaration and propagated onto the key/values it produces.
//
// Every flag is addressable by a family of case-insensitive textual aliases:
// its canonical name, any registered synonyms, and a negated form of each of
// those obtained by prefixing "no" or "not". Underscores and dashes in a
// token are ignored, so "NO_OPTIONAL", "not-optional" and "nooptional" all
// denote the negation of the optional flag. Applying a negated alias clears
// the flag from the target set instead of adding it.
package flagset

import (
	"strings"
)

// Flag identifies one behavioral modifier.
type Flag int

const (
	// NotRequired marks a resource that may be absent; a not-found from the
	// loader degrades to an empty contribution instead of an error.
	// Synonym: "optional".
	NotRequired Flag = iota
	// ForbidEmpty aborts resolution when the resource contributes nothing.
	ForbidEmpty
	// Lock prevents a key's value from being overridden by later resources.
	Lock
	// AddNewOnly merges only keys that do not already exist in the result.
	AddNewOnly
	// VariablesOnly folds the resource's key/values into the variable store
	// without adding them to the final result. Synonym: "noAdd".
	VariablesOnly
	// NoAddToVariables adds key/values to the result but keeps them out of
	// the variable store.
	NoAddToVariables
	// DisableChildLoading makes any embedded resource declaration an error.
	DisableChildLoading
	// DisableInterpolation leaves raw values untouched by the interpolator.
	DisableInterpolation
	// Sensitive redacts values in any displayed or formatted form.
	Sensitive
	// NoReload excludes the resource from reload passes.
	NoReload
	// Inherit propagates the resource's flags onto child resources.
	Inherit

	flagCount
)

// canonical maps each flag to its canonical, camel-cased spelling used when
// formatting a set back to CSV.
var canonical = [flagCount]string{
	NotRequired:          "notRequired",
	ForbidEmpty:          "forbidEmpty",
	Lock:                 "lock",
	AddNewOnly:           "addNewOnly",
	VariablesOnly:        "variablesOnly",
	NoAddToVariables:     "noAddToVariables",
	DisableChildLoading:  "disableChildLoading",
	DisableInterpolation: "disableInterpolation",
	Sensitive:            "sensitive",
	NoReload:             "noReload",
	Inherit:              "inherit",
}

// synonyms lists extra positive spellings accepted for a flag beyond its
// canonical name. Negated forms are derived for these as well.
var synonyms = map[Flag][]string{
	NotRequired:   {"optional"},
	VariablesOnly: {"noAdd"},
}

// String returns the canonical spelling of the flag.
func (f Flag) String() string {
	if f < 0 || f >= flagCount {
		return "unknown"
	}
	return canonical[f]
}

var (
	positive = map[string]Flag{}
	negative = map[string]Flag{}
)

func init() {
	for f := Flag(0); f < flagCount; f++ {
		aliases := append([]string{canonical[f]}, synonyms[f]...)
		for _, a := range aliases {
			n := normalize(a)
			positive[n] = f
			negative["no"+n] = f
			negative["not"+n] = f
		}
	}
}

// normalize lower-cases a token and strips underscores and dashes so that
// spelling variants compare equal.
func normalize(tok string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(tok)) {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnknownFlagError is returned when a token matches no known flag alias.
type UnknownFlagError struct {
	Token string
}

// Error implements the error interface for UnknownFlagError.
func (e *UnknownFlagError) Error() string {
	return "flagset: unknown flag token: " + e.Token
}

// ParseToken resolves a single textual token to a flag and its polarity.
// The second return value is true for a positive spelling and false for a
// negated one.
func ParseToken(tok string) (Flag, bool, error) {
	n := normalize(tok)
	if f, ok := positive[n]; ok {
		return f, true, nil
	}
	if f, ok := negative[n]; ok {
		return f, false, nil
	}
	return 0, false, &UnknownFlagError{Token: tok}
}

// Set is an immutable bitmask of flags.
type Set uint32

// Has reports whether the flag is present in the set.
func (s Set) Has(f Flag) bool {
	return s&(1<<uint(f)) != 0
}

// With returns a copy of the set with the flag added.
func (s Set) With(f Flag) Set {
	return s | 1<<uint(f)
}

// Without returns a copy of the set with the flag removed.
func (s Set) Without(f Flag) Set {
	return s &^ (1 << uint(f))
}

// Union returns the combination of both sets.
func (s Set) Union(other Set) Set {
	return s | other
}

// IsEmpty reports whether no flag is set.
func (s Set) IsEmpty() bool {
	return s == 0
}

// Apply folds a single token into the set: a positive alias adds the flag,
// a negated alias removes it.
func (s Set) Apply(tok string) (Set, error) {
	f, pos, err := ParseToken(tok)
	if err != nil {
		return s, err
	}
	if pos {
		return s.With(f), nil
	}
	return s.Without(f), nil
}

// ParseCSV parses a comma-separated list of flag tokens into a set, applying
// tokens left to right. Blank tokens are ignored; an unrecognized token is a
// hard error.
func ParseCSV(csv string) (Set, error) {
	return Set(0).ApplyCSV(csv)
}

// ApplyCSV folds every token of a comma-separated list into the set.
func (s Set) ApplyCSV(csv string) (Set, error) {
	for _, tok := range strings.Split(csv, ",") {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		next, err := s.Apply(tok)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

// Format renders the set as a comma-separated list of canonical flag names,
// in declaration order.
func (s Set) Format() string {
	var names []string
	for f := Flag(0); f < flagCount; f++ {
		if s.Has(f) {
			names = append(names, canonical[f])
		}
	}
	return strings.Join(names, ",")
}

// String implements fmt.Stringer.
func (s Set) String() string {
	return s.Format()
}
