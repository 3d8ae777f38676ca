package sed

import "fmt"

// Category classifies a syntax error raised by the tokenizer or parser.
type Category int

const (
	// InvalidCommand reports an unknown or malformed command.
	InvalidCommand Category = iota
	// UnterminatedAddress reports a /regex/ address with no closing slash.
	UnterminatedAddress
	// MissingDelimiter reports a substitution with too few delimiters.
	MissingDelimiter
	// InvalidFlag reports an unsupported substitution flag.
	InvalidFlag
	// MissingCommand reports an address with no command following it.
	MissingCommand
	// Internal reports an invariant violation in the parser itself.
	Internal
)

// String returns the stable description of the category.
func (c Category) String() string {
	switch c {
	case InvalidCommand:
		return "invalid command"
	case UnterminatedAddress:
		return "invalid regex address"
	case MissingDelimiter:
		return "missing closing delimiter"
	case InvalidFlag:
		return "invalid flag"
	case MissingCommand:
		return "command expected after address"
	case Internal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// SyntaxError is the error type for every failure in this package. It
// always carries the offending input expression.
type SyntaxError struct {
	Category Category
	// Input is the full expression that failed to parse.
	Input string
	// Detail optionally narrows down the failure.
	Detail string
}

// Error implements the error interface for SyntaxError.
func (e *SyntaxError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("sed: %s: %s in %q", e.Category, e.Detail, e.Input)
	}
	return fmt.Sprintf("sed: %s in %q", e.Category, e.Input)
}

func errf(c Category, input, format string, args ...any) *SyntaxError {
	return &SyntaxError{Category: c, Input: input, Detail: fmt.Sprintf(format, args...)}
}
