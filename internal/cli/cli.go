// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vk/bootcfg/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := pflag.NewFlagSet("bootcfg", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bootcfg - resolve layered configuration resources into final key/value form.

Usage:
  bootcfg [options] URI [URI...]

Arguments:
  URI
    Resource URIs resolved in order, e.g. file:app.properties, env:, stdin:.
    Later resources override earlier ones; resources may declare further
    resources to load.

Options:
`)
		fmt.Fprintln(output, flagSet.FlagUsages())
	}

	varFlags := flagSet.StringArray("var", nil, "External variable as name=value; repeatable.")
	argFlags := flagSet.StringArray("arg", nil, "key=value token served by the args: scheme; repeatable.")
	outputFlag := flagSet.StringP("output", "o", "text", "Output format: 'text', 'properties', 'json', 'yaml', 'hcl' or 'url'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colored output.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	vars := make(map[string]string, len(*varFlags))
	for _, v := range *varFlags {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid --var %q: expected name=value", v)}
		}
		vars[name] = value
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Seeds:     flagSet.Args(),
		Vars:      vars,
		Args:      *argFlags,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Output:    strings.ToLower(*outputFlag),
		NoColor:   *noColorFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}
