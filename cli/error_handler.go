package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/packerci/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	t := DefaultTheme
	fail := t.Error.Render("✗")

	var packerErr *errors.PackerError
	stderrors.As(err, &packerErr)
	detail := func(key string) interface{} {
		if packerErr == nil {
			return ""
		}
		return packerErr.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(out, "%s Configuration not found: %v\n", fail, detail("path"))
		fmt.Fprintf(out, "Pass --config or create packerci.yml with an 'installations' list.\n")

	case errors.ErrCodeInstallationNotFound:
		fmt.Fprintf(out, "%s Packer installation '%v' not found\n", fail, detail("installation"))
		fmt.Fprintf(out, "Run 'packerci installations list' to see configured installations.\n")

	case errors.ErrCodeExecutableNotFound:
		fmt.Fprintf(out, "%s No packer executable for installation '%v' in %v\n", fail, detail("installation"), detail("home"))
		fmt.Fprintf(out, "Check the installation home or set packer_home on the job.\n")

	case errors.ErrCodeTemplateModeUnknown:
		fmt.Fprintf(out, "%s Unknown template mode %q in %v configuration\n", fail, detail("mode"), detail("scope"))
		fmt.Fprintf(out, "Use one of: global, text, file.\n")

	case errors.ErrCodeCommandTimeout:
		fmt.Fprintf(out, "%s packer did not finish within %v\n", fail, detail("timeout"))

	case errors.ErrCodeCommandFailed:
		if code := detail("exitCode"); code != "" && code != nil {
			fmt.Fprintf(out, "%s packer exited with code %v\n", fail, code)
		} else {
			fmt.Fprintf(out, "%s Execution failed: %v\n", fail, err)
		}

	default:
		fmt.Fprintf(out, "%s Error: %v\n", fail, err)
	}

	if h.Verbose && packerErr != nil {
		fmt.Fprintf(out, "\nError details:\n%s\n", packerErr.ToJSON())
	}
	return err
}

// ExitCode maps an error to a process exit code. A packer exit code is passed
// through; configuration problems exit 2; anything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var packerErr *errors.PackerError
	if stderrors.As(err, &packerErr) {
		if code, ok := packerErr.Details["exitCode"].(int); ok && code > 0 {
			return code
		}
	}
	if errors.IsConfiguration(err) {
		return 2
	}
	return 1
}
