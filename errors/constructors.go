package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PackerError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PackerError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InstallationNotFound creates an error for a job naming an unknown installation
func InstallationNotFound(name string) *PackerError {
	return New(ErrCodeInstallationNotFound, fmt.Sprintf("packer installation '%s' not found", name)).
		WithDetail("installation", name)
}

// UnknownTemplateMode creates an error for a template mode outside text/file/global
func UnknownTemplateMode(scope, mode string) *PackerError {
	return New(ErrCodeTemplateModeUnknown, fmt.Sprintf("unknown template mode %q in %s configuration", mode, scope)).
		WithDetail("scope", scope).
		WithDetail("mode", mode)
}

// ExecutableNotFound creates an error for an installation whose home holds no packer binary
func ExecutableNotFound(installation, home string) *PackerError {
	return New(ErrCodeExecutableNotFound,
		fmt.Sprintf("tool installation failed for '%s': no packer executable in %s", installation, home)).
		WithDetail("installation", installation).
		WithDetail("home", home)
}

// MaterializationFailed creates an error for a temp file that could not be written
func MaterializationFailed(name string, err error) *PackerError {
	return Wrap(err, ErrCodeMaterializationFailed, fmt.Sprintf("file entry generation failed: %s", name)).
		WithDetail("entry", name)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *PackerError {
	packerErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("execution failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		packerErr = packerErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return packerErr
}

// CommandExited creates an error for a process that ran but did not exit cleanly
func CommandExited(cmd string, exitCode int) *PackerError {
	return New(ErrCodeCommandFailed, fmt.Sprintf("execution failed with exit code %d: %s", exitCode, cmd)).
		WithDetail("command", cmd).
		WithDetail("exitCode", exitCode)
}

// CommandTimeout creates a timeout error for a packer run
func CommandTimeout(cmd string, timeout string) *PackerError {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command did not finish within %s: %s", timeout, cmd)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout)
}
