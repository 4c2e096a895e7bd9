package config

import (
	"fmt"
	"regexp"

	"github.com/grovetools/packerci/errors"
)

var (
	installationNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
	variableNameRegex     = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)
)

// ValidateInstallations checks each installation and that names are unique.
func ValidateInstallations(installations []Installation) error {
	seen := make(map[string]bool, len(installations))
	for idx := range installations {
		inst := &installations[idx]
		if err := inst.Validate(); err != nil {
			return err
		}
		if seen[inst.Name] {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("duplicate installation name '%s'", inst.Name)).
				WithDetail("installation", inst.Name)
		}
		seen[inst.Name] = true
	}
	return nil
}

// Validate checks an installation record.
func (i *Installation) Validate() error {
	if !installationNameRegex.MatchString(i.Name) {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("invalid installation name '%s'", i.Name)).
			WithDetail("installation", i.Name)
	}
	if i.Mode != "" && i.Mode != ModeText && i.Mode != ModeFile {
		return errors.UnknownTemplateMode("installation", string(i.Mode)).
			WithDetail("installation", i.Name)
	}
	if err := validateVariables(i.Variables); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid variables for installation '%s'", i.Name)).
			WithDetail("installation", i.Name)
	}
	return nil
}

// Validate checks a job record.
func (j *Job) Validate() error {
	if j.Installation == "" {
		return errors.New(errors.ErrCodeConfigValidation, "job must name a packer installation")
	}
	if j.Mode != "" && !j.Mode.Valid() {
		return errors.UnknownTemplateMode("job", string(j.Mode))
	}
	if err := validateVariables(j.Variables); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid job variables")
	}
	return nil
}

func validateVariables(entries []VariableEntry) error {
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !variableNameRegex.MatchString(entry.Name) {
			return fmt.Errorf("invalid variable name '%s'", entry.Name)
		}
		if seen[entry.Name] {
			return fmt.Errorf("duplicate variable name '%s'", entry.Name)
		}
		seen[entry.Name] = true
	}
	return nil
}
