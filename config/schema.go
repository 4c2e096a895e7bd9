package config

//go:generate go run ../tools/schema-generator -out ../schema/definitions

import (
	"encoding/json"
	"sync"

	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/schema"
	"github.com/invopop/jsonschema"
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "yaml",
	}
}

// GenerateInstallationsSchema returns the JSON Schema of the installations file.
func GenerateInstallationsSchema() ([]byte, error) {
	s := reflector().Reflect(&InstallationsFile{})
	s.Title = "packerci installations"
	s.Description = "Globally configured packer installations."
	s.Version = "http://json-schema.org/draft-07/schema#"
	return json.MarshalIndent(s, "", "  ")
}

// GenerateJobSchema returns the JSON Schema of a job file.
func GenerateJobSchema() ([]byte, error) {
	s := reflector().Reflect(&Job{})
	s.Title = "packerci job"
	s.Description = "Per-build packer configuration."
	s.Version = "http://json-schema.org/draft-07/schema#"
	return json.MarshalIndent(s, "", "  ")
}

type lazyValidator struct {
	once      sync.Once
	name      string
	generate  func() ([]byte, error)
	validator *schema.Validator
	err       error
}

func (l *lazyValidator) get() (*schema.Validator, error) {
	l.once.Do(func() {
		data, err := l.generate()
		if err != nil {
			l.err = err
			return
		}
		l.validator, l.err = schema.NewValidator(l.name, data)
	})
	return l.validator, l.err
}

var (
	installationsValidator = &lazyValidator{name: "installations.json", generate: GenerateInstallationsSchema}
	jobValidator           = &lazyValidator{name: "job.json", generate: GenerateJobSchema}
)

func validateDocument(lv *lazyValidator, doc map[string]interface{}) error {
	v, err := lv.get()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
	}
	if err := v.Validate(doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed").
			WithDetail("schema", v.Name())
	}
	return nil
}
