package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/packerci/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the encoding from the file extension. Anything that is
// not .toml is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// ${VAR:-default} only. Bare $VAR and ${VAR} are build-time packer macros and
// survive loading untouched.
var defaultedEnvRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*):-([^}]*)\}`)

func expandEnvDefaults(content string) string {
	return defaultedEnvRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := defaultedEnvRegex.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// LoadInstallations reads an installations file.
func LoadInstallations(path string) (*InstallationsFile, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	file, err := LoadInstallationsFromBytes(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.GetCode(err), "failed to load installations").
			WithDetail("path", path)
	}
	return file, nil
}

// LoadInstallationsFromBytes parses, validates and defaults an installations
// document.
func LoadInstallationsFromBytes(data []byte, format Format) (*InstallationsFile, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	if raw, ok := doc["installations"].([]interface{}); ok {
		for idx, item := range raw {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if err := normalizeRecord(m); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid installation at index %d", idx))
			}
		}
	}

	if err := validateDocument(installationsValidator, doc); err != nil {
		return nil, err
	}

	var file InstallationsFile
	if err := decodeInto(doc, &file); err != nil {
		return nil, err
	}
	for idx := range file.Installations {
		file.Installations[idx].SetDefaults()
	}
	if err := ValidateInstallations(file.Installations); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadJob reads a job file.
func LoadJob(path string) (*Job, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	job, err := LoadJobFromBytes(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.GetCode(err), "failed to load job").
			WithDetail("path", path)
	}
	return job, nil
}

// LoadJobFromBytes parses, validates and defaults a job document.
func LoadJobFromBytes(data []byte, format Format) (*Job, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	if err := normalizeRecord(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid job")
	}
	if err := validateDocument(jobValidator, doc); err != nil {
		return nil, err
	}

	var job Job
	if err := decodeInto(doc, &job); err != nil {
		return nil, err
	}
	job.SetDefaults()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	return data, nil
}

func decodeDocument(data []byte, format Format) (map[string]interface{}, error) {
	expanded := []byte(expandEnvDefaults(string(data)))

	doc := map[string]interface{}{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

func decodeInto(doc map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create mapstructure decoder")
	}
	if err := decoder.Decode(doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}
	return nil
}

// templateModeObject is the nested template selector older configurations
// persisted instead of the flat template_mode/template/template_text keys.
type templateModeObject struct {
	Value            string `mapstructure:"value"`
	JSONTemplate     string `mapstructure:"jsonTemplate"`
	JSONTemplateText string `mapstructure:"jsonTemplateText"`
}

// normalizeRecord rewrites legacy keys of an installation or job record in
// place: the object form of template_mode and var_file_name on variables.
func normalizeRecord(m map[string]interface{}) error {
	if nested, ok := m["template_mode"].(map[string]interface{}); ok {
		var obj templateModeObject
		if err := mapstructure.Decode(nested, &obj); err != nil {
			return fmt.Errorf("decode template_mode: %w", err)
		}
		m["template_mode"] = obj.Value
		if obj.JSONTemplate != "" {
			if _, set := m["template"]; !set {
				m["template"] = obj.JSONTemplate
			}
		}
		if obj.JSONTemplateText != "" {
			if _, set := m["template_text"]; !set {
				m["template_text"] = obj.JSONTemplateText
			}
		}
	}

	if vars, ok := m["variables"].([]interface{}); ok {
		for _, v := range vars {
			entry, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			if legacy, has := entry["var_file_name"]; has {
				if _, set := entry["name"]; !set {
					entry["name"] = legacy
				}
				delete(entry, "var_file_name")
			}
		}
	}
	return nil
}
