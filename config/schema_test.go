package config

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/packerci/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInstallationsSchema(t *testing.T) {
	data, err := GenerateInstallationsSchema()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "packerci installations", doc["title"])
	assert.Contains(t, string(data), `"template_mode"`)
	assert.Contains(t, string(data), `"template_text"`)
	assert.Contains(t, string(data), `"variables"`)

	v, err := schema.NewValidator("installations.json", data)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(map[string]interface{}{
		"installations": []interface{}{
			map[string]interface{}{"name": "default", "home": "/opt/packer", "template_text": "{}"},
		},
	}))
	assert.Error(t, v.Validate(map[string]interface{}{}))
}

func TestGenerateJobSchema(t *testing.T) {
	data, err := GenerateJobSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"use_debug"`)
	assert.Contains(t, string(data), `"change_dir"`)
	assert.Contains(t, string(data), `"packer_home"`)

	v, err := schema.NewValidator("job.json", data)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(map[string]interface{}{
		"installation":  "default",
		"template_mode": "global",
	}))
	assert.Error(t, v.Validate(map[string]interface{}{"template_mode": "global"}))
}
