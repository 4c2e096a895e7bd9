package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateModeIs(t *testing.T) {
	assert.True(t, ModeText.Is("text"))
	assert.True(t, ModeFile.Is("file"))
	assert.True(t, ModeGlobal.Is("global"))

	assert.False(t, ModeText.Is(""))
	assert.False(t, ModeText.Is("TEXT"))
	assert.False(t, ModeFile.Is("text"))
	assert.False(t, TemplateMode("").Is(""))
}

func TestTemplateModeString(t *testing.T) {
	for _, m := range Modes {
		assert.Equal(t, string(m), m.String())
	}
}

func TestParseTemplateMode(t *testing.T) {
	for _, s := range []string{"global", "text", "file"} {
		m, ok := ParseTemplateMode(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, m.String())
	}

	_, ok := ParseTemplateMode("bogus")
	assert.False(t, ok)
	_, ok = ParseTemplateMode("")
	assert.False(t, ok)

	assert.True(t, ModeFile.Valid())
	assert.False(t, TemplateMode("inline").Valid())
}

func TestIsGlobalChecked(t *testing.T) {
	assert.True(t, IsGlobalChecked(ModeGlobal))
	assert.True(t, IsGlobalChecked(""))
	assert.True(t, IsGlobalChecked("bogus"))
	assert.False(t, IsGlobalChecked(ModeFile))
	assert.False(t, IsGlobalChecked(ModeText))
}
