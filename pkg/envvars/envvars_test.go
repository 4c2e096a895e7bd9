package envvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	env := EnvVars{"BUILD_NUMBER": "42", "WORKSPACE": "/ws", "JOB.NAME": "ami"}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"no macros", "no macros"},
		{"build-$BUILD_NUMBER", "build-42"},
		{"${WORKSPACE}/templates", "/ws/templates"},
		{"${JOB.NAME}-$BUILD_NUMBER", "ami-42"},
		{"$MISSING stays", "$MISSING stays"},
		{"${MISSING} stays", "${MISSING} stays"},
		{"%{BUILD_NUMBER} is not a macro", "%{BUILD_NUMBER} is not a macro"},
		{"cost $", "cost $"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, env.Expand(tt.input), tt.input)
	}
}

func TestFromListAndOverlay(t *testing.T) {
	base := FromList([]string{"A=1", "B=2", "broken", "=x", "C=a=b"})
	assert.Equal(t, EnvVars{"A": "1", "B": "2", "C": "a=b"}, base)

	merged := base.Overlay(EnvVars{"B": "20", "D": "4"})
	assert.Equal(t, "20", merged["B"])
	assert.Equal(t, "4", merged["D"])
	assert.Equal(t, "2", base["B"], "overlay must not mutate the receiver")

	assert.Equal(t, []string{"A=1", "B=20", "C=a=b", "D=4"}, merged.List())
}
