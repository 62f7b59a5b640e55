package mcmanifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredJavaMajorDefaultsToEight(t *testing.T) {
	m := &VersionManifest{}
	assert.Equal(t, 8, m.RequiredJavaMajor())
}

func TestRequiredJavaMajorUsesManifestValue(t *testing.T) {
	m := &VersionManifest{JavaVersion: &struct {
		Component    string `json:"component"`
		MajorVersion int    `json:"majorVersion"`
	}{Component: "java-runtime-gamma", MajorVersion: 17}}
	assert.Equal(t, 17, m.RequiredJavaMajor())
}
