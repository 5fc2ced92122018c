package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), set)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := writePrompts(t, `
system: |
  Answer strictly from the manual.
  {context}
`)
	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Answer strictly from the manual.\n{context}\n", set.System)
	assert.Equal(t, Default().Contextualize, set.Contextualize)
	assert.Equal(t, Default().Completion, set.Completion)
}

func TestLoadRejectsMissingPlaceholders(t *testing.T) {
	_, err := Load(writePrompts(t, "system: no placeholder here\n"))
	assert.ErrorContains(t, err, "{context}")

	_, err = Load(writePrompts(t, "completion: no placeholder\n"))
	assert.ErrorContains(t, err, "{prompt}")
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writePrompts(t, "system: [unclosed\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
