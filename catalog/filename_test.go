package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilenameEntitiesSuffixExtension(t *testing.T) {
	p := ParseFilename("sub-01_ses-01_task-rest_bold.nii.gz")
	assert.Equal(t, map[string]string{"sub": "01", "ses": "01", "task": "rest"}, p.Entities)
	assert.Equal(t, "bold", p.Suffix)
	assert.Equal(t, ".nii.gz", p.Extension)
}

func TestParseFilenameScansSuffix(t *testing.T) {
	p := ParseFilename("sub-01_ses-01_scans.tsv")
	assert.Equal(t, "scans", p.Suffix)
}

func TestParseFilenameSidecarNoExtensionMismatch(t *testing.T) {
	p := ParseFilename("task-rest_bold.json")
	assert.Equal(t, map[string]string{"task": "rest"}, p.Entities)
	assert.Equal(t, "bold", p.Suffix)
	assert.Equal(t, ".json", p.Extension)
}

func TestParseFilenameNoEntities(t *testing.T) {
	p := ParseFilename("participants.tsv")
	assert.Empty(t, p.Entities)
	assert.Equal(t, "participants", p.Suffix)
}

func TestDatatypeOf(t *testing.T) {
	assert.Equal(t, "func", DatatypeOf("/data/sub-01/func/sub-01_task-rest_bold.nii.gz"))
	assert.Equal(t, "", DatatypeOf("/data/sub-01/sub-01_scans.tsv"))
}

func TestEntitySubset(t *testing.T) {
	full := map[string]string{"sub": "01", "ses": "01", "task": "rest"}
	assert.True(t, EntitySubset(map[string]string{"sub": "01"}, full))
	assert.True(t, EntitySubset(map[string]string{}, full))
	assert.False(t, EntitySubset(map[string]string{"sub": "02"}, full))
	assert.False(t, EntitySubset(map[string]string{"run": "01"}, full))
}
