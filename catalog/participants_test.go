package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParticipantsMissingFileIsNotError(t *testing.T) {
	dir := t.TempDir()
	bag, err := loadParticipants(filepath.Join(dir, "participants.tsv"))
	require.NoError(t, err)
	require.Empty(t, bag)
}

func TestLoadParticipantsParsesRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "participants.tsv")
	writeFile(t, path, "participant_id\tage\tsex\tgroup\n"+
		"sub-01\t25\tM\tcontrol\n"+
		"sub-02\tn/a\tF\tpatient\n")

	bag, err := loadParticipants(path)
	require.NoError(t, err)
	require.Len(t, bag, 2)

	sub01 := bag["01"]
	require.NotNil(t, sub01)
	require.Equal(t, "25", sub01["age"].RawString())
	require.Equal(t, "control", sub01["group"].RawString())

	sub02 := bag["02"]
	require.True(t, sub02["age"].IsNull())
}

func TestStripSubPrefix(t *testing.T) {
	require.Equal(t, "01", stripSubPrefix("sub-01"))
	require.Equal(t, "control01", stripSubPrefix("control01"))
}
