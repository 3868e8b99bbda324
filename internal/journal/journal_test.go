package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "edits.db"), "spots.csv")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndReadBack(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.RecordSplit(4, 11, 30))
	require.NoError(t, j.RecordJoin(4, 9))
	require.NoError(t, j.RecordSave())

	edits, err := j.Edits()
	require.NoError(t, err)
	require.Len(t, edits, 3)

	assert.Equal(t, OpSplit, edits[0].Op)
	assert.EqualValues(t, 4, edits[0].Track)
	assert.EqualValues(t, 11, edits[0].Other)
	assert.Equal(t, 30, edits[0].Frame)

	assert.Equal(t, OpJoin, edits[1].Op)
	assert.EqualValues(t, 9, edits[1].Other)

	assert.Equal(t, OpSave, edits[2].Op)
}

func TestSessionsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edits.db")

	a, err := Open(path, "spots.csv")
	require.NoError(t, err)
	require.NoError(t, a.RecordSave())
	require.NoError(t, a.Close())

	b, err := Open(path, "spots.csv")
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Session(), b.Session())

	edits, err := b.Edits()
	require.NoError(t, err)
	assert.Empty(t, edits, "a new session must not see older edits")
}
