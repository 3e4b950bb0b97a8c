package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npaicli/pkg/contracts/domain"
)

func TestLoadMissingFileIsEmptyLedger(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "Consigne_NPAI.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.IsPending("export1.csv", false))
}

func TestIsPending(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "ledger.xlsx"))
	require.NoError(t, err)
	l.MarkProcessed("export1.csv", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)

	assert.False(t, l.IsPending("export1.csv", false), "recorded file is skipped")
	assert.True(t, l.IsPending("export2.csv", false), "unknown file is pending")
	assert.True(t, l.IsPending("export1.csv", true), "forceFull re-reads everything")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	l, err := Load(path)
	require.NoError(t, err)
	l.MarkProcessed("a.csv", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)
	l.MarkProcessed("b.csv", time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)
	require.NoError(t, l.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Len())

	entries := reloaded.Entries()
	assert.Equal(t, "a.csv", entries[0].File)
	assert.Equal(t, domain.StatusProcessed, entries[0].Status)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "b.csv", entries[1].File)
}

func TestDuplicateFileNameLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	l, err := Load(path)
	require.NoError(t, err)
	l.MarkProcessed("a.csv", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)
	l.MarkProcessed("b.csv", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)
	// Forced rebuild re-records a.csv later in the same run.
	l.MarkProcessed("a.csv", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), domain.StatusProcessed)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.csv", entries[0].File, "first-appearance order preserved")
	assert.Equal(t, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), entries[0].Date, "last write wins")

	require.NoError(t, l.Save())
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
}
