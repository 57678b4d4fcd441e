package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onesmallstep/internal/metrics"
	"onesmallstep/internal/service"
)

func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func useTempDB(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOG_MODE", "prod")
	dbPath = filepath.Join(dir, "data", "test.db")
	t.Cleanup(func() {
		dbPath = ""
		catalogCategory = service.CategoryAll
		catalogSearch = ""
		resetConfirmed = false
	})
}

func TestCatalogCmd(t *testing.T) {
	useTempDB(t)

	cmd, out := newTestCmd(t)
	catalogCategory = "rare"
	require.NoError(t, runCatalog(cmd, nil))
	assert.Contains(t, out.String(), "Thanatophobia")
	assert.NotContains(t, out.String(), "Arachnophobia")

	cmd, out = newTestCmd(t)
	catalogCategory = service.CategoryAll
	catalogSearch = "ARACH"
	require.NoError(t, runCatalog(cmd, nil))
	assert.Contains(t, out.String(), "Spiders")

	cmd, out = newTestCmd(t)
	catalogSearch = "nothing-like-this"
	require.NoError(t, runCatalog(cmd, nil))
	assert.Contains(t, out.String(), "No phobias found matching 'nothing-like-this'")
}

func TestProgressAndResetCmd(t *testing.T) {
	useTempDB(t)

	cmd, out := newTestCmd(t)
	require.NoError(t, runProgress(cmd, nil))
	assert.Contains(t, out.String(), "Streak:          0")
	assert.Contains(t, out.String(), metrics.MessageFirstStep)

	cmd, out = newTestCmd(t)
	require.NoError(t, runReset(cmd, []string{"1"}))
	assert.Contains(t, out.String(), "Re-run with --yes")

	cmd, out = newTestCmd(t)
	resetConfirmed = true
	require.NoError(t, runReset(cmd, []string{"1"}))
	assert.Contains(t, out.String(), "Removed 0 progress records for Spiders.")

	cmd, _ = newTestCmd(t)
	assert.Error(t, runReset(cmd, []string{"abc"}))
	assert.ErrorIs(t, runReset(cmd, []string{"999"}), service.ErrUnknownPhobia)
}
