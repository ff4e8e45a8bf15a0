package operation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/plan"
)

// countingFS wraps a real FS and counts primitive renames.
type countingFS struct {
	FS
	renames int
}

func (c *countingFS) Rename(oldpath string, newpath string) error {
	c.renames++
	return c.FS.Rename(oldpath, newpath)
}

func write(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func renameEntry(t *testing.T, path string, target string) *entry.Entry {
	t.Helper()
	e, err := entry.New(path)
	require.NoError(t, err)
	require.NoError(t, e.RequestTarget(target, "/"))
	return e
}

func deleteEntry(t *testing.T, path string) *entry.Entry {
	t.Helper()
	e, err := entry.New(path)
	require.NoError(t, err)
	e.MarkDelete()
	return e
}

// planFor runs the real resolver and scheduler, as the pipeline does.
func planFor(t *testing.T, renames []*entry.Entry, deletions []*entry.Entry, fsys FS) Executor {
	t.Helper()
	strategies := plan.Resolve(context.Background(), renames)
	exec, err := New(Options{
		Deletions:  plan.ScheduleDeletions(deletions),
		Strategies: plan.ScheduleStrategies(strategies),
		FS:         fsys,
	})
	require.NoError(t, err)
	return exec
}

func TestExecuteSimpleRenames(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a"), "alpha")
	write(t, filepath.Join(dir, "b"), "beta")
	write(t, filepath.Join(dir, "bystander"), "untouched")

	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "a"), "a2"),
		renameEntry(t, filepath.Join(dir, "b"), "b2"),
	}

	summary, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 2}, summary)
	assert.Equal(t, "alpha", read(t, filepath.Join(dir, "a2")))
	assert.Equal(t, "beta", read(t, filepath.Join(dir, "b2")))
	assert.Equal(t, "untouched", read(t, filepath.Join(dir, "bystander")))
	assert.NoFileExists(t, filepath.Join(dir, "a"))
	assert.NoFileExists(t, filepath.Join(dir, "b"))
}

func TestExecuteSwap(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a"), "alpha")
	write(t, filepath.Join(dir, "b"), "beta")

	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "a"), "b"),
		renameEntry(t, filepath.Join(dir, "b"), "a"),
	}

	summary, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 2}, summary)
	assert.Equal(t, "beta", read(t, filepath.Join(dir, "a")), "contents swapped")
	assert.Equal(t, "alpha", read(t, filepath.Join(dir, "b")))
	assert.NoDirExists(t, filepath.Join(dir, scratchName()), "scratch directory is removed afterward")
}

func TestExecuteCycleMoveCount(t *testing.T) {
	dir := t.TempDir()
	// a -> b -> c -> a, cycle length k=3.
	write(t, filepath.Join(dir, "a"), "1")
	write(t, filepath.Join(dir, "b"), "2")
	write(t, filepath.Join(dir, "c"), "3")

	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "a"), "b"),
		renameEntry(t, filepath.Join(dir, "b"), "c"),
		renameEntry(t, filepath.Join(dir, "c"), "a"),
	}

	fsys := &countingFS{FS: OSFS{}}
	summary, err := planFor(t, renames, nil, fsys).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 3}, summary)
	assert.Equal(t, 5, fsys.renames, "k-1 moves into staging, 1 direct, k-1 moves out")
	assert.Equal(t, "1", read(t, filepath.Join(dir, "b")))
	assert.Equal(t, "2", read(t, filepath.Join(dir, "c")))
	assert.Equal(t, "3", read(t, filepath.Join(dir, "a")))
	assert.NoDirExists(t, filepath.Join(dir, scratchName()))

	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, dirents, 3, "no residual file anywhere")
}

func TestExecuteNestedRunsBeforeAncestorRename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "parent"), 0o755))
	write(t, filepath.Join(dir, "parent", "inner"), "nested")

	// Ancestor listed first; the scheduler must still move the nested
	// entry while its recorded source path is valid.
	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "parent"), "renamed-parent"),
		renameEntry(t, filepath.Join(dir, "parent", "inner"), "renamed-inner"),
	}

	summary, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 2}, summary)
	assert.Equal(t, "nested", read(t, filepath.Join(dir, "renamed-parent", "renamed-inner")))
}

func TestExecuteDeletionBeforeReusingRename(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "old"), "stale")
	write(t, filepath.Join(dir, "fresh"), "new content")

	renames := []*entry.Entry{renameEntry(t, filepath.Join(dir, "fresh"), "old")}
	deletions := []*entry.Entry{deleteEntry(t, filepath.Join(dir, "old"))}

	summary, err := planFor(t, renames, deletions, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 1, Deleted: 1}, summary)
	assert.Equal(t, "new content", read(t, filepath.Join(dir, "old")), "the deletion freed the slot first")
	assert.NoFileExists(t, filepath.Join(dir, "fresh"))
}

func TestExecuteRecursiveDeletion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tree", "deep"), 0o755))
	write(t, filepath.Join(dir, "tree", "deep", "leaf"), "x")

	deletions := []*entry.Entry{deleteEntry(t, filepath.Join(dir, "tree"))}

	summary, err := planFor(t, nil, deletions, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Deleted: 1}, summary)
	assert.NoDirExists(t, filepath.Join(dir, "tree"))
}

func TestExecuteOccupiedDestinationIsFatal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a"), "alpha")
	write(t, filepath.Join(dir, "squatter"), "already here")

	// Bypass validation to simulate a plan defect: the destination is
	// occupied by a file nothing vacates.
	e := renameEntry(t, filepath.Join(dir, "a"), "squatter")
	exec, err := New(Options{
		Strategies: []plan.Strategy{{Kind: plan.StrategyDirect, Entry: e}},
		FS:         OSFS{},
	})
	require.NoError(t, err)

	_, err = exec.Execute(context.Background())
	require.ErrorIs(t, err, ErrInconsistent)
	assert.Equal(t, "alpha", read(t, filepath.Join(dir, "a")), "nothing moved")
	assert.Equal(t, "already here", read(t, filepath.Join(dir, "squatter")))
}

func TestExecuteLeftoverScratchIsFatal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a"), "alpha")
	write(t, filepath.Join(dir, "b"), "beta")
	require.NoError(t, os.Mkdir(filepath.Join(dir, scratchName()), 0o700))

	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "a"), "b"),
		renameEntry(t, filepath.Join(dir, "b"), "a"),
	}

	_, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.ErrorIs(t, err, ErrInconsistent)
	assert.Equal(t, "alpha", read(t, filepath.Join(dir, "a")), "leftover scratch aborts before any move")
	assert.Equal(t, "beta", read(t, filepath.Join(dir, "b")))
}

func TestExecuteStagedCyclesAcrossAncestorRename(t *testing.T) {
	dir := t.TempDir()
	// A deep swap inside D/X, a rename of the ancestor D itself, and a
	// shallow swap beside it. The deep cycle's holding directory must be
	// gone before D moves, and the shallow cycle must get its own.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "D", "X"), 0o755))
	write(t, filepath.Join(dir, "D", "X", "p"), "pp")
	write(t, filepath.Join(dir, "D", "X", "q"), "qq")
	write(t, filepath.Join(dir, "a"), "aa")
	write(t, filepath.Join(dir, "b"), "bb")

	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "D", "X", "p"), "q"),
		renameEntry(t, filepath.Join(dir, "D", "X", "q"), "p"),
		renameEntry(t, filepath.Join(dir, "D"), "D2"),
		renameEntry(t, filepath.Join(dir, "a"), "b"),
		renameEntry(t, filepath.Join(dir, "b"), "a"),
	}

	summary, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 5}, summary)
	assert.Equal(t, "pp", read(t, filepath.Join(dir, "D2", "X", "q")))
	assert.Equal(t, "qq", read(t, filepath.Join(dir, "D2", "X", "p")))
	assert.Equal(t, "bb", read(t, filepath.Join(dir, "a")))
	assert.Equal(t, "aa", read(t, filepath.Join(dir, "b")))
	assert.NoDirExists(t, filepath.Join(dir, scratchName()))
	assert.NoDirExists(t, filepath.Join(dir, "D2", "X", scratchName()))

	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, dirents, 3, "no residue anywhere: a, b, D2")
}

func TestExecuteRenameToScratchPrefixName(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "decoy"), "dd")
	write(t, filepath.Join(dir, "a"), "aa")
	write(t, filepath.Join(dir, "b"), "bb")

	// A user may pick the bare prefix as a real name; the pid-suffixed
	// holding directory must not collide with it.
	renames := []*entry.Entry{
		renameEntry(t, filepath.Join(dir, "decoy"), scratchPrefix),
		renameEntry(t, filepath.Join(dir, "a"), "b"),
		renameEntry(t, filepath.Join(dir, "b"), "a"),
	}

	summary, err := planFor(t, renames, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 3}, summary)
	assert.Equal(t, "dd", read(t, filepath.Join(dir, scratchPrefix)))
	assert.Equal(t, "bb", read(t, filepath.Join(dir, "a")))
	assert.Equal(t, "aa", read(t, filepath.Join(dir, "b")))
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a"), "alpha")
	write(t, filepath.Join(dir, "doomed"), "x")

	renames := []*entry.Entry{renameEntry(t, filepath.Join(dir, "a"), "a2")}
	deletions := []*entry.Entry{deleteEntry(t, filepath.Join(dir, "doomed"))}

	exec, err := New(Options{
		Deletions:  plan.ScheduleDeletions(deletions),
		Strategies: plan.ScheduleStrategies(plan.Resolve(context.Background(), renames)),
		FS:         OSFS{},
		DryRun:     true,
	})
	require.NoError(t, err)

	summary, err := exec.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Renamed: 1, Deleted: 1}, summary)
	assert.Equal(t, "alpha", read(t, filepath.Join(dir, "a")))
	assert.FileExists(t, filepath.Join(dir, "doomed"))
	assert.NoFileExists(t, filepath.Join(dir, "a2"))
}

func TestExecuteEmptyPlanIsIdempotent(t *testing.T) {
	summary, err := planFor(t, nil, nil, OSFS{}).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestNewRequiresFS(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fs is required")
}
