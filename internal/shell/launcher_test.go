package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLine(t *testing.T, sh *Shell, line string) error {
	t.Helper()
	return sh.ExecuteLine(context.Background(), line, bytes.NewReader(nil))
}

func TestLauncher_SingleBuiltinCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "echo hello"))
	assert.Equal(t, "hello \n", out.String())
	assert.Empty(t, errOut.String())
}

func TestLauncher_MultiStagePipe(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, `printf "banana\napple\n" | sort`))
	assert.Equal(t, "apple\nbanana\n", out.String())
}

func TestLauncher_PipeableBuiltinInPipeline(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "echo one two three | wc -w"))
	assert.Contains(t, out.String(), "3")
}

func TestLauncher_WriteRedirection(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "echo hi > "+target))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hi \n", string(got))
}

func TestLauncher_AppendRedirection(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("first\n"), 0644))

	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "echo second >> "+target))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond \n", string(got))
}

func TestLauncher_ReadRedirection(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("b\na\nc\n"), 0644))

	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "sort < "+src))
	assert.Equal(t, "a\nb\nc\n", out.String())
}

func TestLauncher_BackgroundJobIsTracked(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	require.NoError(t, runLine(t, sh, "sleep 0.05 &"))
	assert.Contains(t, out.String(), "Running sleep in background.")

	deadline := time.After(2 * time.Second)
	for {
		lines := sh.PollJobs()
		if len(lines) == 1 {
			assert.Contains(t, lines[0], "sleep")
			return
		}
		select {
		case <-deadline:
			t.Fatal("background job was never reaped")
		default:
		}
	}
}

func TestLauncher_UnknownCommandReportsError(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	err := runLine(t, sh, "no-such-quash-command-xyz")
	assert.Error(t, err)
	assert.Contains(t, errOut.String(), "Could not find")
}

func TestLauncher_ParentOnlyBuiltinInPipeline(t *testing.T) {
	start, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(start) })

	dir := t.TempDir()

	var out, errOut bytes.Buffer
	sh := New(&out, &errOut, Config{})

	// cd mid-pipeline must run in the parent rather than fail with
	// "Could not find cd"; its own stdout contributes nothing downstream.
	require.NoError(t, runLine(t, sh, "cd "+dir+" | echo after"))
	assert.NotContains(t, errOut.String(), "Could not find cd")
	assert.Equal(t, "after \n", out.String())

	got, err := os.Getwd()
	require.NoError(t, err)
	gotReal, _ := filepath.EvalSymlinks(got)
	wantReal, _ := filepath.EvalSymlinks(dir)
	assert.Equal(t, wantReal, gotReal)
}
