package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutorRunOnceSuccess(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "bench")
	writeScript(t, bin, "echo \"$@\"\nexit 0\n")

	var stdout bytes.Buffer
	e := &Executor{Stdout: &stdout, Stderr: &stdout}
	res, err := e.RunOnce(context.Background(), Invocation{Kind: KindVeronaOpt, Cores: 2, Args: []string{bin, "--cores", "2"}})
	require.NoError(t, err)
	require.Equal(t, 2, res.Cores)
	require.GreaterOrEqual(t, res.Seconds(), 0.0)
	require.Equal(t, "--cores 2\n", stdout.String())
}

func TestExecutorMeasuresWallClock(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "bench")
	writeScript(t, bin, "sleep 0.2\n")

	res, err := (&Executor{}).RunOnce(context.Background(), Invocation{Cores: 1, Args: []string{bin}})
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Elapsed, 200*time.Millisecond)
}

func TestExecutorNonZeroExit(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "bench")
	writeScript(t, bin, "exit 3\n")

	e := &Executor{}
	out := e.Execute(context.Background(), Invocation{Args: []string{bin}})
	require.False(t, out.OK())
	require.Equal(t, 3, out.ExitCode)
	require.NoError(t, out.SpawnErr)

	_, err := e.RunOnce(context.Background(), Invocation{Args: []string{bin, "--cores", "1"}})
	var procErr *ExternalProcessError
	require.True(t, errors.As(err, &procErr))
	require.Equal(t, 3, procErr.ExitCode)
	require.Equal(t, []string{bin, "--cores", "1"}, procErr.Args)
	require.Contains(t, err.Error(), bin+" --cores 1")
}

func TestExecutorSpawnFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := (&Executor{}).RunOnce(context.Background(), Invocation{Args: []string{missing}})
	var procErr *ExternalProcessError
	require.True(t, errors.As(err, &procErr))
	require.Error(t, procErr.Err)
	require.Equal(t, 0, procErr.ExitCode)

	out := (&Executor{}).Execute(context.Background(), Invocation{})
	require.Error(t, out.SpawnErr)
}

func TestExecutorCancelled(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "bench")
	writeScript(t, bin, "exec sleep 5\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := (&Executor{}).RunOnce(ctx, Invocation{Args: []string{bin}})
	require.Error(t, err)
	require.Less(t, time.Since(start), 4*time.Second)

	var procErr *ExternalProcessError
	require.False(t, errors.As(err, &procErr))
}
