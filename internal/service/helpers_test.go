package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dining-bench/internal/config"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

// newTestConfig 在临时目录里放一个什么都不做的基准程序
func newTestConfig(t *testing.T, bench config.BenchConfig) config.RunConfiguration {
	t.Helper()
	if bench.VeronaPath == "" {
		bench.VeronaPath = t.TempDir()
		writeScript(t, filepath.Join(bench.VeronaPath, config.BinaryName), "exit 0\n")
	}
	if bench.OutputDir == "" {
		bench.OutputDir = filepath.Join(t.TempDir(), "output")
	}
	if bench.Repeats == 0 {
		bench.Repeats = 1
	}
	cfg, err := config.NewRunConfiguration(bench)
	require.NoError(t, err)
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

type fakeInvoker struct {
	mu      sync.Mutex
	calls   []Invocation
	failAt  int
	err     error
	elapsed time.Duration
}

func (f *fakeInvoker) RunOnce(ctx context.Context, inv Invocation) (RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, inv)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return RunResult{}, f.err
	}
	return RunResult{Cores: inv.Cores, Elapsed: f.elapsed}, nil
}

func (f *fakeInvoker) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

func (f *fakeInvoker) trace() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.Calls() {
		out = append(out, fmt.Sprintf("%s/%d", c.Kind, c.Cores))
	}
	return out
}
