package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, BinaryName)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultRepeats, cfg.Bench.Repeats)
	require.Equal(t, "output", cfg.Bench.OutputDir)
	require.Equal(t, ".", cfg.Bench.VeronaPath)
	require.False(t, cfg.Bench.Fast)
	require.Equal(t, "taskset", cfg.Bench.AffinityCmd)
	require.Empty(t, cfg.Server.Addr)
	require.False(t, cfg.Database.Enabled())
}

func TestParseFlagsDoubleDash(t *testing.T) {
	cfg, err := ParseFlags([]string{"--repeats", "3", "-o", "res", "--verona-path", "/opt/verona", "--fast"})
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Bench.Repeats)
	require.Equal(t, "res", cfg.Bench.OutputDir)
	require.Equal(t, "/opt/verona", cfg.Bench.VeronaPath)
	require.True(t, cfg.Bench.Fast)
}

func TestParseFlagsRejectsGarbage(t *testing.T) {
	_, err := ParseFlags([]string{"--repeats", "many"})
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	_, err = ParseFlags([]string{"extra"})
	require.True(t, errors.As(err, &cfgErr))

	_, err = ParseFlags([]string{"-h"})
	require.ErrorIs(t, err, flag.ErrHelp)
}

func TestConfigure(t *testing.T) {
	verona := t.TempDir()
	writeExecutable(t, verona)
	out := filepath.Join(t.TempDir(), "nested", "output")

	cfg, err := Configure([]string{"--repeats", "2", "-o", out, "--verona-path", verona, "--fast"})
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Repeats)
	require.True(t, cfg.Fast)
	require.Equal(t, filepath.Join(verona, BinaryName), cfg.BinaryPath())
	require.DirExists(t, out)

	// 输出目录已存在时再次配置不报错
	_, err = Configure([]string{"-o", out, "--verona-path", verona})
	require.NoError(t, err)
}

func TestConfigureErrors(t *testing.T) {
	verona := t.TempDir()
	writeExecutable(t, verona)
	out := filepath.Join(t.TempDir(), "out")

	cases := []struct {
		name  string
		args  []string
		field string
	}{
		{"zero repeats", []string{"--repeats", "0", "-o", out, "--verona-path", verona}, "repeats"},
		{"negative repeats", []string{"--repeats", "-4", "-o", out, "--verona-path", verona}, "repeats"},
		{"missing binary", []string{"-o", out, "--verona-path", t.TempDir()}, "verona_path"},
		{"negative max cores", []string{"--max-cores", "-1", "-o", out, "--verona-path", verona}, "max_cores"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Configure(tc.args)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "unexpected error: %v", err)
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestConfigureNonExecutableBinary(t *testing.T) {
	verona := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(verona, BinaryName), []byte("data"), 0o644))

	_, err := Configure([]string{"-o", filepath.Join(t.TempDir(), "out"), "--verona-path", verona})
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "verona_path", cfgErr.Field)
}

func TestConfigureUncreatableOutputDir(t *testing.T) {
	verona := t.TempDir()
	writeExecutable(t, verona)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Configure([]string{"-o", filepath.Join(blocker, "out"), "--verona-path", verona})
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "output_dir", cfgErr.Field)
}

func TestLoadConfigYAMLWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := `
bench:
  repeats: 5
  fast: true
  max_cores: 8
log:
  level: debug
database:
  host: 127.0.0.1
  user: bench
  dbname: dining
server:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := ParseFlags([]string{"--config", path, "--repeats", "7"})
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Bench.Repeats)
	require.True(t, cfg.Bench.Fast)
	require.Equal(t, 8, cfg.Bench.MaxCores)
	// 文件里没写的字段保持默认
	require.Equal(t, "output", cfg.Bench.OutputDir)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Database.Enabled())
	require.Equal(t, 3306, cfg.Database.Port)
	require.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.toml")
	content := `
[bench]
repeats = 4
verona_path = "/opt/verona"
affinity_cmd = "/usr/bin/taskset"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Bench.Repeats)
	require.Equal(t, "/opt/verona", cfg.Bench.VeronaPath)
	require.Equal(t, "/usr/bin/taskset", cfg.Bench.AffinityCmd)
}

func TestLoadConfigTOMLUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bench]\nrepeat = 4\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "未知字段")
}

func TestLoadConfigUnsupportedExt(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "bench.json"))
	require.Error(t, err)
}
