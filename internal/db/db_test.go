package db

import (
	"strings"
	"testing"

	"dining-bench/internal/config"

	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(config.DatabaseConfig{
		Host:     "10.0.0.5",
		Port:     4000,
		User:     "bench",
		Password: "secret",
		DBName:   "dining",
		Charset:  "utf8mb4",
	})
	require.True(t, strings.HasPrefix(dsn, "bench:secret@tcp(10.0.0.5:4000)/dining?"), dsn)
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildDSNWithoutCharset(t *testing.T) {
	dsn := BuildDSN(config.DatabaseConfig{Host: "localhost", Port: 3306, User: "root", DBName: "dining"})
	require.True(t, strings.HasPrefix(dsn, "root@tcp(localhost:3306)/dining?"), dsn)
	require.NotContains(t, dsn, "charset")
}
