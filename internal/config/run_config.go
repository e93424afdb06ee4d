package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RunConfiguration 一次基准扫描的不可变参数，构造后按值传递
type RunConfiguration struct {
	Repeats    int
	OutputDir  string
	VeronaPath string
	Fast       bool
	// AffinityCommand 为空时不能运行 pthread 两类实验，构造时会填默认值
	AffinityCommand string
	MaxCores        int
}

// BinaryPath 外部基准程序的绝对路径
func (c RunConfiguration) BinaryPath() string {
	return filepath.Join(c.VeronaPath, BinaryName)
}

// ConfigurationError 启动参数无效或不可用，发生在任何一次运行之前
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("配置错误 (%s): %s", e.Field, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(field string, err error, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewRunConfiguration 校验参数并创建输出目录（已存在时不报错）。
// verona_path 会被解析为绝对路径，避免 "./perf-con-dining_phil" 退化成 PATH 查找。
func NewRunConfiguration(b BenchConfig) (RunConfiguration, error) {
	if b.Repeats <= 0 {
		return RunConfiguration{}, configErrorf("repeats", nil, "必须是正整数，实际为 %d", b.Repeats)
	}
	if b.MaxCores < 0 {
		return RunConfiguration{}, configErrorf("max_cores", nil, "不能为负数，实际为 %d", b.MaxCores)
	}
	if strings.TrimSpace(b.OutputDir) == "" {
		return RunConfiguration{}, configErrorf("output_dir", nil, "不能为空")
	}
	veronaPath := b.VeronaPath
	if strings.TrimSpace(veronaPath) == "" {
		veronaPath = DefaultVeronaPath
	}
	absVerona, err := filepath.Abs(veronaPath)
	if err != nil {
		return RunConfiguration{}, configErrorf("verona_path", err, "无法解析路径 %q", veronaPath)
	}
	affinity := strings.TrimSpace(b.AffinityCmd)
	if affinity == "" {
		affinity = DefaultAffinityCmd
	}

	cfg := RunConfiguration{
		Repeats:         b.Repeats,
		OutputDir:       filepath.Clean(b.OutputDir),
		VeronaPath:      absVerona,
		Fast:            b.Fast,
		AffinityCommand: affinity,
		MaxCores:        b.MaxCores,
	}
	if err := cfg.CheckBinary(); err != nil {
		return RunConfiguration{}, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return RunConfiguration{}, configErrorf("output_dir", err, "无法创建输出目录 %q", cfg.OutputDir)
	}
	return cfg, nil
}

// CheckBinary 外部程序必须存在、是普通文件且可执行
func (c RunConfiguration) CheckBinary() error {
	path := c.BinaryPath()
	info, err := os.Stat(path)
	if err != nil {
		return configErrorf("verona_path", err, "找不到基准程序 %q", path)
	}
	if info.IsDir() {
		return configErrorf("verona_path", nil, "%q 是目录而不是可执行文件", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return configErrorf("verona_path", nil, "%q 没有执行权限", path)
	}
	return nil
}
