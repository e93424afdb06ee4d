package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"
)

// BinaryName 外部基准程序的文件名，位于 verona_path 目录下
const BinaryName = "perf-con-dining_phil"

const (
	DefaultRepeats     = 30
	DefaultOutputDir   = "output"
	DefaultVeronaPath  = "."
	DefaultAffinityCmd = "taskset"
	DefaultLogLevel    = "info"
)

type Config struct {
	Bench    BenchConfig    `yaml:"bench" toml:"bench"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
}

type BenchConfig struct {
	Repeats    int    `yaml:"repeats" toml:"repeats"`
	OutputDir  string `yaml:"output_dir" toml:"output_dir"`
	VeronaPath string `yaml:"verona_path" toml:"verona_path"`
	Fast       bool   `yaml:"fast" toml:"fast"`
	// 绑核包装命令，pthread 两类实验用它把进程限制在 0..N-1 号 CPU 上
	AffinityCmd string `yaml:"affinity_cmd" toml:"affinity_cmd"`
	// 0 表示使用本机全部可见的处理器
	MaxCores int `yaml:"max_cores" toml:"max_cores"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	DBName   string `yaml:"dbname" toml:"dbname"`
	Charset  string `yaml:"charset" toml:"charset"`
}

// Enabled 未配置 host 时不连数据库，CSV 仍是唯一的结果来源
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default 返回与命令行默认值一致的配置
func Default() *Config {
	return &Config{
		Bench: BenchConfig{
			Repeats:     DefaultRepeats,
			OutputDir:   DefaultOutputDir,
			VeronaPath:  DefaultVeronaPath,
			AffinityCmd: DefaultAffinityCmd,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Database: DatabaseConfig{
			Port:    3306,
			Charset: "utf8mb4",
		},
	}
}

// LoadConfig 按扩展名解析 YAML 或 TOML 配置文件，未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Annotate(err, "解析配置文件失败")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("配置文件包含未知字段: %v", undecoded)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Annotate(err, "读取配置文件失败")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Annotate(err, "解析配置文件失败")
		}
	default:
		return nil, errors.Errorf("不支持的配置文件格式: %s", path)
	}
	return cfg, nil
}
