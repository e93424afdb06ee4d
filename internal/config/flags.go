package config

import (
	"flag"
	"io"
	"strings"
)

type flagValues struct {
	configPath  string
	repeats     int
	outputDir   string
	veronaPath  string
	fast        bool
	affinityCmd string
	maxCores    int
	serveAddr   string
	logLevel    string
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("dining-bench", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // 解析错误通过返回值上报

	fs.StringVar(&v.configPath, "config", "", "可选的 YAML/TOML 配置文件，命令行参数优先")
	fs.IntVar(&v.repeats, "repeats", DefaultRepeats, "number of times to repeat the runs")
	fs.StringVar(&v.outputDir, "o", DefaultOutputDir, "outfile location")
	fs.StringVar(&v.veronaPath, "verona-path", DefaultVeronaPath, "path containing verona dining philosophers binary")
	fs.BoolVar(&v.fast, "fast", false, "run the fast version of the benchmark")
	fs.StringVar(&v.affinityCmd, "affinity-cmd", DefaultAffinityCmd, "CPU affinity wrapper used for the pthread runs")
	fs.IntVar(&v.maxCores, "max-cores", 0, "cap on the number of cores to sweep (0 = all)")
	fs.StringVar(&v.serveAddr, "serve", "", "listen address; start the HTTP API instead of a one-shot sweep")
	fs.StringVar(&v.logLevel, "log-level", DefaultLogLevel, "log level: debug|info|warn|error")
	return fs
}

// Usage 输出命令行帮助
func Usage(w io.Writer) {
	fs := newFlagSet(&flagValues{})
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// ParseFlags 解析命令行参数：先加载 --config 指定的文件，再用显式给出的参数覆盖。
// 这里不做基准参数的校验，serve 模式下允许默认路径上暂时没有基准程序。
func ParseFlags(args []string) (*Config, error) {
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, configErrorf("args", err, "参数解析失败")
	}
	if fs.NArg() != 0 {
		return nil, configErrorf("args", nil, "多余的位置参数: %q", strings.Join(fs.Args(), " "))
	}

	cfg := Default()
	if v.configPath != "" {
		loaded, err := LoadConfig(v.configPath)
		if err != nil {
			return nil, configErrorf("config", err, "加载配置文件 %q 失败", v.configPath)
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "repeats":
			cfg.Bench.Repeats = v.repeats
		case "o":
			cfg.Bench.OutputDir = v.outputDir
		case "verona-path":
			cfg.Bench.VeronaPath = v.veronaPath
		case "fast":
			cfg.Bench.Fast = v.fast
		case "affinity-cmd":
			cfg.Bench.AffinityCmd = v.affinityCmd
		case "max-cores":
			cfg.Bench.MaxCores = v.maxCores
		case "serve":
			cfg.Server.Addr = v.serveAddr
		case "log-level":
			cfg.Log.Level = v.logLevel
		}
	})
	return cfg, nil
}

// Configure 解析参数并构造一次性扫描用的 RunConfiguration
func Configure(args []string) (RunConfiguration, error) {
	cfg, err := ParseFlags(args)
	if err != nil {
		return RunConfiguration{}, err
	}
	return NewRunConfiguration(cfg.Bench)
}
