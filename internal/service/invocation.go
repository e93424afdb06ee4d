package service

import (
	"fmt"
	"strconv"
	"strings"

	"dining-bench/internal/config"
)

// Invocation 一次外部进程调用的完整 argv
type Invocation struct {
	Kind  ExperimentKind
	Cores int
	Args  []string
}

func (i Invocation) String() string {
	return strings.Join(i.Args, " ")
}

// BuildInvocation 按实验类型的固定模板生成参数，纯函数。
// 200 人的变体把 hunger 减半、哲学家数翻倍；绑核实验在前面加上
// "<affinity> --cpu-list 0-(cores-1)"。
func BuildInvocation(kind ExperimentKind, cores int, cfg config.RunConfiguration) Invocation {
	exe := cfg.BinaryPath()
	hunger := HungerFor(cfg.Fast)
	itoa := strconv.Itoa

	var args []string
	switch kind {
	case KindVeronaOpt:
		args = []string{exe, "--cores", itoa(cores),
			"--hunger", itoa(hunger), "--num_tables", itoa(Tables), "--num_philosophers", itoa(Philosophers), "--optimal_order", "1"}
	case KindVeronaOpt200:
		args = []string{exe, "--cores", itoa(cores),
			"--hunger", itoa(hunger / 2), "--num_tables", itoa(Tables), "--num_philosophers", itoa(Philosophers * 2), "--optimal_order", "1"}
	case KindPthreadSeq:
		args = []string{exe, "--cores", itoa(cores), "--pthread",
			"--hunger", itoa(hunger), "--num_tables", itoa(Tables), "--num_philosophers", itoa(Philosophers), "1"}
	case KindPthreadOpt:
		args = []string{exe, "--cores", itoa(cores), "--pthread",
			"--hunger", itoa(hunger), "--num_tables", itoa(Tables), "--num_philosophers", itoa(Philosophers), "1", "--optimal_order"}
	case KindVeronaSeq:
		args = []string{exe, "--cores", itoa(cores), "--test_no", "1",
			"--hunger", itoa(hunger), "--num_tables", itoa(Tables), "--num_philosophers", itoa(Philosophers), "1"}
	default:
		panic(fmt.Sprintf("unknown experiment kind %q", string(kind)))
	}

	if kind.Pinned() {
		prefix := []string{cfg.AffinityCommand, "--cpu-list", fmt.Sprintf("0-%d", cores-1)}
		args = append(prefix, args...)
	}
	return Invocation{Kind: kind, Cores: cores, Args: args}
}
