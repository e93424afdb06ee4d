package service

import (
	"fmt"
	"runtime"
)

// ExperimentKind 五类固定实验，每类对应一个 CSV 文件和一个调用模板
type ExperimentKind string

const (
	KindVeronaOpt    ExperimentKind = "verona_opt"
	KindVeronaOpt200 ExperimentKind = "verona_opt_200"
	KindPthreadSeq   ExperimentKind = "pthread_seq"
	KindPthreadOpt   ExperimentKind = "pthread_opt"
	KindVeronaSeq    ExperimentKind = "verona_seq"
)

const (
	Philosophers = 100
	Hunger       = 500
	FastHunger   = 50
	Tables       = 1
)

// AllKinds 输出文件的创建顺序
var AllKinds = []ExperimentKind{
	KindVeronaOpt,
	KindVeronaSeq,
	KindPthreadSeq,
	KindPthreadOpt,
	KindVeronaOpt200,
}

// FullSweepKinds 在 1..N 每个核数上按此顺序依次运行
var FullSweepKinds = []ExperimentKind{
	KindVeronaOpt,
	KindVeronaOpt200,
	KindPthreadSeq,
	KindPthreadOpt,
}

// SparseCoreCounts 顺序基线很慢，只在这些核数上采样
var SparseCoreCounts = []int{1, 2, 3, 4, 5, 10, 20, 40, 60, 72}

var kindFiles = map[ExperimentKind]string{
	KindVeronaOpt:    "verona_dining_opt.csv",
	KindVeronaSeq:    "verona_dining_seq.csv",
	KindPthreadSeq:   "pthread_dining_seq.csv",
	KindPthreadOpt:   "pthread_dining_opt.csv",
	KindVeronaOpt200: "verona_dining_opt_200.csv",
}

func (k ExperimentKind) FileName() string {
	name, ok := kindFiles[k]
	if !ok {
		panic(fmt.Sprintf("unknown experiment kind %q", string(k)))
	}
	return name
}

// Pinned 通过绑核包装命令限制可用 CPU 的实验
func (k ExperimentKind) Pinned() bool {
	return k == KindPthreadSeq || k == KindPthreadOpt
}

func HungerFor(fast bool) int {
	if fast {
		return FastHunger
	}
	return Hunger
}

// FullCoreRange 返回 1..available
func FullCoreRange(available int) []int {
	out := make([]int, 0, available)
	for n := 1; n <= available; n++ {
		out = append(out, n)
	}
	return out
}

// SparseCoreRange 按升序取稀疏列表，遇到第一个超过 available 的值即停止
func SparseCoreRange(available int) []int {
	out := make([]int, 0, len(SparseCoreCounts))
	for _, n := range SparseCoreCounts {
		if n > available {
			break
		}
		out = append(out, n)
	}
	return out
}

// AvailableCores 本机可见的处理器数，maxCores > 0 时取二者较小值
func AvailableCores(maxCores int) int {
	return capCores(runtime.NumCPU(), maxCores)
}

func capCores(detected, maxCores int) int {
	if maxCores > 0 && maxCores < detected {
		return maxCores
	}
	return detected
}

// RunsPerRepeat 一轮重复中外部进程的调用次数
func RunsPerRepeat(available int) int {
	return len(FullSweepKinds)*available + len(SparseCoreRange(available))
}
