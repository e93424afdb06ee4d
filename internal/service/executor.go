package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pingcap/errors"
)

// RunResult 一次调用的计时结果，对应 CSV 中的一行
type RunResult struct {
	Cores   int
	Elapsed time.Duration
}

// Seconds 写入 CSV 的耗时（秒）
func (r RunResult) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// Outcome 进程执行结果：成功时只有 Elapsed；失败时 ExitCode 非零或 SpawnErr 非空
type Outcome struct {
	Elapsed  time.Duration
	ExitCode int
	SpawnErr error
}

func (o Outcome) OK() bool {
	return o.SpawnErr == nil && o.ExitCode == 0
}

// ExternalProcessError 外部程序无法启动或以非零状态退出，不重试，直接终止整个扫描
type ExternalProcessError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *ExternalProcessError) Error() string {
	if e == nil {
		return ""
	}
	cmdline := strings.Join(e.Args, " ")
	if e.Err != nil {
		return fmt.Sprintf("外部程序启动失败 [%s]: %v", cmdline, e.Err)
	}
	return fmt.Sprintf("外部程序退出码 %d [%s]", e.ExitCode, cmdline)
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

// Executor 阻塞地运行外部进程，子进程的输出直接透传
type Executor struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecutor() *Executor {
	return &Executor{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Execute 从启动前到退出后计时，包含子进程自身的启动和收尾
func (e *Executor) Execute(ctx context.Context, inv Invocation) Outcome {
	if len(inv.Args) == 0 {
		return Outcome{SpawnErr: errors.New("空的调用参数")}
	}
	cmd := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{SpawnErr: err}
	}
	err := cmd.Wait()
	elapsed := time.Since(start)

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// 被信号终止时 ExitCode 为 -1
			return Outcome{Elapsed: elapsed, ExitCode: exitErr.ExitCode()}
		}
		return Outcome{Elapsed: elapsed, SpawnErr: err}
	}
	return Outcome{Elapsed: elapsed}
}

// RunOnce 把 Outcome 映射为 RunResult 或 ExternalProcessError
func (e *Executor) RunOnce(ctx context.Context, inv Invocation) (RunResult, error) {
	out := e.Execute(ctx, inv)
	if ctx.Err() != nil {
		return RunResult{}, errors.Annotatef(ctx.Err(), "运行中断 [%s]", inv.String())
	}
	if !out.OK() {
		return RunResult{}, &ExternalProcessError{Args: inv.Args, ExitCode: out.ExitCode, Err: out.SpawnErr}
	}
	return RunResult{Cores: inv.Cores, Elapsed: out.Elapsed}, nil
}
