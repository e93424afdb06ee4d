package service

import (
	"context"
	"sync"
	"time"

	"dining-bench/internal/config"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
)

type SweepState string

const (
	SweepIdle     SweepState = "idle"
	SweepRunning  SweepState = "running"
	SweepFinished SweepState = "finished"
	SweepFailed   SweepState = "failed"
)

// ErrSweepRunning 同一进程内同时只允许一个扫描
var ErrSweepRunning = errors.New("已有基准扫描正在运行")

type SweepStatus struct {
	SweepID     string     `json:"sweep_id,omitempty"`
	State       SweepState `json:"state"`
	OutputDir   string     `json:"output_dir,omitempty"`
	Progress    *Progress  `json:"progress,omitempty"`
	SummaryPath string     `json:"summary_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// SweepTracker 在后台运行扫描并暴露其状态，保证扫描之间不会并发
type SweepTracker struct {
	runner *SweepRunner
	// 后台扫描的生命周期跟随服务而不是单个 HTTP 请求
	baseCtx context.Context

	mu     sync.Mutex
	status SweepStatus
	done   chan struct{}
}

func NewSweepTracker(baseCtx context.Context, runner *SweepRunner) *SweepTracker {
	closed := make(chan struct{})
	close(closed)
	return &SweepTracker{
		runner:  runner,
		baseCtx: baseCtx,
		status:  SweepStatus{State: SweepIdle},
		done:    closed,
	}
}

// Start 在后台启动扫描并返回 sweep id；已有扫描在运行时返回 ErrSweepRunning
func (t *SweepTracker) Start(cfg config.RunConfiguration) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.State == SweepRunning {
		return "", ErrSweepRunning
	}

	id := uuid.NewString()
	now := time.Now()
	t.status = SweepStatus{
		SweepID:   id,
		State:     SweepRunning,
		OutputDir: cfg.OutputDir,
		StartedAt: &now,
	}
	done := make(chan struct{})
	t.done = done

	go func() {
		defer close(done)
		res, err := t.runner.RunSweep(t.baseCtx, SweepRequest{
			SweepID:    id,
			Config:     cfg,
			OnProgress: t.update,
		})
		t.finish(res, err)
	}()
	return id, nil
}

func (t *SweepTracker) update(p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Progress = &p
}

func (t *SweepTracker) finish(res *SweepResult, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.status.FinishedAt = &now
	if err != nil {
		t.status.State = SweepFailed
		t.status.Error = err.Error()
		return
	}
	t.status.State = SweepFinished
	t.status.SummaryPath = res.SummaryPath
}

// Status 返回当前（或最近一次）扫描的状态副本
func (t *SweepTracker) Status() SweepStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.status
	if st.Progress != nil {
		p := *st.Progress
		st.Progress = &p
	}
	return st
}

// Done 当前扫描结束时关闭；没有扫描时返回已关闭的 channel
func (t *SweepTracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
