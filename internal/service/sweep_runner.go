package service

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	"dining-bench/internal/config"
	"dining-bench/internal/model"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Invoker 运行一次外部调用并计时
type Invoker interface {
	RunOnce(ctx context.Context, inv Invocation) (RunResult, error)
}

// Progress 每次调用完成后的进度快照
type Progress struct {
	SweepID   string         `json:"sweep_id"`
	Repeat    int            `json:"repeat"`
	Repeats   int            `json:"repeats"`
	Kind      ExperimentKind `json:"kind"`
	Cores     int            `json:"cores"`
	Elapsed   float64        `json:"elapsed_seconds"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}

type ProgressFunc func(Progress)

type SweepRequest struct {
	// 为空时自动生成
	SweepID    string
	Config     config.RunConfiguration
	OnProgress ProgressFunc
}

type SweepResult struct {
	SweepID        string
	Config         config.RunConfiguration
	StartedAt      time.Time
	FinishedAt     time.Time
	AvailableCores int
	Rows           map[ExperimentKind]int
	Files          map[ExperimentKind]string
	SummaryPath    string
}

// SweepRunner 严格串行地执行完整扫描：任意时刻只有一个外部进程在跑，
// 否则计时会互相干扰。
type SweepRunner struct {
	invoker  Invoker
	recorder Recorder
	numCPU   func() int
}

func NewSweepRunner(invoker Invoker, recorder Recorder) *SweepRunner {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &SweepRunner{
		invoker:  invoker,
		recorder: recorder,
		numCPU:   runtime.NumCPU,
	}
}

// Run 执行一次扫描并生成 sweep id
func (r *SweepRunner) Run(ctx context.Context, cfg config.RunConfiguration) (*SweepResult, error) {
	return r.RunSweep(ctx, SweepRequest{Config: cfg})
}

// RunSweep 打开全部输出文件，按 repeats × 核数 × 实验类型依次调用外部程序。
// 任何一次调用失败立即终止，已刷盘的行保留；所有返回路径都会关闭文件。
func (r *SweepRunner) RunSweep(ctx context.Context, req SweepRequest) (res *SweepResult, err error) {
	cfg := req.Config
	if cfg.Repeats <= 0 {
		return nil, &config.ConfigurationError{Field: "repeats", Message: "必须是正整数"}
	}
	if err := cfg.CheckBinary(); err != nil {
		return nil, err
	}
	sweepID := req.SweepID
	if sweepID == "" {
		sweepID = uuid.NewString()
	}

	available := capCores(r.numCPU(), cfg.MaxCores)
	hunger := HungerFor(cfg.Fast)
	if !cfg.Fast {
		log.Info("Running dining philosophers. This will take a while... There is 50 seconds of busy work per run. Consider adding --fast if you are in a rush.")
	}

	streams, err := OpenOutputStreams(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := streams.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res = &SweepResult{
		SweepID:        sweepID,
		Config:         cfg,
		StartedAt:      time.Now(),
		AvailableCores: available,
		Rows:           make(map[ExperimentKind]int, len(AllKinds)),
		Files:          make(map[ExperimentKind]string, len(AllKinds)),
	}
	for _, kind := range AllKinds {
		res.Files[kind] = streams.Path(kind)
	}

	r.logRecorderErr(r.recorder.BeginSweep(ctx, &model.SweepRun{
		SweepID:        sweepID,
		Repeats:        cfg.Repeats,
		Fast:           cfg.Fast,
		Hunger:         hunger,
		AvailableCores: available,
		VeronaPath:     cfg.VeronaPath,
		OutputDir:      cfg.OutputDir,
		Status:         model.SweepStatusRunning,
	}))
	log.Info("开始基准扫描",
		zap.String("sweep", sweepID),
		zap.Int("repeats", cfg.Repeats),
		zap.Int("cores", available),
		zap.Int("hunger", hunger),
		zap.String("binary", cfg.BinaryPath()))

	p := Progress{SweepID: sweepID, Repeats: cfg.Repeats, Total: cfg.Repeats * RunsPerRepeat(available)}
	step := func(repeat int, kind ExperimentKind, cores int) error {
		if err := ctx.Err(); err != nil {
			return errors.Annotate(err, "扫描被取消")
		}
		inv := BuildInvocation(kind, cores, cfg)
		result, err := r.invoker.RunOnce(ctx, inv)
		if err != nil {
			return err
		}
		if err := streams.Record(kind, result); err != nil {
			return err
		}
		res.Rows[kind] = streams.Rows(kind)
		r.logRecorderErr(r.recorder.RecordSample(ctx, &model.RunSample{
			SweepID:        sweepID,
			Repeat:         repeat,
			Kind:           string(kind),
			Cores:          cores,
			ElapsedSeconds: result.Seconds(),
		}))

		p.Repeat, p.Kind, p.Cores, p.Elapsed = repeat, kind, cores, result.Seconds()
		p.Completed++
		log.Debug("运行完成",
			zap.String("kind", string(kind)),
			zap.Int("cores", cores),
			zap.Float64("elapsed", result.Seconds()))
		if req.OnProgress != nil {
			req.OnProgress(p)
		}
		return nil
	}

	fail := func(cause error) (*SweepResult, error) {
		log.Error("基准扫描失败", zap.String("sweep", sweepID), zap.Error(cause))
		r.logRecorderErr(r.recorder.FinishSweep(ctx, sweepID, model.SweepStatusFailed, cause))
		return res, cause
	}

	for repeat := 0; repeat < cfg.Repeats; repeat++ {
		for _, cores := range FullCoreRange(available) {
			for _, kind := range FullSweepKinds {
				if err := step(repeat, kind, cores); err != nil {
					return fail(err)
				}
			}
			log.Info("核数完成", zap.Int("repeat", repeat), zap.Int("cores", cores))
		}
		for _, cores := range SparseCoreRange(available) {
			if err := step(repeat, KindVeronaSeq, cores); err != nil {
				return fail(err)
			}
		}
		log.Info("done repeat", zap.Int("repeat", repeat), zap.Int("completed", p.Completed), zap.Int("total", p.Total))
	}

	res.FinishedAt = time.Now()
	res.SummaryPath = filepath.Join(cfg.OutputDir, SummaryFileName)
	if err := WriteSweepSummary(res.SummaryPath, buildSummary(res)); err != nil {
		return fail(err)
	}
	r.logRecorderErr(r.recorder.FinishSweep(ctx, sweepID, model.SweepStatusFinished, nil))
	log.Info("基准扫描完成",
		zap.String("sweep", sweepID),
		zap.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
		zap.String("summary", res.SummaryPath))
	return res, nil
}

func (r *SweepRunner) logRecorderErr(err error) {
	if err != nil {
		log.Warn("持久化失败，继续扫描", zap.Error(err))
	}
}
