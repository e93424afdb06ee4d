package service

import (
	"context"
	"time"

	"dining-bench/internal/model"

	"github.com/pingcap/errors"
	"gorm.io/gorm"
)

// Recorder 扫描结果的可选持久化。CSV 是唯一权威结果，Recorder 出错只记日志。
type Recorder interface {
	BeginSweep(ctx context.Context, run *model.SweepRun) error
	RecordSample(ctx context.Context, sample *model.RunSample) error
	FinishSweep(ctx context.Context, sweepID string, status string, cause error) error
}

// NopRecorder 未配置数据库时使用
type NopRecorder struct{}

func (NopRecorder) BeginSweep(context.Context, *model.SweepRun) error         { return nil }
func (NopRecorder) RecordSample(context.Context, *model.RunSample) error       { return nil }
func (NopRecorder) FinishSweep(context.Context, string, string, error) error { return nil }

type DBRecorder struct {
	db *gorm.DB
}

func NewDBRecorder(db *gorm.DB) *DBRecorder {
	return &DBRecorder{db: db}
}

func (r *DBRecorder) BeginSweep(ctx context.Context, run *model.SweepRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Annotate(err, "创建扫描记录失败")
	}
	return nil
}

func (r *DBRecorder) RecordSample(ctx context.Context, sample *model.RunSample) error {
	if err := r.db.WithContext(ctx).Create(sample).Error; err != nil {
		return errors.Annotate(err, "写入采样失败")
	}
	return nil
}

func (r *DBRecorder) FinishSweep(ctx context.Context, sweepID string, status string, cause error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": &now,
	}
	if cause != nil {
		updates["error"] = cause.Error()
	}
	// 扫描被取消时 ctx 已失效，收尾写入不跟随它
	err := r.db.WithContext(context.WithoutCancel(ctx)).
		Model(&model.SweepRun{}).
		Where("sweep_id = ?", sweepID).
		Updates(updates).Error
	if err != nil {
		return errors.Annotate(err, "更新扫描状态失败")
	}
	return nil
}
