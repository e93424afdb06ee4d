package service

import (
	"context"

	"gorm.io/gorm"
)

type ServiceContext struct {
	Runner   *SweepRunner
	Tracker  *SweepTracker
	Recorder Recorder
	// DB 为空表示未启用持久化
	DB *gorm.DB
}

func NewServiceContext(ctx context.Context, db *gorm.DB) *ServiceContext {
	var recorder Recorder = NopRecorder{}
	if db != nil {
		recorder = NewDBRecorder(db)
	}
	runner := NewSweepRunner(NewExecutor(), recorder)

	return &ServiceContext{
		Runner:   runner,
		Tracker:  NewSweepTracker(ctx, runner),
		Recorder: recorder,
		DB:       db,
	}
}
