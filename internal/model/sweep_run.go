package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	SweepStatusRunning  = "running"
	SweepStatusFinished = "finished"
	SweepStatusFailed   = "failed"
)

// SweepRun 每次基准扫描的元数据（与 CSV 输出目录一一对应，便于复现）
type SweepRun struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SweepID        string `gorm:"type:varchar(36);not null;uniqueIndex" json:"sweep_id"`
	Repeats        int    `json:"repeats"`
	Fast           bool   `json:"fast"`
	Hunger         int    `json:"hunger"`
	AvailableCores int    `json:"available_cores"`
	VeronaPath     string `gorm:"type:varchar(500)" json:"verona_path"`
	OutputDir      string `gorm:"type:varchar(500)" json:"output_dir"`
	// 状态：running/finished/failed
	Status     string     `gorm:"type:varchar(20);index" json:"status"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
