package model

import "time"

// RunSample 一次外部进程调用的计时结果，对应 CSV 中的一行
type RunSample struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SweepID        string  `gorm:"type:varchar(36);not null;index" json:"sweep_id"`
	Repeat         int     `json:"repeat"`
	Kind           string  `gorm:"type:varchar(32);not null;index" json:"kind"`
	Cores          int     `json:"cores"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}
