package service

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SummaryFileName 扫描结束后写在输出目录下的清单
const SummaryFileName = "summary.yaml"

type SweepSummary struct {
	SweepID        string          `yaml:"sweep_id" json:"sweep_id"`
	StartedAt      time.Time       `yaml:"started_at" json:"started_at"`
	FinishedAt     time.Time       `yaml:"finished_at" json:"finished_at"`
	Repeats        int             `yaml:"repeats" json:"repeats"`
	Fast           bool            `yaml:"fast" json:"fast"`
	Hunger         int             `yaml:"hunger" json:"hunger"`
	Philosophers   int             `yaml:"philosophers" json:"philosophers"`
	AvailableCores int             `yaml:"available_cores" json:"available_cores"`
	Binary         string          `yaml:"binary" json:"binary"`
	Outputs        []SummaryOutput `yaml:"outputs" json:"outputs"`
}

// SummaryOutput 只记录文件与行数，不做任何统计
type SummaryOutput struct {
	Kind     ExperimentKind `yaml:"kind" json:"kind"`
	File     string         `yaml:"file" json:"file"`
	Rows     int            `yaml:"rows" json:"rows"`
	CoreList []int          `yaml:"cores" json:"cores"`
}

func buildSummary(res *SweepResult) *SweepSummary {
	sum := &SweepSummary{
		SweepID:        res.SweepID,
		StartedAt:      res.StartedAt,
		FinishedAt:     res.FinishedAt,
		Repeats:        res.Config.Repeats,
		Fast:           res.Config.Fast,
		Hunger:         HungerFor(res.Config.Fast),
		Philosophers:   Philosophers,
		AvailableCores: res.AvailableCores,
		Binary:         res.Config.BinaryPath(),
	}
	for _, kind := range AllKinds {
		cores := FullCoreRange(res.AvailableCores)
		if kind == KindVeronaSeq {
			cores = SparseCoreRange(res.AvailableCores)
		}
		sum.Outputs = append(sum.Outputs, SummaryOutput{
			Kind:     kind,
			File:     filepath.Base(res.Files[kind]),
			Rows:     res.Rows[kind],
			CoreList: cores,
		})
	}
	return sum
}

// WriteSweepSummary 把清单写成 YAML
func WriteSweepSummary(path string, sum *SweepSummary) error {
	data, err := yaml.Marshal(sum)
	if err != nil {
		return &IOError{Op: "序列化", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "写入", Path: path, Err: err}
	}
	return nil
}

// ReadSweepSummary 读取已写出的清单
func ReadSweepSummary(path string) (*SweepSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "读取", Path: path, Err: err}
	}
	var sum SweepSummary
	if err := yaml.Unmarshal(data, &sum); err != nil {
		return nil, &IOError{Op: "解析", Path: path, Err: err}
	}
	return &sum, nil
}
