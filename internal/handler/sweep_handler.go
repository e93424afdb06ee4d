package handler

import (
	"errors"
	"net/http"
	"strconv"

	"dining-bench/internal/config"
	"dining-bench/internal/model"
	"dining-bench/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SweepRunRequest 未给出的字段使用服务启动时的 bench 配置
type SweepRunRequest struct {
	Repeats    *int   `json:"repeats"`
	Fast       *bool  `json:"fast"`
	VeronaPath string `json:"verona_path"`
	OutputDir  string `json:"output_dir"`
	MaxCores   *int   `json:"max_cores"`
}

type SweepHandler struct {
	tracker  *service.SweepTracker
	defaults config.BenchConfig
	db       *gorm.DB
}

func NewSweepHandler(tracker *service.SweepTracker, defaults config.BenchConfig, db *gorm.DB) *SweepHandler {
	return &SweepHandler{tracker: tracker, defaults: defaults, db: db}
}

// RunSweep 在后台启动一次扫描
func (h *SweepHandler) RunSweep(c *gin.Context) {
	var req SweepRunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	bench := h.defaults
	if req.Repeats != nil {
		bench.Repeats = *req.Repeats
	}
	if req.Fast != nil {
		bench.Fast = *req.Fast
	}
	if req.MaxCores != nil {
		bench.MaxCores = *req.MaxCores
	}
	if req.VeronaPath != "" {
		bench.VeronaPath = req.VeronaPath
	}
	if req.OutputDir != "" {
		bench.OutputDir = req.OutputDir
	}

	runCfg, err := config.NewRunConfiguration(bench)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.tracker.Start(runCfg)
	if err == service.ErrSweepRunning {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "current": h.tracker.Status()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"sweep_id":   id,
		"output_dir": runCfg.OutputDir,
	})
}

// CurrentSweep 当前或最近一次扫描的状态
func (h *SweepHandler) CurrentSweep(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sweep": h.tracker.Status()})
}

// CurrentSummary 最近一次成功扫描的 summary.yaml
func (h *SweepHandler) CurrentSummary(c *gin.Context) {
	st := h.tracker.Status()
	if st.State != service.SweepFinished || st.SummaryPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "没有已完成的扫描", "state": st.State})
		return
	}
	sum, err := service.ReadSweepSummary(st.SummaryPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

// ListSweeps 列出已持久化的扫描
func (h *SweepHandler) ListSweeps(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库"})
		return
	}

	query := h.db.WithContext(c.Request.Context()).Order("created_at DESC")
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			query = query.Limit(l)
		}
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var runs []model.SweepRun
	if err := query.Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweeps": runs, "total": len(runs)})
}

// ListSamples 某次扫描的全部采样，可按 kind 过滤
func (h *SweepHandler) ListSamples(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库"})
		return
	}
	id := c.Param("id")
	db := h.db.WithContext(c.Request.Context())

	var run model.SweepRun
	if err := db.Where("sweep_id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "扫描不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	query := db.Where("sweep_id = ?", id).Order("id")
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var samples []model.RunSample
	if err := query.Find(&samples).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep": run, "samples": samples})
}
