package db

import (
	"fmt"
	"time"

	"dining-bench/internal/config"
	"dining-bench/internal/model"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// BuildDSN 由配置生成 go-sql-driver 格式的 DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	if cfg.Charset != "" {
		mc.Params = map[string]string{"charset": cfg.Charset}
	}
	return mc.FormatDSN()
}

func InitDB(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(mysql.Open(BuildDSN(cfg.Database)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return errors.Annotate(err, "连接数据库失败")
	}

	// 自动迁移
	if err := DB.AutoMigrate(
		&model.SweepRun{},
		&model.RunSample{},
	); err != nil {
		return errors.Annotate(err, "数据库迁移失败")
	}

	log.Info("数据库初始化成功",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))
	return nil
}
