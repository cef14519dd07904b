package database

import (
	"fmt"

	"civic-project-system/config"
	"civic-project-system/internal/global/sentry/tracing"
	"civic-project-system/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// autoMigrateModels 需要自动迁移的模型，关联表在前
var autoMigrateModels = []any{
	&model.Barangay{},
	&model.FundingSource{},
	&model.Tag{},
	&model.User{},
	&model.Project{},
	&model.ProgressHistory{},
	&model.Comment{},
	&model.Reaction{},
	&model.Report{},
	&model.Media{},
	&model.Announcement{},
	&model.Contact{},
	&model.Conversation{},
	&model.Message{},
}

func DSN(c config.Mysql) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.DBName)
}

// Init 连接 MySQL、注册追踪插件并迁移表结构
func Init() (*gorm.DB, error) {
	cfg := config.Get()
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		TranslateError: true,
	}
	switch cfg.Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}

	db, err := gorm.Open(mysql.Open(DSN(cfg.Mysql)), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if tracing.IsEnabled() {
		if err := db.Use(tracing.NewGormPlugin()); err != nil {
			return nil, fmt.Errorf("register tracing plugin: %w", err)
		}
	}
	if err := db.AutoMigrate(autoMigrateModels...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}
