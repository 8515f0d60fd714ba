package database

import (
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/model"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitMySQL 初始化 MySQL 数据库连接并迁移对话相关的表结构。
func InitMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		log.Fatal("failed to migrate schema", err)
	}

	log.Info("MySQL database connected successfully")
	return db
}
