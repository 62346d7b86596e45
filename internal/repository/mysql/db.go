package mysql

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/datamodels/review"
	"github.com/example/commerceops/internal/errs"
)

// Open 建立 GORM 连接
func Open(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	}
	return db, nil
}

// Migrate 自动迁移表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&product.Product{}, &order.Order{}, &message.Message{}, &review.Review{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// translate 把 gorm 错误转换成业务错误，避免把 SQL 细节返回给调用方
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.NotFound, "%s not found", what)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Wrap(errs.Conflict, err, what+": duplicate key")
	}
	return errs.Wrap(errs.Internal, err, what)
}
