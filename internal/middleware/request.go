package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

// RequestID 透传或生成请求 ID，并写回响应头
func RequestID() iris.Handler {
	return func(ctx iris.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Values().Set(RequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// AccessLog 每个请求一行日志
func AccessLog(log *zap.Logger) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()
		log.Info("http request",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Int("status", ctx.GetStatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", ctx.Values().GetString(RequestIDKey)),
		)
	}
}

// Timeout 给请求上下文设置超时，仓储层通过 WithContext 感知
func Timeout(d time.Duration) iris.Handler {
	return func(ctx iris.Context) {
		if d <= 0 {
			ctx.Next()
			return
		}
		c, cancel := context.WithTimeout(ctx.Request().Context(), d)
		defer cancel()
		ctx.ResetRequest(ctx.Request().WithContext(c))
		ctx.Next()
	}
}
