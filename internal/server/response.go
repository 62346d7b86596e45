package server

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/errs"
	"github.com/example/commerceops/internal/middleware"
)

// statusOf 错误类别到 HTTP 状态码
func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.NotFound:
		return iris.StatusNotFound
	case errs.InvalidInput:
		return iris.StatusBadRequest
	case errs.InvalidTransition:
		return iris.StatusUnprocessableEntity
	case errs.TerminalStateViolation, errs.Conflict:
		return iris.StatusConflict
	case errs.Unauthorized:
		return iris.StatusUnauthorized
	default:
		return iris.StatusInternalServerError
	}
}

// ok 成功响应：{"success": true, ...payload}
func ok(ctx iris.Context, payload iris.Map) {
	body := iris.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(body)
}

// fail 失败响应，内部错误只记日志不外露
func fail(ctx iris.Context, log *zap.Logger, err error) {
	kind := errs.KindOf(err)
	if kind == errs.Internal {
		log.Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.String("request_id", ctx.Values().GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
	}
	ctx.StopWithJSON(statusOf(kind), iris.Map{"success": false, "message": errs.Message(err)})
}

func badRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"success": false, "message": msg})
}
