package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/auth"
	"github.com/example/commerceops/internal/config"
)

// ClaimsKey 通过鉴权后 claims 在 ctx.Values() 中的 key
const ClaimsKey = "admin_claims"

// BearerToken 从 Authorization: Bearer xxx 或 token 头中取出 token
func BearerToken(ctx iris.Context) string {
	if h := strings.TrimSpace(ctx.GetHeader("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return strings.TrimSpace(ctx.GetHeader("token"))
}

// AdminAuth 校验管理员 token；cache 可为 nil
func AdminAuth(cfg *config.JWTConfig, cache *auth.TokenCache, log *zap.Logger) iris.Handler {
	return func(ctx iris.Context) {
		token := BearerToken(ctx)
		if token == "" {
			unauthorized(ctx, "not authorized, login again")
			return
		}
		rctx := ctx.Request().Context()

		claims, hit, err := cache.Get(rctx, token)
		if err != nil {
			log.Warn("token cache get failed", zap.Error(err))
		}
		if !hit {
			claims, err = auth.ParseToken(cfg, token)
			if err != nil {
				unauthorized(ctx, "invalid or expired token")
				return
			}
			if err := cache.Set(rctx, token, claims); err != nil {
				log.Warn("token cache set failed", zap.Error(err))
			}
		}
		ctx.Values().Set(ClaimsKey, claims)
		ctx.Next()
	}
}

// AdminClaims 取出当前请求的管理员信息
func AdminClaims(ctx iris.Context) *auth.Claims {
	c, _ := ctx.Values().Get(ClaimsKey).(*auth.Claims)
	return c
}

func unauthorized(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"success": false, "message": msg})
}
