package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/auth"
	"github.com/example/gadgetcave/internal/config"
)

const (
	claimsKey = "claims"
	userIDKey = "user_id"

	// AdminSessionKey 后台会话中保存的员工用户 ID
	AdminSessionKey = "admin_user_id"
)

func bearer(ctx iris.Context) string {
	h := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func unauthorized(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": msg})
}

// JWT 解析 Authorization 头；没有令牌时按游客放行，令牌无效或已登出时拒绝
func JWT(cfg *config.JWTConfig, revoked *auth.Revocations) iris.Handler {
	return func(ctx iris.Context) {
		token := bearer(ctx)
		if token == "" {
			ctx.Next()
			return
		}
		claims, err := auth.ParseToken(cfg, token)
		if err != nil {
			unauthorized(ctx, "invalid token")
			return
		}
		isRevoked, err := revoked.IsRevoked(ctx.Request().Context(), claims)
		if err != nil {
			// redis 不可用时不阻断请求
			zap.L().Warn("check token revocation failed", zap.Error(err))
		}
		if isRevoked {
			unauthorized(ctx, auth.ErrTokenRevoked.Error())
			return
		}
		ctx.Values().Set(claimsKey, claims)
		ctx.Values().Set(userIDKey, claims.UserID)
		ctx.Next()
	}
}

// RequireUser 必须是登录用户
func RequireUser(ctx iris.Context) {
	if UserID(ctx) == 0 {
		unauthorized(ctx, "login required")
		return
	}
	ctx.Next()
}

// Claims 当前请求的令牌信息，游客为 nil
func Claims(ctx iris.Context) *auth.Claims {
	c, _ := ctx.Values().Get(claimsKey).(*auth.Claims)
	return c
}

// UserID 当前登录用户，游客为 0
func UserID(ctx iris.Context) int64 {
	return ctx.Values().GetInt64Default(userIDKey, 0)
}

// RequireStaff 后台接口会话校验
func RequireStaff(sess *sessions.Sessions) iris.Handler {
	return func(ctx iris.Context) {
		s := sess.Start(ctx)
		id := s.GetInt64Default(AdminSessionKey, 0)
		if id == 0 {
			unauthorized(ctx, "staff login required")
			return
		}
		ctx.Values().Set(userIDKey, id)
		ctx.Next()
	}
}
