package controllers

import (
	"errors"
	"io"

	"github.com/kataras/iris/v12"
	irisctx "github.com/kataras/iris/v12/context"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/service"
)

// OK 统一成功响应
func OK(ctx iris.Context, data interface{}) {
	_ = ctx.JSON(iris.Map{"code": 0, "msg": "", "data": data})
}

// Created 201 成功响应
func Created(ctx iris.Context, data interface{}) {
	ctx.StatusCode(iris.StatusCreated)
	OK(ctx, data)
}

// BadRequest 请求体无法解析等
func BadRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"code": iris.StatusBadRequest, "msg": msg})
}

// readOptionalJSON 请求体可省略，为空时 v 保持默认值
// 分块传输时 ContentLength 为 -1，只有明确为 0 才跳过解析
func readOptionalJSON(ctx iris.Context, v interface{}) bool {
	if ctx.Request().ContentLength == 0 {
		return true
	}
	if err := ctx.ReadJSON(v); err != nil {
		if irisctx.IsErrEmptyJSON(err) || errors.Is(err, io.EOF) {
			return true
		}
		BadRequest(ctx, err.Error())
		return false
	}
	return true
}

var notFound = []error{
	service.ErrProductNotFound,
	service.ErrCategoryNotFound,
	service.ErrCartNotFound,
	service.ErrCartItemNotFound,
	service.ErrPendingNotFound,
	service.ErrOrderNotFound,
	service.ErrUserNotFound,
}

// Fail 将业务错误映射为 HTTP 状态码
func Fail(ctx iris.Context, err error) {
	var (
		ve *service.ValidationError
		se *service.StockError
	)
	switch {
	case errors.As(err, &ve):
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"code":   iris.StatusBadRequest,
			"msg":    ve.Error(),
			"errors": ve.Fields,
		})
		return
	case errors.As(err, &se):
		ctx.StopWithJSON(iris.StatusConflict, iris.Map{"code": iris.StatusConflict, "msg": se.Message})
		return
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrLoginRequired):
		ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": err.Error()})
		return
	case errors.Is(err, service.ErrCartEmpty), errors.Is(err, service.ErrProductUnavailable):
		BadRequest(ctx, err.Error())
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"code": iris.StatusNotFound, "msg": err.Error()})
			return
		}
	}
	zap.L().Error("request failed", zap.String("method", ctx.Method()), zap.String("path", ctx.Path()), zap.Error(err))
	ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{
		"code": iris.StatusInternalServerError,
		"msg":  "internal server error",
	})
}
