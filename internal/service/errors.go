package service

import (
	"errors"
	"sort"
	"strings"
)

// 业务错误，HTTP 层据此映射状态码，错误信息直接面向用户
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartItemNotFound   = errors.New("product is not in the cart")
	ErrCartEmpty          = errors.New("your cart is empty")
	ErrPendingNotFound    = errors.New("no pending purchase found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLoginRequired      = errors.New("login required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPhoneTaken         = errors.New("This phone number is already registered.")
	ErrUsernameTaken      = errors.New("A user with that username already exists.")
)

// StockError 库存不足
type StockError struct {
	ProductID int64
	Message   string
}

func (e *StockError) Error() string { return e.Message }

// ValidationError 表单校验失败，Fields 为字段名到提示的映射
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
