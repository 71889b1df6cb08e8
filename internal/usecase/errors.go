package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラー種別。レスポンスにそのまま出す安定した値。
const (
	CodeValidation   = "validation"
	CodeNotFound     = "not_found"
	CodeForbidden    = "forbidden"
	CodeConflict     = "conflict"
	CodePrecondition = "precondition"
	CodeUnauthorized = "unauthorized"
	CodeInternal     = "internal"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 入力が不正（400）
func ValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, CodeValidation, message)
}

// 対象が無い（404）
func NotFoundError(message string) error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, message)
}

// 権限が無い（403）
func ForbiddenError(message string) error {
	return NewHTTPError(http.StatusForbidden, CodeForbidden, message)
}

// 競合（409）。別トランザクションIDでの二重支払いなど
func ConflictError(message string) error {
	return NewHTTPError(http.StatusConflict, CodeConflict, message)
}

// 状態の前提を満たさない（422）。未払い注文の配達など
func PreconditionError(message string) error {
	return NewHTTPError(http.StatusUnprocessableEntity, CodePrecondition, message)
}

func UnauthorizedError(message string) error {
	return NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func InternalError(message string) error {
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, message)
}
