package apperr

import (
	"errors"
	"fmt"

	"hotel-iot-service/internal/error/code"
)

// AppError 携带错误码的业务错误，服务层返回，接口层据此生成响应
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New 创建一个带错误码的业务错误
func New(errorCode int, format string, args ...interface{}) *AppError {
	msg := code.GetMessage(errorCode)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: errorCode, Message: msg}
}

// CodeOf 提取错误对应的错误码，非业务错误归为未知错误
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return code.ErrUnknown
}

// Is 判断错误是否携带指定错误码
func Is(err error, errorCode int) bool {
	return CodeOf(err) == errorCode
}
