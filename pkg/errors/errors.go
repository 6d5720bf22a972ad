package errors

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam       = 400
	CodeUnauthorized       = 401
	CodeForbidden          = 403
	CodeNotFound           = 404
	CodePreconditionFailed = 412
	CodeServerError        = 500
)

// AppError 业务错误：携带错误码，由 response.HandleError 统一映射
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewNotFound 资源不存在
func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewPreconditionFailed 前置条件不满足（如房间非空置）
func NewPreconditionFailed(message string) *AppError {
	return &AppError{Code: CodePreconditionFailed, Message: message}
}

// NewValidationFailed 参数校验失败
func NewValidationFailed(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message}
}

// NewStorageFailure 存储层失败，事务已回滚
func NewStorageFailure(message string) *AppError {
	return &AppError{Code: CodeServerError, Message: message}
}
