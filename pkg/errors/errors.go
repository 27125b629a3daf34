package errors

import "errors"

// ErrSessionExpired 会话已过期：后端返回 401 或本地会话到期，需重新登录
var ErrSessionExpired = errors.New("انتهت صلاحية الجلسة، يرجى تسجيل الدخول مرة أخرى")

// ErrValidation 本地校验失败：在发起任何后端请求之前拦截
var ErrValidation = errors.New("بيانات غير صالحة")
