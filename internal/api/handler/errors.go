package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/internal/upstream"
	apperrors "college-schedule/backend/pkg/errors"
	"college-schedule/backend/pkg/response"
)

// 业务错误码
const (
	CodeInvalidParams   = 10001
	CodeUnauthenticated = 10002
	CodeForbidden       = 10003
	CodeRateLimited     = 10004
	CodeBodyTooLarge    = 10005

	CodeInvalidCredentials = 11001
	CodeSessionExpired     = 11002
	CodeTokenRevoked       = 11003

	CodeRoomForbidden = 12003

	CodeScheduleConflict = 13009

	CodeCannotDeleteSelf = 15001

	CodeExportFailed = 16101

	// 后端错误：20000 + HTTP 状态码，网络错误为 20000
	CodeUpstream = 20000
)

const (
	msgInvalidParams   = "البيانات المدخلة غير صحيحة"
	msgUnauthenticated = "يرجى تسجيل الدخول"
	msgBodyTooLarge    = "حجم الملف أكبر من المسموح"
)

// respondError 将 Service 层错误映射为 HTTP 响应
func respondError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		response.Conflict(c, CodeScheduleConflict, conflict.Message, dto.ConflictResponse{
			Lecture: conflict.Lecture,
			Summary: conflict.Summary,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, CodeTokenRevoked, err.Error())
	case errors.Is(err, apperrors.ErrSessionExpired):
		response.Unauthorized(c, CodeSessionExpired, apperrors.ErrSessionExpired.Error())
	case errors.Is(err, service.ErrRoomForbidden):
		response.Forbidden(c, CodeRoomForbidden, err.Error())
	case errors.Is(err, service.ErrCannotDeleteSelf):
		response.BadRequest(c, CodeCannotDeleteSelf, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, CodeInvalidParams, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, CodeExportFailed, err.Error())
	default:
		apiErr, ok := upstream.AsAPIError(err)
		if !ok {
			_ = c.Error(err)
			response.InternalError(c)
			return
		}
		if apiErr.IsNetwork() || apiErr.Status >= http.StatusInternalServerError {
			_ = c.Error(err)
			response.BadGateway(c, CodeUpstream+apiErr.Status, apiErr.Message)
			return
		}
		response.Error(c, apiErr.Status, CodeUpstream+apiErr.Status, apiErr.Message)
	}
}

// bindFailed 参数绑定失败
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, msgBodyTooLarge)
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, CodeInvalidParams, msgInvalidParams, err.Error())
}
