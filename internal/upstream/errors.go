package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"college-schedule/backend/internal/model"
	apperrors "college-schedule/backend/pkg/errors"
)

// 按状态码映射的界面提示
const (
	msgValidation = "البيانات المدخلة غير صحيحة"
	msgForbidden  = "ليس لديك صلاحية للقيام بهذا الإجراء"
	msgNotFound   = "العنصر المطلوب غير موجود"
	msgConflict   = "يوجد تعارض مع محاضرة أخرى"
	msgServer     = "حدث خطأ في الخادم، يرجى المحاولة لاحقاً"
	msgNetwork    = "تعذر الاتصال بالخادم، يرجى التحقق من الاتصال"
	msgUnknown    = "حدث خطأ غير متوقع"
)

// APIError 后端调用失败
//
// Status 为 0 表示网络错误或超时；Message 为可直接展示的文本；
// 409 时 Conflict 携带冲突课程，供界面打开迁移流程。
type APIError struct {
	Status   int
	Message  string
	Conflict *model.LectureRecord
	Err      error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("upstream: HTTP %d: %s", e.Status, e.Message)
}

// Unwrap 401 映射为会话过期，使调用方可用 errors.Is 判断
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return apperrors.ErrSessionExpired
	}
	return e.Err
}

// IsConflict 是否为 409 冲突
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

// IsNetwork 是否为网络错误或超时
func (e *APIError) IsNetwork() bool { return e.Status == 0 }

// StatusMessage 状态码对应的阿拉伯语提示
func StatusMessage(status int) string {
	switch {
	case status == 0:
		return msgNetwork
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return msgValidation
	case status == http.StatusUnauthorized:
		return apperrors.ErrSessionExpired.Error()
	case status == http.StatusForbidden:
		return msgForbidden
	case status == http.StatusNotFound:
		return msgNotFound
	case status == http.StatusConflict:
		return msgConflict
	case status >= 500:
		return msgServer
	default:
		return msgUnknown
	}
}

// errorBody 后端错误响应的几种形态
type errorBody struct {
	Error   json.RawMessage   `json:"error"`
	Message json.RawMessage   `json:"message"`
	Detail  json.RawMessage   `json:"detail"`
	Errors  []json.RawMessage `json:"errors"`

	Conflict           json.RawMessage `json:"conflict"`
	ConflictingLecture json.RawMessage `json:"conflicting_lecture"`
	Data               json.RawMessage `json:"data"`
}

// NormalizeMessage 将 error / message / detail / errors[] 归并为一条展示文本
// 优先级依次递减；均不存在时返回空串
func NormalizeMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.message()
}

func (eb *errorBody) message() string {
	for _, raw := range []json.RawMessage{eb.Error, eb.Message, eb.Detail} {
		if s := textOf(raw); s != "" {
			return s
		}
	}
	var parts []string
	for _, raw := range eb.Errors {
		if s := textOf(raw); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "، ")
}

// textOf 字段可能是字符串、{msg|message} 对象或字符串数组
func textOf(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Msg
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		var parts []string
		for _, item := range list {
			if t := textOf(item); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "، ")
	}
	return ""
}

// conflictRecord 从 409 响应中提取冲突课程
func (eb *errorBody) conflictRecord() *model.LectureRecord {
	for _, raw := range []json.RawMessage{eb.Conflict, eb.ConflictingLecture, eb.Data} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var rec model.LectureRecord
		if err := json.Unmarshal(raw, &rec); err == nil && !rec.ID.Empty() {
			return &rec
		}
	}
	return nil
}

// newStatusError 由非 2xx 响应构造 APIError
// 后端提供的文本优先；5xx 一律使用通用提示
func newStatusError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: StatusMessage(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	if status < 500 && status != http.StatusUnauthorized {
		if msg := eb.message(); msg != "" {
			apiErr.Message = msg
		}
	}
	if status == http.StatusConflict {
		apiErr.Conflict = eb.conflictRecord()
	}
	return apiErr
}
