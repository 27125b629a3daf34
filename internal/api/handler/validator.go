package handler

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"college-schedule/backend/internal/model"
)

// RegisterValidators 注册自定义校验标签
//   - hhmm: 24 小时制 HH:MM
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	return v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return model.IsClockTime(fl.Field().String())
	})
}
