package service

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct 按结构体 tag 校验输入，累积全部违规后一次返回
func ValidateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	collected := &ValidationErrors{}
	for _, fe := range fieldErrs {
		collected.Add(fe.Field(), validationMessage(fe))
	}
	return collected.OrNil()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填"
	case "gt":
		return "必须大于 " + fe.Param()
	case "gte":
		return "必须大于等于 " + fe.Param()
	case "email":
		return "邮箱格式不正确"
	case "len":
		return "长度必须为 " + fe.Param()
	case "iso4217":
		return "币种代码不正确"
	default:
		return "不符合规则 " + fe.Tag()
	}
}
