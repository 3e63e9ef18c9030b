// Package validation 在 gin 默认校验器上注册自定义 binding 标签
package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterOneOfFold 注册大小写不敏感的枚举标签，空值交给 required/omitempty 处理
func RegisterOneOfFold(tag string, allowed ...string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}

	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToUpper(a)] = struct{}{}
	}

	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, ok := set[strings.ToUpper(s)]
		return ok
	})
}
