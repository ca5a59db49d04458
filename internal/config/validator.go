package config

import (
	"fmt"
	"strings"

	logInterface "github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个配置错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap 支持 errors.As 逐个匹配
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// ValidateAppConfig 启动时校验用户配置
//
// 默认值补齐会静默忽略的错误（未知曲线、非法级别）在这里 fail-fast。
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}
	var errs []error

	if appConfig.Log != nil && appConfig.Log.Level != nil {
		if !logInterface.LogLevel(*appConfig.Log.Level).Valid() {
			errs = append(errs, &ValidationError{
				Field:   "log.level",
				Message: fmt.Sprintf("未知日志级别: %q", *appConfig.Log.Level),
			})
		}
	}

	if zk := appConfig.ZKVerify; zk != nil {
		for _, name := range zk.EnabledCurves {
			if _, ok := types.ParseCurveTag(name); !ok {
				errs = append(errs, &ValidationError{
					Field:   "zkverify.enabled_curves",
					Message: fmt.Sprintf("不支持的曲线: %q", name),
				})
			}
		}
		if zk.MaxPublicInputs != nil && *zk.MaxPublicInputs <= 0 {
			errs = append(errs, &ValidationError{
				Field:   "zkverify.max_public_inputs",
				Message: "必须 > 0",
			})
		}
		if zk.Toolchain != nil && zk.Toolchain.PackageName != nil {
			name := *zk.Toolchain.PackageName
			if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
				errs = append(errs, &ValidationError{
					Field:   "zkverify.toolchain.package_name",
					Message: fmt.Sprintf("非法包名: %q", name),
				})
			}
		}
	}

	if m := appConfig.Metrics; m != nil && m.Path != nil && !strings.HasPrefix(*m.Path, "/") {
		errs = append(errs, &ValidationError{
			Field:   "metrics.path",
			Message: fmt.Sprintf("路径必须以 / 开头: %q", *m.Path),
		})
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
