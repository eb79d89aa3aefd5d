package analysis

import (
	"errors"

	"github.com/iWorld-y/keyword_scope/pkg/extract"
)

// 分析操作可能失败的几种方式。深挖（RunDeepDive）不在此列：
// 它支撑的是次要功能，任何失败都在内部降级吸收。
var (
	// ErrMissingCredential 环境/配置与用户设置都未提供凭证
	ErrMissingCredential = errors.New("analysis: no credential resolvable")
	// ErrBackend 外部模型服务调用失败（网络、配额、鉴权）
	ErrBackend = errors.New("analysis: backend call failed")
	// ErrInvalidInput 关键词去除空白后为空
	ErrInvalidInput = errors.New("analysis: invalid input")
)

// 错误种类代码，供展示层选择对应的错误视图
const (
	KindMissingCredential = "MISSING_API_KEY"
	KindBackend           = "BACKEND_ERROR"
	KindParse             = "PARSE_ERROR"
	KindInvalidInput      = "INVALID_INPUT"
)

// Kind 把错误映射为展示层的种类代码，未知错误按后端错误处理
func Kind(err error) string {
	var pe *extract.ParseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.As(err, &pe):
		return KindParse
	default:
		return KindBackend
	}
}
