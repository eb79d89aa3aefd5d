// Package backend 封装对生成式模型的单一不透明调用。
// 除 pkg/search 与 pkg/store 外，这里是仓库里唯一发起网络 I/O 的地方。
package backend

import (
	"context"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

// Options 单次生成调用的选项
type Options struct {
	// EnableWebSearch 为真时先做一轮网页检索，把结果作为上下文
	// 提供给模型，并把访问过的网页作为引用来源返回
	EnableWebSearch bool
	// ForceJSONOutput 为真时附加只输出 JSON 的系统指令
	ForceJSONOutput bool
	// Query 检索用的查询词，仅在 EnableWebSearch 时使用
	Query string
	// Market 检索的目标市场，用于地域化检索结果
	Market string
	// Credential 本次调用使用的凭证，由上层解析好后传入
	Credential string
}

// Reply 生成结果：模型文本与检索时引用的网页来源
type Reply struct {
	Text      string
	Citations []model.GroundingSource
}

// Generator 对外部生成式服务的抽象
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Reply, error)
}
