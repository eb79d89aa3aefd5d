// Package analysis 编排一次端到端的关键词分析：
// 构造提示词 → 调用模型后端 → 抽取 JSON → 规格化 → 合并引用来源。
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iWorld-y/keyword_scope/pkg/backend"
	"github.com/iWorld-y/keyword_scope/pkg/extract"
	"github.com/iWorld-y/keyword_scope/pkg/logger"
	"github.com/iWorld-y/keyword_scope/pkg/model"
	"github.com/iWorld-y/keyword_scope/pkg/normalize"
	"github.com/iWorld-y/keyword_scope/pkg/prompt"
)

// Client 分析客户端
type Client struct {
	gen backend.Generator
	// defaultCredential 环境/配置级默认凭证。凭证解析优先级：
	// 默认凭证优先于用户在设置里填写的值——这是从原始产品继承的
	// 行为，即便用户粘贴了自己的 key，构建期默认值仍然生效。
	defaultCredential string
}

// NewClient 创建分析客户端
func NewClient(gen backend.Generator, defaultCredential string) *Client {
	return &Client{gen: gen, defaultCredential: defaultCredential}
}

// RunAnalysis 执行一次完整的关键词分析
func (c *Client) RunAnalysis(ctx context.Context, seedKeyword string, settings model.AnalysisSettings) (*model.AnalysisResult, error) {
	p, err := prompt.BuildAnalysisPrompt(seedKeyword, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	cred, err := c.resolveCredential(settings)
	if err != nil {
		return nil, err
	}

	reply, err := c.gen.Generate(ctx, p, backend.Options{
		EnableWebSearch: true,
		Query:           strings.TrimSpace(seedKeyword),
		Market:          settings.TargetMarket,
		Credential:      cred,
	})
	if err != nil {
		logger.Log.Errorf("模型调用失败 [%s]: %v", seedKeyword, err)
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	raw, err := extract.Extract(reply.Text)
	if err != nil {
		// 所有抽取策略都已失败，按解析错误原样上抛
		logger.Log.Errorf("无法从模型回复中恢复 JSON [%s]", seedKeyword)
		return nil, err
	}

	result := normalize.Normalize(raw)
	result.Sources = append(result.Sources, normalize.FilterSources(reply.Citations)...)
	return result, nil
}

// RunDeepDive 执行单关键词深挖。这是可选功能背后的尽力而为操作：
// 任何失败都降级为占位内容返回，绝不向调用方抛错。
func (c *Client) RunDeepDive(ctx context.Context, keyword string, settings model.AnalysisSettings) *model.KeywordExpansion {
	p, err := prompt.BuildDeepDivePrompt(keyword, settings)
	if err != nil {
		return normalize.PlaceholderExpansion()
	}

	cred, err := c.resolveCredential(settings)
	if err != nil {
		logger.Log.Warnf("深挖缺少凭证 [%s]", keyword)
		return normalize.PlaceholderExpansion()
	}

	reply, err := c.gen.Generate(ctx, p, backend.Options{
		ForceJSONOutput: true,
		Credential:      cred,
	})
	if err != nil {
		logger.Log.Warnf("深挖调用失败 [%s]: %v", keyword, err)
		return normalize.PlaceholderExpansion()
	}

	// 深挖要求模型强制输出 JSON，这里只做严格解码，不走回退链
	var exp model.KeywordExpansion
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply.Text)), &exp); err != nil {
		logger.Log.Warnf("深挖结果解析失败 [%s]: %v", keyword, err)
		return normalize.PlaceholderExpansion()
	}
	if exp.Variations == nil {
		exp.Variations = []string{}
	}
	return &exp
}

// resolveCredential 解析本次操作使用的凭证，两处都没有则硬失败
func (c *Client) resolveCredential(settings model.AnalysisSettings) (string, error) {
	if c.defaultCredential != "" {
		return c.defaultCredential, nil
	}
	if settings.APIKey != "" {
		return settings.APIKey, nil
	}
	return "", ErrMissingCredential
}
