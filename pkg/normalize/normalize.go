// Package normalize 把模型产出的不可信 JSON 收敛到严格的领域模型。
// 生成式模型的输出经常部分偏离请求的 schema，整体拒绝会让系统在任何
// 偏差下都不可用，所以这里逐字段兜底：缺失或类型错误的字段用安全
// 默认值替换，数值夹到声明区间，枚举标签原样放行（未知值交给展示层
// 按兜底样式渲染）。Normalize 永不失败。
package normalize

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

const defaultMarketSummary = "暫無市場摘要。"

// Normalize 把任意 JSON 值映射为完整的 AnalysisResult
func Normalize(raw json.RawMessage) *model.AnalysisResult {
	var v any
	_ = json.Unmarshal(raw, &v)
	obj, _ := v.(map[string]any)

	return &model.AnalysisResult{
		MarketSummary:   stringOr(obj["market_summary"], defaultMarketSummary),
		AudienceProfile: normalizeAudience(obj["audience_profile"]),
		Keywords:        normalizeKeywords(obj["keywords"]),
		ContentIdeas:    normalizeContentIdeas(obj["content_ideas"]),
		RelatedTopics:   stringSlice(obj["related_topics"]),
		Sources:         normalizeSources(obj["sources"]),
	}
}

// PlaceholderExpansion 深挖调用彻底失败时的降级结果
func PlaceholderExpansion() *model.KeywordExpansion {
	return &model.KeywordExpansion{
		Variations:   []string{},
		UserQuestion: "無法取得詳細分析",
		ContentAngle: "暫無建議",
	}
}

// FilterSources 仅保留 URI 与标题皆非空的引用来源
func FilterSources(in []model.GroundingSource) []model.GroundingSource {
	out := make([]model.GroundingSource, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s.URI) != "" && strings.TrimSpace(s.Title) != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeAudience(v any) model.AudienceProfile {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.AudienceProfile{
			Persona:     "Unknown",
			PainPoints:  []string{},
			BuyingStage: model.StageAwareness,
		}
	}
	return model.AudienceProfile{
		Persona:     stringOr(obj["persona"], "Unknown"),
		PainPoints:  stringSlice(obj["pain_points"]),
		BuyingStage: stringOr(obj["buying_stage"], model.StageAwareness),
	}
}

func normalizeKeywords(v any) []model.KeywordMetric {
	arr, ok := v.([]any)
	if !ok {
		return []model.KeywordMetric{}
	}
	out := make([]model.KeywordMetric, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		kw := strings.TrimSpace(stringOr(obj["keyword"], ""))
		if kw == "" {
			// 关键词文本是条目的主键，空值条目没有意义
			continue
		}
		out = append(out, model.KeywordMetric{
			Keyword:    kw,
			Category:   stringOr(obj["category"], ""),
			Intent:     stringOr(obj["intent"], ""),
			Volume:     clampInt(obj["volume"], 0, 100),
			Difficulty: clampInt(obj["difficulty"], 0, 100),
			Reasoning:  stringOr(obj["reasoning"], ""),
		})
	}
	return out
}

func normalizeContentIdeas(v any) []model.ContentIdea {
	arr, ok := v.([]any)
	if !ok {
		return []model.ContentIdea{}
	}
	out := make([]model.ContentIdea, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.ContentIdea{
			Title:          stringOr(obj["title"], ""),
			Type:           stringOr(obj["type"], ""),
			TargetAudience: stringOr(obj["target_audience"], ""),
			ImpactScore:    clampInt(obj["impact_score"], 1, 10),
		})
	}
	return out
}

func normalizeSources(v any) []model.GroundingSource {
	arr, ok := v.([]any)
	if !ok {
		return []model.GroundingSource{}
	}
	sources := make([]model.GroundingSource, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sources = append(sources, model.GroundingSource{
			URI:   stringOr(obj["uri"], ""),
			Title: stringOr(obj["title"], ""),
		})
	}
	return FilterSources(sources)
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clampInt(v any, min, max int) int {
	f, ok := v.(float64)
	if !ok {
		return min
	}
	n := int(math.Round(f))
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
