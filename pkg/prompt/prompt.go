// Package prompt 把用户意图渲染成发给模型的指令文本。
// 两个构造函数都是纯函数：同样的输入永远产生逐字节相同的提示词。
// 指令里同时约定了输出 schema、枚举词表、关键词数量下限，以及
// 自由文本使用目标语言而枚举字段保持英文代码值的要求。
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

// ErrEmptyKeyword 关键词去除空白后为空
var ErrEmptyKeyword = errors.New("prompt: keyword is empty")

const analysisPromptTpl = `Act as a Senior SEO Strategist and Content Marketing Manager specializing in the %[1]s market (%[2]s).

1. Perform a live web search for "%[3]s" to understand current trends, user intent, competitor content, and related long-tail queries in %[1]s.
2. Analyze the search results to build a comprehensive keyword research report.

OUTPUT REQUIREMENTS:
Return a SINGLE JSON object. Do not include markdown formatting outside the JSON. The JSON must follow this exact schema:

{
  "market_summary": "A concise paragraph (3-4 sentences) describing the current search landscape, trends, and user sentiment for this topic in %[1]s.",
  "audience_profile": {
    "persona": "Description of the primary person searching for this",
    "pain_points": ["Pain point 1", "Pain point 2", "Pain point 3"],
    "buying_stage": "Awareness" | "Consideration" | "Decision"
  },
  "related_topics": ["Topic 1", "Topic 2", "Topic 3", "Topic 4", "Topic 5"],
  "keywords": [
    {
      "keyword": "string (long tail keyword in %[2]s)",
      "category": "Questions" | "Long-tail" | "High Intent" | "Niche" | "Competitor",
      "intent": "Informational" | "Commercial" | "Transactional" | "Navigational",
      "volume": number (0-100 estimated relative volume),
      "difficulty": number (0-100 estimated competition),
      "reasoning": "Brief explanation of why this is a good opportunity (in %[2]s)"
    }
  ],
  "content_ideas": [
    {
      "title": "Catchy Title for a piece of content (in %[2]s)",
      "type": "Blog" | "Video" | "Social" | "Guide",
      "target_audience": "Who this specific piece is for",
      "impact_score": number (1-10 potential traffic impact)
    }
  ]
}

CONSTRAINTS:
- LANGUAGE: All generated text (summaries, titles, reasonings, keywords) MUST be in %[2]s suitable for the target audience in %[1]s.
- EXCEPTIONS: Keep the specific ENUM values for 'intent', 'type', 'buying_stage', and 'category' in English/Code format so the application logic works correctly.
- KEYWORD QUANTITY: You MUST generate at least %[4]d high-potential keywords.
- FOCUS: Prioritize "Untapped" and "Long-tail" keywords that have reasonable volume but lower competition. Dig deep into specific user questions.
- Generate 4 diverse content ideas (mix of Blog, Video, Guide).
- Ensure data is based on the web search results performed.`

const deepDivePromptTpl = `Focus on the keyword: "%[1]s" for the %[2]s market (%[3]s).
Provide a quick, deep-dive expansion.

Return a SINGLE JSON object with this schema:
{
  "variations": ["string (3-4 highly relevant long-tail variations or sub-topics)"],
  "user_question": "string (The core specific question the user is asking when searching this)",
  "content_angle": "string (A one-sentence unique angle to write about this to beat competitors)"
}

Language: %[3]s.`

// BuildAnalysisPrompt 渲染完整分析的指令文本
func BuildAnalysisPrompt(seedKeyword string, s model.AnalysisSettings) (string, error) {
	seed := strings.TrimSpace(seedKeyword)
	if seed == "" {
		return "", ErrEmptyKeyword
	}
	s = withDefaults(s)
	return fmt.Sprintf(analysisPromptTpl, s.TargetMarket, s.Language, seed, s.KeywordCount), nil
}

// BuildDeepDivePrompt 渲染单关键词深挖的指令文本
func BuildDeepDivePrompt(keyword string, s model.AnalysisSettings) (string, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return "", ErrEmptyKeyword
	}
	s = withDefaults(s)
	return fmt.Sprintf(deepDivePromptTpl, kw, s.TargetMarket, s.Language), nil
}

// withDefaults 缺省字段回落到默认偏好，保证渲染结果始终完整
func withDefaults(s model.AnalysisSettings) model.AnalysisSettings {
	def := model.DefaultSettings()
	if strings.TrimSpace(s.TargetMarket) == "" {
		s.TargetMarket = def.TargetMarket
	}
	if strings.TrimSpace(s.Language) == "" {
		s.Language = def.Language
	}
	if s.KeywordCount <= 0 {
		s.KeywordCount = def.KeywordCount
	}
	return s
}
