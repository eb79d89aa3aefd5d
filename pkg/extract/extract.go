// Package extract 负责从模型的自由文本回复中抽取 JSON。
// 表现良好的回复会用 ```json 围栏包裹；降级的回复会在 JSON 前后
// 混入说明性文字；少数回复是裸 JSON。抽取按固定顺序尝试多个策略，
// 第一个成功者胜出。
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseError 所有策略均失败时返回，携带原始文本便于排查
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "extract: no valid JSON recovered from model response"
}

// strategy 单个抽取策略：返回抽取出的 JSON 与是否成功
type strategy func(raw string) (json.RawMessage, bool)

// 策略按观察到的回复质量从好到坏排列，新策略追加到末尾即可
var strategies = []strategy{
	fromFencedBlock,
	fromBraceSpan,
	fromWholeText,
}

// Extract 从自由文本中恢复一段 JSON
func Extract(raw string) (json.RawMessage, error) {
	for _, s := range strategies {
		if v, ok := s(raw); ok {
			return v, nil
		}
	}
	return nil, &ParseError{Raw: raw}
}

var fencedBlockRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// fromFencedBlock 抽取 ```json 围栏内部并严格解析
func fromFencedBlock(raw string) (json.RawMessage, bool) {
	m := fencedBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return validJSON(m[1])
}

// fromBraceSpan 截取第一个 '{' 到最后一个 '}' 之间的子串，
// 处理模型在 JSON 前后附加说明文字的情况
func fromBraceSpan(raw string) (json.RawMessage, bool) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last <= first {
		return nil, false
	}
	return validJSON(raw[first : last+1])
}

// fromWholeText 最后手段：整段文本按 JSON 解析
func fromWholeText(raw string) (json.RawMessage, bool) {
	return validJSON(raw)
}

func validJSON(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}
