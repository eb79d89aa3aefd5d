package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

func TestNormalize_EmptyObject(t *testing.T) {
	got := Normalize(json.RawMessage(`{}`))

	if got.MarketSummary != "暫無市場摘要。" {
		t.Errorf("MarketSummary = %q", got.MarketSummary)
	}
	if got.AudienceProfile.Persona != "Unknown" {
		t.Errorf("Persona = %q", got.AudienceProfile.Persona)
	}
	if got.AudienceProfile.BuyingStage != model.StageAwareness {
		t.Errorf("BuyingStage = %q", got.AudienceProfile.BuyingStage)
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty non-nil", got.Keywords)
	}
	if got.RelatedTopics == nil || got.Sources == nil || got.ContentIdeas == nil {
		t.Error("sequence fields must be non-nil")
	}
}

// 任意 JSON 值（null、标量、数组）都必须得到完整结果
func TestNormalize_Total(t *testing.T) {
	for _, raw := range []string{`null`, `42`, `"text"`, `[1,2,3]`, `{"keywords": "oops", "audience_profile": 7}`} {
		got := Normalize(json.RawMessage(raw))
		if got == nil {
			t.Fatalf("Normalize(%s) = nil", raw)
		}
		if got.Keywords == nil || got.ContentIdeas == nil || got.RelatedTopics == nil || got.Sources == nil {
			t.Errorf("Normalize(%s): nil sequence field", raw)
		}
		if got.MarketSummary == "" || got.AudienceProfile.Persona == "" {
			t.Errorf("Normalize(%s): missing string defaults", raw)
		}
	}
}

func TestNormalize_ClampsAndDrops(t *testing.T) {
	raw := json.RawMessage(`{
		"keywords": [
			{"keyword": "遠端工作 工具", "category": "Long-tail", "intent": "Informational", "volume": 150, "difficulty": -3, "reasoning": "r"},
			{"keyword": "  ", "volume": 50},
			{"keyword": "自訂標籤", "category": "Emerging", "intent": "Curious", "volume": 42.6, "difficulty": 42.4},
			"not an object"
		],
		"content_ideas": [{"title": "t", "type": "Blog", "impact_score": 99}],
		"sources": [
			{"uri": "https://example.com", "title": "Example"},
			{"uri": "https://no-title.example"},
			{"title": "no uri"}
		]
	}`)
	got := Normalize(raw)

	if len(got.Keywords) != 2 {
		t.Fatalf("len(Keywords) = %d, want 2 (blank keyword and non-object dropped)", len(got.Keywords))
	}
	if got.Keywords[0].Volume != 100 || got.Keywords[0].Difficulty != 0 {
		t.Errorf("clamp failed: volume=%d difficulty=%d", got.Keywords[0].Volume, got.Keywords[0].Difficulty)
	}
	// 未知枚举标签原样保留
	if got.Keywords[1].Category != "Emerging" || got.Keywords[1].Intent != "Curious" {
		t.Errorf("unknown enum tags must pass through: %+v", got.Keywords[1])
	}
	if got.Keywords[1].Volume != 43 || got.Keywords[1].Difficulty != 42 {
		t.Errorf("rounding: volume=%d difficulty=%d", got.Keywords[1].Volume, got.Keywords[1].Difficulty)
	}
	if got.ContentIdeas[0].ImpactScore != 10 {
		t.Errorf("ImpactScore = %d, want clamped to 10", got.ContentIdeas[0].ImpactScore)
	}
	if len(got.Sources) != 1 || got.Sources[0].Title != "Example" {
		t.Errorf("Sources = %+v, want only complete entries", got.Sources)
	}
}

// 规格化后的结果再编码、再规格化，必须不动点
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`null`,
		`{"market_summary":"ok","keywords":[{"keyword":"a","volume":500,"difficulty":-1}]}`,
		`{"audience_profile":{"persona":"工程師","pain_points":["時間不夠"],"buying_stage":"Decision"}}`,
	}
	for _, in := range inputs {
		first := Normalize(json.RawMessage(in))
		encoded, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second := Normalize(encoded)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not idempotent for %s:\nfirst  %+v\nsecond %+v", in, first, second)
		}
	}
}

func TestPlaceholderExpansion(t *testing.T) {
	got := PlaceholderExpansion()
	if len(got.Variations) != 0 || got.UserQuestion == "" || got.ContentAngle == "" {
		t.Errorf("placeholder must have empty variations and non-empty texts: %+v", got)
	}
}
