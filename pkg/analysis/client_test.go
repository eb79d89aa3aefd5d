package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iWorld-y/keyword_scope/pkg/backend"
	"github.com/iWorld-y/keyword_scope/pkg/extract"
	"github.com/iWorld-y/keyword_scope/pkg/model"
)

// mockGenerator 模拟模型后端
type mockGenerator struct {
	calls   int
	lastOpt backend.Options
	reply   *backend.Reply
	err     error
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts backend.Options) (*backend.Reply, error) {
	m.calls++
	m.lastOpt = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func testSettings() model.AnalysisSettings {
	return model.AnalysisSettings{TargetMarket: "Taiwan", Language: "Traditional Chinese", KeywordCount: 30}
}

// 模拟一份围栏包裹、含 30 个关键词的标准回复
func fencedAnalysisReply(t *testing.T, n int) *backend.Reply {
	t.Helper()
	keywords := make([]model.KeywordMetric, 0, n)
	for i := 0; i < n; i++ {
		keywords = append(keywords, model.KeywordMetric{
			Keyword: fmt.Sprintf("遠端工作 關鍵詞 %d", i),
			Intent:  model.IntentInformational,
			Volume:  i % 100,
		})
	}
	payload, err := json.Marshal(map[string]any{
		"market_summary": "遠端工作在台灣持續升溫。",
		"keywords":       keywords,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &backend.Reply{
		Text: "好的，以下是分析結果：\n```json\n" + string(payload) + "\n```",
		Citations: []model.GroundingSource{
			{URI: "https://example.com/a", Title: "來源 A"},
			{URI: "https://example.com/b", Title: "來源 B"},
			{URI: "https://example.com/c", Title: ""}, // 无标题，应被过滤
		},
	}
}

func TestRunAnalysis_FullScenario(t *testing.T) {
	gen := &mockGenerator{reply: fencedAnalysisReply(t, 30)}
	c := NewClient(gen, "env-key")

	got, err := c.RunAnalysis(context.Background(), "remote work", testSettings())
	if err != nil {
		t.Fatalf("RunAnalysis() error = %v", err)
	}
	if len(got.Keywords) != 30 {
		t.Errorf("len(Keywords) = %d, want 30", len(got.Keywords))
	}
	if len(got.Sources) != 2 {
		t.Errorf("len(Sources) = %d, want 2 (incomplete citation dropped)", len(got.Sources))
	}
	if !gen.lastOpt.EnableWebSearch {
		t.Error("analysis must request web-search grounding")
	}
	if gen.lastOpt.Credential != "env-key" {
		t.Errorf("credential = %q", gen.lastOpt.Credential)
	}
}

func TestRunAnalysis_ProseWrappedJSON(t *testing.T) {
	gen := &mockGenerator{reply: &backend.Reply{Text: `Here is the result: {"market_summary": "ok"} Thanks!`}}
	c := NewClient(gen, "k")

	got, err := c.RunAnalysis(context.Background(), "remote work", testSettings())
	if err != nil {
		t.Fatalf("RunAnalysis() error = %v", err)
	}
	if got.MarketSummary != "ok" {
		t.Errorf("MarketSummary = %q", got.MarketSummary)
	}
	if len(got.Keywords) != 0 || len(got.RelatedTopics) != 0 || len(got.Sources) != 0 {
		t.Errorf("sequences must default to empty: %+v", got)
	}
}

func TestRunAnalysis_MissingCredential(t *testing.T) {
	gen := &mockGenerator{}
	c := NewClient(gen, "")

	_, err := c.RunAnalysis(context.Background(), "remote work", model.AnalysisSettings{KeywordCount: 10})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if gen.calls != 0 {
		t.Errorf("generate called %d times, want 0 (fail before any network call)", gen.calls)
	}
}

// 用户提供的 key 仅在默认凭证缺席时生效
func TestRunAnalysis_CredentialPrecedence(t *testing.T) {
	gen := &mockGenerator{reply: &backend.Reply{Text: `{}`}}
	c := NewClient(gen, "")

	s := testSettings()
	s.APIKey = "user-key"
	if _, err := c.RunAnalysis(context.Background(), "kw", s); err != nil {
		t.Fatalf("RunAnalysis() error = %v", err)
	}
	if gen.lastOpt.Credential != "user-key" {
		t.Errorf("credential = %q, want user-key", gen.lastOpt.Credential)
	}

	c = NewClient(gen, "env-key")
	if _, err := c.RunAnalysis(context.Background(), "kw", s); err != nil {
		t.Fatalf("RunAnalysis() error = %v", err)
	}
	if gen.lastOpt.Credential != "env-key" {
		t.Errorf("credential = %q, env default must win over user key", gen.lastOpt.Credential)
	}
}

func TestRunAnalysis_EmptyKeyword(t *testing.T) {
	gen := &mockGenerator{}
	c := NewClient(gen, "k")

	_, err := c.RunAnalysis(context.Background(), "   ", testSettings())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if gen.calls != 0 {
		t.Error("empty keyword must be rejected before any I/O")
	}
}

func TestRunAnalysis_BackendError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("quota exceeded")}
	c := NewClient(gen, "k")

	_, err := c.RunAnalysis(context.Background(), "kw", testSettings())
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("err = %v, want ErrBackend", err)
	}
}

func TestRunAnalysis_ParseError(t *testing.T) {
	gen := &mockGenerator{reply: &backend.Reply{Text: "抱歉，我無法提供結構化結果。"}}
	c := NewClient(gen, "k")

	_, err := c.RunAnalysis(context.Background(), "kw", testSettings())
	var pe *extract.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *extract.ParseError", err)
	}
	if !strings.Contains(pe.Raw, "抱歉") {
		t.Error("ParseError must carry original text for diagnostics")
	}
}

func TestRunDeepDive_Success(t *testing.T) {
	gen := &mockGenerator{reply: &backend.Reply{
		Text: `{"variations":["v1","v2"],"user_question":"q","content_angle":"a"}`,
	}}
	c := NewClient(gen, "k")

	got := c.RunDeepDive(context.Background(), "露營裝備", testSettings())
	if len(got.Variations) != 2 || got.UserQuestion != "q" {
		t.Errorf("got %+v", got)
	}
	if !gen.lastOpt.ForceJSONOutput {
		t.Error("deep dive must force JSON output")
	}
	if gen.lastOpt.EnableWebSearch {
		t.Error("deep dive must not request web search")
	}
}

// 深挖失败时降级为占位内容，绝不抛错
func TestRunDeepDive_FailureAbsorbed(t *testing.T) {
	cases := []struct {
		name string
		gen  *mockGenerator
	}{
		{"backend error", &mockGenerator{err: errors.New("boom")}},
		{"non-json reply", &mockGenerator{reply: &backend.Reply{Text: "not json at all"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(tc.gen, "k")
			got := c.RunDeepDive(context.Background(), "kw", testSettings())
			if got == nil {
				t.Fatal("RunDeepDive must never return nil")
			}
			if len(got.Variations) != 0 {
				t.Errorf("Variations = %v, want empty", got.Variations)
			}
			if got.UserQuestion == "" || got.ContentAngle == "" {
				t.Errorf("placeholder texts must be non-empty: %+v", got)
			}
		})
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrMissingCredential, KindMissingCredential},
		{fmt.Errorf("%w: detail", ErrBackend), KindBackend},
		{fmt.Errorf("%w: empty", ErrInvalidInput), KindInvalidInput},
		{&extract.ParseError{Raw: "x"}, KindParse},
		{errors.New("unknown"), KindBackend},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
