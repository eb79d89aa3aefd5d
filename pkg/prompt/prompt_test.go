package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

func TestBuildAnalysisPrompt_Deterministic(t *testing.T) {
	s := model.AnalysisSettings{TargetMarket: "Taiwan", Language: "Traditional Chinese", KeywordCount: 30}
	a, err := BuildAnalysisPrompt("remote work", s)
	if err != nil {
		t.Fatalf("BuildAnalysisPrompt() error = %v", err)
	}
	b, _ := BuildAnalysisPrompt("remote work", s)
	if a != b {
		t.Error("identical input must yield byte-identical prompt text")
	}
}

func TestBuildAnalysisPrompt_Content(t *testing.T) {
	s := model.AnalysisSettings{TargetMarket: "Japan", Language: "Japanese", KeywordCount: 50}
	got, err := BuildAnalysisPrompt("  リモートワーク ", s)
	if err != nil {
		t.Fatalf("BuildAnalysisPrompt() error = %v", err)
	}
	for _, want := range []string{
		`"リモートワーク"`, // 去除首尾空白后的关键词
		"at least 50 high-potential keywords",
		"Japan market (Japanese)",
		`"Informational" | "Commercial" | "Transactional" | "Navigational"`,
		`"Questions" | "Long-tail" | "High Intent" | "Niche" | "Competitor"`,
		"web search",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPrompt_DefaultsApplied(t *testing.T) {
	got, err := BuildAnalysisPrompt("遠端工作", model.AnalysisSettings{})
	if err != nil {
		t.Fatalf("BuildAnalysisPrompt() error = %v", err)
	}
	if !strings.Contains(got, "Taiwan market (Traditional Chinese)") {
		t.Error("empty settings must fall back to defaults")
	}
	if !strings.Contains(got, "at least 30") {
		t.Error("keyword count must default to 30")
	}
}

func TestBuildPrompt_EmptyKeyword(t *testing.T) {
	s := model.DefaultSettings()
	if _, err := BuildAnalysisPrompt("   ", s); !errors.Is(err, ErrEmptyKeyword) {
		t.Errorf("BuildAnalysisPrompt blank: err = %v", err)
	}
	if _, err := BuildDeepDivePrompt("", s); !errors.Is(err, ErrEmptyKeyword) {
		t.Errorf("BuildDeepDivePrompt empty: err = %v", err)
	}
}

func TestBuildDeepDivePrompt(t *testing.T) {
	s := model.DefaultSettings()
	got, err := BuildDeepDivePrompt("露營裝備", s)
	if err != nil {
		t.Fatalf("BuildDeepDivePrompt() error = %v", err)
	}
	for _, want := range []string{`"露營裝備"`, `"variations"`, `"user_question"`, `"content_angle"`} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
