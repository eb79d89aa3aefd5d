package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/keyword_scope/pkg/analysis"
	"github.com/iWorld-y/keyword_scope/pkg/model"
	"github.com/iWorld-y/keyword_scope/pkg/session"
	"github.com/iWorld-y/keyword_scope/pkg/store"
)

type stubAnalyzer struct {
	result *model.AnalysisResult
	err    error
}

func (s *stubAnalyzer) RunAnalysis(ctx context.Context, seed string, st model.AnalysisSettings) (*model.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAnalyzer) RunDeepDive(ctx context.Context, keyword string, st model.AnalysisSettings) *model.KeywordExpansion {
	return &model.KeywordExpansion{Variations: []string{}, UserQuestion: "q", ContentAngle: "a"}
}

func newService(a session.Analyzer) *KeyscopeService {
	ctrl := session.NewController(a, store.NewMemory())
	return NewKeyscopeService(ctrl, log.NewStdLogger(io.Discard))
}

func TestSearch_BackendFailureReturnsSnapshot(t *testing.T) {
	svc := newService(&stubAnalyzer{err: analysis.ErrBackend})

	snap, err := svc.Search(context.Background(), &SearchReq{Term: "露營裝備"})
	if err != nil {
		t.Fatalf("backend failure must map to an error snapshot, got err = %v", err)
	}
	if snap.ErrorKind != analysis.KindBackend {
		t.Errorf("ErrorKind = %q", snap.ErrorKind)
	}
}

func TestSearch_EmptyTermIsRequestError(t *testing.T) {
	svc := newService(&stubAnalyzer{})

	_, err := svc.Search(context.Background(), &SearchReq{Term: "  "})
	if !errors.Is(err, analysis.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSettings_CredentialNeverLeaves(t *testing.T) {
	svc := newService(&stubAnalyzer{})

	key := "sk-secret"
	if _, err := svc.UpdateSettings(context.Background(), &UpdateSettingsReq{
		TargetMarket: "Taiwan",
		Language:     "Traditional Chinese",
		KeywordCount: 10,
		APIKey:       &key,
	}); err != nil {
		t.Fatal(err)
	}

	reply, _ := svc.GetSettings(context.Background())
	if !reply.HasAPIKey {
		t.Error("HasAPIKey = false after setting a key")
	}
	if reply.KeywordCount != 10 {
		t.Errorf("KeywordCount = %d", reply.KeywordCount)
	}

	// 不带 apiKey 的更新保留已存的凭证
	if _, err := svc.UpdateSettings(context.Background(), &UpdateSettingsReq{
		TargetMarket: "Japan",
		Language:     "Japanese",
		KeywordCount: 30,
	}); err != nil {
		t.Fatal(err)
	}
	reply, _ = svc.GetSettings(context.Background())
	if !reply.HasAPIKey {
		t.Error("omitting apiKey in the request must not clear the stored key")
	}

	// 显式空字符串才清除
	empty := ""
	if _, err := svc.UpdateSettings(context.Background(), &UpdateSettingsReq{
		TargetMarket: "Japan",
		Language:     "Japanese",
		KeywordCount: 30,
		APIKey:       &empty,
	}); err != nil {
		t.Fatal(err)
	}
	reply, _ = svc.GetSettings(context.Background())
	if reply.HasAPIKey {
		t.Error("explicit empty apiKey must clear the stored key")
	}
}

func TestSuggestions_Stable(t *testing.T) {
	svc := newService(&stubAnalyzer{})
	reply, _ := svc.Suggestions(context.Background())
	if len(reply.Terms) == 0 {
		t.Fatal("no suggestions")
	}
	// 返回的是副本，调用方修改不影响下一次响应
	reply.Terms[0] = "改掉"
	again, _ := svc.Suggestions(context.Background())
	if again.Terms[0] == "改掉" {
		t.Error("suggestions must be copied per response")
	}
}
