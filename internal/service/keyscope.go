package service

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/keyword_scope/pkg/analysis"
	"github.com/iWorld-y/keyword_scope/pkg/model"
	"github.com/iWorld-y/keyword_scope/pkg/session"
)

// 首页展示的灵感关键词，来自产品侧预设
var suggestions = []string{"遠端工作", "台北美食", "數位行銷", "AI 工具", "露營裝備"}

// KeyscopeService 把会话控制器包装为展示层服务
type KeyscopeService struct {
	ctrl *session.Controller
	log  *log.Helper
}

func NewKeyscopeService(ctrl *session.Controller, logger log.Logger) *KeyscopeService {
	return &KeyscopeService{
		ctrl: ctrl,
		log:  log.NewHelper(logger),
	}
}

// SearchReq 顶层搜索请求
type SearchReq struct {
	Term string `json:"term"`
}

// FilterReq 分类过滤请求
type FilterReq struct {
	Category string `json:"category"`
}

// ToggleReq 关键词深挖展开/折叠请求
type ToggleReq struct {
	Keyword string `json:"keyword"`
}

// StatusReply 无数据载荷操作的统一响应
type StatusReply struct {
	Success   bool   `json:"success"`
	ErrorKind string `json:"errorKind,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Search 发起一次新的关键词分析并返回完整会话快照
func (s *KeyscopeService) Search(ctx context.Context, req *SearchReq) (*session.Snapshot, error) {
	if err := s.ctrl.Search(ctx, req.Term); err != nil {
		// 空输入与重复提交是请求层错误，不进入会话状态
		if errors.Is(err, session.ErrAnalysisInFlight) || errors.Is(err, analysis.ErrInvalidInput) {
			return nil, err
		}
		s.log.WithContext(ctx).Warnf("分析失败 term=%q kind=%s: %v", req.Term, analysis.Kind(err), err)
	}
	// 分析失败也返回快照：错误种类已写入会话状态，由前端选择错误视图
	return s.ctrl.Snapshot(), nil
}

// SetFilter 切换分类过滤器并返回更新后的快照
func (s *KeyscopeService) SetFilter(ctx context.Context, req *FilterReq) (*session.Snapshot, error) {
	s.ctrl.SetFilter(req.Category)
	return s.ctrl.Snapshot(), nil
}

// ToggleKeyword 切换单个关键词的深挖展开状态
func (s *KeyscopeService) ToggleKeyword(ctx context.Context, req *ToggleReq) (*session.Snapshot, error) {
	s.ctrl.ToggleExpansion(ctx, req.Keyword)
	return s.ctrl.Snapshot(), nil
}

// State 返回当前会话快照
func (s *KeyscopeService) State(ctx context.Context) (*session.Snapshot, error) {
	return s.ctrl.Snapshot(), nil
}

// GetSettings 返回当前偏好（不含凭证明文，只暴露是否已配置）
func (s *KeyscopeService) GetSettings(ctx context.Context) (*SettingsReply, error) {
	st := s.ctrl.Settings()
	reply := &SettingsReply{
		TargetMarket: st.TargetMarket,
		Language:     st.Language,
		KeywordCount: st.KeywordCount,
		HasAPIKey:    st.APIKey != "",
	}
	return reply, nil
}

// SettingsReply 偏好响应，凭证以布尔形式体现
type SettingsReply struct {
	TargetMarket string `json:"targetMarket"`
	Language     string `json:"language"`
	KeywordCount int    `json:"keywordCount"`
	HasAPIKey    bool   `json:"hasApiKey"`
}

// UpdateSettingsReq 偏好更新请求。APIKey 为空时保留原值
type UpdateSettingsReq struct {
	TargetMarket string  `json:"targetMarket"`
	Language     string  `json:"language"`
	KeywordCount int     `json:"keywordCount"`
	APIKey       *string `json:"apiKey"`
}

// UpdateSettings 更新偏好并持久化
func (s *KeyscopeService) UpdateSettings(ctx context.Context, req *UpdateSettingsReq) (*SettingsReply, error) {
	cur := s.ctrl.Settings()
	next := model.AnalysisSettings{
		TargetMarket: req.TargetMarket,
		Language:     req.Language,
		KeywordCount: req.KeywordCount,
		APIKey:       cur.APIKey,
	}
	if req.APIKey != nil {
		next.APIKey = *req.APIKey
	}
	s.ctrl.UpdateSettings(next)
	return s.GetSettings(ctx)
}

// HistoryReply 搜索历史响应
type HistoryReply struct {
	Terms []string `json:"terms"`
}

// History 返回搜索历史，最近的在前
func (s *KeyscopeService) History(ctx context.Context) (*HistoryReply, error) {
	return &HistoryReply{Terms: s.ctrl.History()}, nil
}

// SuggestionsReply 灵感关键词响应
type SuggestionsReply struct {
	Terms []string `json:"terms"`
}

// Suggestions 返回首页展示的灵感关键词
func (s *KeyscopeService) Suggestions(ctx context.Context) (*SuggestionsReply, error) {
	terms := make([]string, len(suggestions))
	copy(terms, suggestions)
	return &SuggestionsReply{Terms: terms}, nil
}
