package session

import (
	"sort"

	"github.com/iWorld-y/keyword_scope/pkg/model"
)

// View 当前结果的派生投影：按激活分类过滤、按搜索量降序排序，
// 外加聚合指标。从不存储，每次读取重新计算。
type View struct {
	Keywords      []model.KeywordMetric `json:"keywords"`
	TotalShown    int                   `json:"total_shown"`
	AvgDifficulty int                   `json:"avg_difficulty"`
	Categories    []string              `json:"categories"` // "All" 恒为首项
	ActiveFilter  string                `json:"active_filter"`
}

// ExpansionView 单个关键词深挖的对外状态
type ExpansionView struct {
	State string                  `json:"state"`
	Data  *model.KeywordExpansion `json:"data,omitempty"`
}

// Snapshot 提供给展示层的完整会话快照。控制器对 UI 边界只产出
// 这种结果或错误的值，从不抛出。
type Snapshot struct {
	Loading      bool                     `json:"loading"`
	ErrorKind    string                   `json:"error_kind,omitempty"`
	LastSearched string                   `json:"last_searched,omitempty"`
	Data         *model.AnalysisResult    `json:"data,omitempty"`
	View         *View                    `json:"view,omitempty"`
	Expansions   map[string]ExpansionView `json:"expansions,omitempty"`
	Settings     model.AnalysisSettings   `json:"settings"`
	History      []string                 `json:"history"`
}

// View 计算当前过滤/排序下的派生视图，无结果时返回 nil
func (c *Controller) View() *View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Snapshot 生成当前会话的完整快照
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := &Snapshot{
		Loading:      c.loading,
		ErrorKind:    c.errKind,
		LastSearched: c.lastSearched,
		Data:         c.data,
		View:         c.viewLocked(),
		Settings:     c.settingsForDisplayLocked(),
		History:      append([]string{}, c.history...),
	}
	if len(c.expansions) > 0 {
		snap.Expansions = make(map[string]ExpansionView, len(c.expansions))
		for kw, e := range c.expansions {
			ev := ExpansionView{State: e.state}
			if e.state == StateExpanded {
				ev.Data = e.data
			}
			snap.Expansions[kw] = ev
		}
	}
	return snap
}

// viewLocked 派生视图的实际计算。调用方需持锁。
func (c *Controller) viewLocked() *View {
	if c.data == nil {
		return nil
	}

	// 按数据出现顺序收集去重后的分类，"All" 恒为首项
	categories := []string{FilterAll}
	seen := make(map[string]bool)
	for _, kw := range c.data.Keywords {
		if kw.Category != "" && !seen[kw.Category] {
			seen[kw.Category] = true
			categories = append(categories, kw.Category)
		}
	}

	filtered := make([]model.KeywordMetric, 0, len(c.data.Keywords))
	for _, kw := range c.data.Keywords {
		if c.filter == FilterAll || kw.Category == c.filter {
			filtered = append(filtered, kw)
		}
	}

	// 稳定排序保证同量级关键词的相对顺序可预测
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Volume > filtered[j].Volume
	})

	avg := 0
	if len(filtered) > 0 {
		sum := 0
		for _, kw := range filtered {
			sum += kw.Difficulty
		}
		avg = (sum + len(filtered)/2) / len(filtered) // 四舍五入
	}

	return &View{
		Keywords:      filtered,
		TotalShown:    len(filtered),
		AvgDifficulty: avg,
		Categories:    categories,
		ActiveFilter:  c.filter,
	}
}

// settingsForDisplayLocked 对外快照不携带用户凭证明文
func (c *Controller) settingsForDisplayLocked() model.AnalysisSettings {
	s := c.settings
	s.APIKey = ""
	return s
}
