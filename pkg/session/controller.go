// Package session 是单次搜索会话的唯一事实来源。
// 控制器持有当前分析结果、逐关键词的深挖缓存、激活的分类过滤器，
// 以及由此派生的排序/聚合视图。所有状态迁移串行化在一把互斥锁后，
// 只有两类操作会在锁外挂起：顶层分析与逐关键词深挖的后端调用。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iWorld-y/keyword_scope/pkg/analysis"
	"github.com/iWorld-y/keyword_scope/pkg/logger"
	"github.com/iWorld-y/keyword_scope/pkg/model"
	"github.com/iWorld-y/keyword_scope/pkg/store"
)

// FilterAll 分类过滤器的默认值
const FilterAll = "All"

// 搜索历史的上限条数
const historyLimit = 5

// 单个关键词深挖的状态机：
// Collapsed -> Expanding -> Expanded；Expanded -> Collapsed 时缓存保留。
// Expanding 期间的重复切换被忽略，保证每个关键词至多一个在途请求。
const (
	StateCollapsed = "collapsed"
	StateExpanding = "expanding"
	StateExpanded  = "expanded"
)

type expansionEntry struct {
	state string
	data  *model.KeywordExpansion
}

// Analyzer 会话控制器依赖的分析能力
type Analyzer interface {
	RunAnalysis(ctx context.Context, seedKeyword string, settings model.AnalysisSettings) (*model.AnalysisResult, error)
	RunDeepDive(ctx context.Context, keyword string, settings model.AnalysisSettings) *model.KeywordExpansion
}

// ErrAnalysisInFlight 上一次分析尚未完成，拒绝重复提交
var ErrAnalysisInFlight = errors.New("session: analysis already in flight")

// Controller 会话状态控制器
type Controller struct {
	analyzer Analyzer
	prefs    store.Store

	mu           sync.Mutex
	wg           sync.WaitGroup
	settings     model.AnalysisSettings
	history      []string
	loading      bool
	errKind      string
	lastSearched string
	data         *model.AnalysisResult
	token        string // 当前结果的会话令牌，用于丢弃迟到的深挖结果
	filter       string
	expansions   map[string]*expansionEntry
}

// NewController 创建控制器并从存储加载偏好与历史（启动时读取一次）
func NewController(analyzer Analyzer, prefs store.Store) *Controller {
	c := &Controller{
		analyzer:   analyzer,
		prefs:      prefs,
		settings:   model.DefaultSettings(),
		history:    []string{},
		filter:     FilterAll,
		expansions: make(map[string]*expansionEntry),
	}
	c.loadPreferences()
	return c
}

// Search 发起一次新的顶层分析。
// 成功时整体替换当前结果：清空全部深挖缓存、过滤器复位为 All；
// 失败时记录错误种类，已有结果保持原样。
func (c *Controller) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		// 空输入在任何 I/O 与状态变更之前就被拒绝
		return analysis.ErrInvalidInput
	}

	c.mu.Lock()
	if c.loading {
		// 分析在途时搜索入口是禁用的，重复提交直接拒绝，
		// 避免两次分析的完成顺序决定展示结果
		c.mu.Unlock()
		return ErrAnalysisInFlight
	}
	c.loading = true
	c.errKind = ""
	settings := c.settings
	c.mu.Unlock()

	result, err := c.analyzer.RunAnalysis(ctx, term, settings)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errKind = analysis.Kind(err)
		return err
	}

	c.data = result
	c.token = ulid.Make().String()
	c.lastSearched = term
	c.filter = FilterAll
	c.expansions = make(map[string]*expansionEntry)
	c.errKind = ""
	c.pushHistory(term)
	return nil
}

// SetFilter 切换分类过滤器，纯状态迁移，派生视图在下次读取时重算
func (c *Controller) SetFilter(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if category == "" {
		category = FilterAll
	}
	c.filter = category
}

// ToggleExpansion 切换单个关键词的深挖展开。
// 折叠态且无缓存时触发后端深挖；Expanding 期间的重复切换不产生
// 第二个请求；展开态切回折叠态时缓存保留，再次展开无需重新拉取。
func (c *Controller) ToggleExpansion(ctx context.Context, keyword string) {
	keyword = strings.TrimSpace(keyword)

	c.mu.Lock()
	if keyword == "" || c.data == nil || !c.hasKeyword(keyword) {
		c.mu.Unlock()
		return
	}

	e := c.expansions[keyword]
	if e == nil {
		e = &expansionEntry{state: StateCollapsed}
		c.expansions[keyword] = e
	}

	switch e.state {
	case StateExpanded:
		e.state = StateCollapsed
		c.mu.Unlock()
		return
	case StateExpanding:
		// 请求在途，本次切换不做任何事
		c.mu.Unlock()
		return
	}

	if e.data != nil {
		// 缓存命中，直接展开
		e.state = StateExpanded
		c.mu.Unlock()
		return
	}

	e.state = StateExpanding
	token := c.token
	settings := c.settings
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// RunDeepDive 从不失败：后端出错时返回占位内容
		exp := c.analyzer.RunDeepDive(ctx, keyword, settings)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.token != token || c.data == nil || !c.hasKeyword(keyword) {
			// 结果所属的会话已被新搜索替换，迟到结果直接丢弃
			logger.Log.Debugf("丢弃过期的深挖结果 [%s]", keyword)
			return
		}
		entry := c.expansions[keyword]
		if entry == nil {
			return
		}
		entry.data = exp
		entry.state = StateExpanded
	}()
}

// Wait 等待所有在途的深挖请求落地，供优雅停机与测试使用
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Settings 返回当前偏好快照
func (c *Controller) Settings() model.AnalysisSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings 更新偏好并持久化
func (c *Controller) UpdateSettings(s model.AnalysisSettings) {
	if strings.TrimSpace(s.TargetMarket) == "" || strings.TrimSpace(s.Language) == "" {
		def := model.DefaultSettings()
		if strings.TrimSpace(s.TargetMarket) == "" {
			s.TargetMarket = def.TargetMarket
		}
		if strings.TrimSpace(s.Language) == "" {
			s.Language = def.Language
		}
	}
	if !validKeywordCount(s.KeywordCount) {
		s.KeywordCount = model.DefaultSettings().KeywordCount
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	c.persist(store.KeySettings, s)
}

// History 返回搜索历史副本，最近的在前
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// pushHistory 把成功的搜索词插入历史：置顶、去重、截断到上限。调用方需持锁。
func (c *Controller) pushHistory(term string) {
	next := make([]string, 0, historyLimit)
	next = append(next, term)
	for _, h := range c.history {
		if h != term && len(next) < historyLimit {
			next = append(next, h)
		}
	}
	c.history = next
	c.persist(store.KeyHistory, next)
}

// hasKeyword 判断关键词是否属于当前结果。调用方需持锁。
func (c *Controller) hasKeyword(keyword string) bool {
	for _, kw := range c.data.Keywords {
		if kw.Keyword == keyword {
			return true
		}
	}
	return false
}

// loadPreferences 启动时从存储恢复偏好与历史，坏数据回落到默认值
func (c *Controller) loadPreferences() {
	if c.prefs == nil {
		return
	}
	if raw, err := c.prefs.Get(store.KeySettings); err == nil {
		var s model.AnalysisSettings
		if err := json.Unmarshal(raw, &s); err == nil {
			if !validKeywordCount(s.KeywordCount) {
				s.KeywordCount = model.DefaultSettings().KeywordCount
			}
			if strings.TrimSpace(s.TargetMarket) != "" && strings.TrimSpace(s.Language) != "" {
				c.settings = s
			}
		}
	}
	if raw, err := c.prefs.Get(store.KeyHistory); err == nil {
		var h []string
		if err := json.Unmarshal(raw, &h); err == nil {
			if len(h) > historyLimit {
				h = h[:historyLimit]
			}
			c.history = h
		}
	}
}

// persist 序列化并写入存储，失败只记日志。调用方需持锁。
func (c *Controller) persist(key string, v any) {
	if c.prefs == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("序列化偏好失败 [%s]: %v", key, err)
		return
	}
	if err := c.prefs.Set(key, raw); err != nil {
		logger.Log.Errorf("持久化偏好失败 [%s]: %v", key, err)
	}
}

func validKeywordCount(n int) bool {
	for _, opt := range model.KeywordCountOptions {
		if n == opt {
			return true
		}
	}
	return false
}
