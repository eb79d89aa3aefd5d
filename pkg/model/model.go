package model

// AnalysisSettings 一次分析请求的用户偏好快照
type AnalysisSettings struct {
	TargetMarket string `json:"targetMarket" yaml:"target_market"`
	Language     string `json:"language" yaml:"language"`
	KeywordCount int    `json:"keywordCount" yaml:"keyword_count"`
	APIKey       string `json:"apiKey,omitempty" yaml:"api_key"`
}

// KeywordCountOptions 关键词数量的可选档位
var KeywordCountOptions = []int{10, 30, 50}

// DefaultSettings 默认偏好（与原始产品行为保持一致）
func DefaultSettings() AnalysisSettings {
	return AnalysisSettings{
		TargetMarket: "Taiwan",
		Language:     "Traditional Chinese",
		KeywordCount: 30,
	}
}

// 搜索意图枚举值。这些是开放标签：模型可能产出集合之外的新值，
// 一律原样保留，由展示层按兜底样式渲染。
const (
	IntentInformational = "Informational"
	IntentCommercial    = "Commercial"
	IntentTransactional = "Transactional"
	IntentNavigational  = "Navigational"
)

// 关键词分类枚举值（同样是开放标签）
const (
	CategoryQuestions  = "Questions"
	CategoryLongTail   = "Long-tail"
	CategoryHighIntent = "High Intent"
	CategoryNiche      = "Niche"
	CategoryCompetitor = "Competitor"
)

// 内容形式枚举值
const (
	ContentTypeBlog   = "Blog"
	ContentTypeVideo  = "Video"
	ContentTypeSocial = "Social"
	ContentTypeGuide  = "Guide"
)

// 购买阶段枚举值
const (
	StageAwareness     = "Awareness"
	StageConsideration = "Consideration"
	StageDecision      = "Decision"
)

// KeywordMetric 单个关键词的机会评估
type KeywordMetric struct {
	Keyword    string `json:"keyword"`
	Category   string `json:"category,omitempty"`
	Intent     string `json:"intent"`
	Volume     int    `json:"volume"`     // 0-100 相对搜索量
	Difficulty int    `json:"difficulty"` // 0-100 相对竞争度
	Reasoning  string `json:"reasoning"`
}

// ContentIdea 内容策略建议
type ContentIdea struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	TargetAudience string `json:"target_audience"`
	ImpactScore    int    `json:"impact_score"` // 1-10
}

// AudienceProfile 目标受众轮廓
type AudienceProfile struct {
	Persona     string   `json:"persona"`
	PainPoints  []string `json:"pain_points"`
	BuyingStage string   `json:"buying_stage"`
}

// GroundingSource 模型检索时引用的网页来源，URI 与标题皆非空才保留
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// AnalysisResult 一次关键词分析的完整产出，构造后不可变，
// 新的搜索会整体替换而不是原地修改
type AnalysisResult struct {
	MarketSummary   string            `json:"market_summary"`
	AudienceProfile AudienceProfile   `json:"audience_profile"`
	Keywords        []KeywordMetric   `json:"keywords"`
	ContentIdeas    []ContentIdea     `json:"content_ideas"`
	RelatedTopics   []string          `json:"related_topics"`
	Sources         []GroundingSource `json:"sources"`
}

// KeywordExpansion 单个关键词的按需深挖结果，按关键词文本缓存，
// 新的分析结果会使其整体失效
type KeywordExpansion struct {
	Variations   []string `json:"variations"`
	UserQuestion string   `json:"user_question"`
	ContentAngle string   `json:"content_angle"`
}

// 展示层的枚举标签映射（繁体中文），未知标签回退为原始值
var (
	intentLabels = map[string]string{
		IntentInformational: "資訊型",
		IntentCommercial:    "商業型",
		IntentTransactional: "交易型",
		IntentNavigational:  "導航型",
	}
	categoryLabels = map[string]string{
		CategoryQuestions:  "問題類",
		CategoryLongTail:   "長尾詞",
		CategoryHighIntent: "高意圖",
		CategoryNiche:      "利基市場",
		CategoryCompetitor: "競品詞",
	}
	contentTypeLabels = map[string]string{
		ContentTypeBlog:   "部落格文章",
		ContentTypeVideo:  "影片企劃",
		ContentTypeSocial: "社群貼文",
		ContentTypeGuide:  "完全指南",
	}
	buyingStageLabels = map[string]string{
		StageAwareness:     "認知階段",
		StageConsideration: "考量階段",
		StageDecision:      "決策階段",
	}
)

func lookupLabel(m map[string]string, tag string) string {
	if label, ok := m[tag]; ok {
		return label
	}
	return tag
}

// IntentLabel 返回意图标签的展示文本
func IntentLabel(tag string) string { return lookupLabel(intentLabels, tag) }

// CategoryLabel 返回分类标签的展示文本
func CategoryLabel(tag string) string { return lookupLabel(categoryLabels, tag) }

// ContentTypeLabel 返回内容形式的展示文本
func ContentTypeLabel(tag string) string { return lookupLabel(contentTypeLabels, tag) }

// BuyingStageLabel 返回购买阶段的展示文本
func BuyingStageLabel(tag string) string { return lookupLabel(buyingStageLabels, tag) }
