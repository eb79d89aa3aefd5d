package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/keyword_scope/pkg/logger"
	"github.com/iWorld-y/keyword_scope/pkg/model"
	"github.com/iWorld-y/keyword_scope/pkg/normalize"
	"github.com/iWorld-y/keyword_scope/pkg/search"
)

// Config 模型后端配置
type Config struct {
	BaseURL string
	Model   string
	QPS     int
	RPM     int
}

const (
	maxRetries     = 3
	baseRetryDelay = 2 * time.Second

	// 检索结果的取舍阈值，与正文抓取的截断长度
	maxGroundingPages = 6
	minPageContent    = 100
	maxPageContent    = 5000

	jsonSystemPrompt = "你是一个 JSON 生成器。请只输出 JSON 字符串，不要输出任何其他内容。"
)

// Client 基于 eino 的 OpenAI 兼容模型后端。
// 凭证逐调用传入（与原始产品保持一致），对应的 ChatModel 按凭证缓存。
type Client struct {
	cfg      Config
	searcher search.Searcher // 为空时不做检索增强
	limiter  *rate.Limiter

	mu     sync.Mutex
	models map[string]einomodel.ChatModel
}

// Ensure Client implements Generator
var _ Generator = (*Client)(nil)

// NewClient 创建模型后端
func NewClient(cfg Config, searcher search.Searcher) *Client {
	qps := cfg.QPS
	if qps <= 0 {
		qps = 1
	}
	rpm := cfg.RPM
	if rpm <= 0 {
		rpm = 30
	}
	return &Client{
		cfg:      cfg,
		searcher: searcher,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps),
		models:   make(map[string]einomodel.ChatModel),
	}
}

// Generate 执行一次生成调用
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (*Reply, error) {
	cm, err := c.chatModel(ctx, opts.Credential)
	if err != nil {
		return nil, fmt.Errorf("模型初始化失败: %w", err)
	}

	userContent := prompt
	var citations []model.GroundingSource
	if opts.EnableWebSearch && c.searcher != nil {
		grounding, sources := c.searchGrounding(ctx, opts.Query, opts.Market)
		if grounding != "" {
			userContent = grounding + "\n\n" + prompt
		}
		citations = sources
	}

	messages := []*schema.Message{
		{Role: schema.User, Content: userContent},
	}
	if opts.ForceJSONOutput {
		messages = append([]*schema.Message{
			{Role: schema.System, Content: jsonSystemPrompt},
		}, messages...)
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := cm.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) && i < maxRetries {
				lastErr = err
				delay := baseRetryDelay * time.Duration(1<<i) // 指数退避
				logger.Log.Warnf("触发 429 限流，等待 %v 后重试 (%d/%d)...", delay, i+1, maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
					continue
				}
			}
			return nil, err
		}

		return &Reply{Text: resp.Content, Citations: citations}, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// chatModel 返回指定凭证对应的 ChatModel，按需创建并缓存
func (c *Client) chatModel(ctx context.Context, credential string) (einomodel.ChatModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cm, ok := c.models[credential]; ok {
		return cm, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: c.cfg.BaseURL,
		APIKey:  credential,
		Model:   c.cfg.Model,
	})
	if err != nil {
		return nil, err
	}
	c.models[credential] = cm
	return cm, nil
}

// searchGrounding 执行网页检索并整理成给模型的上下文摘要。
// 检索失败只记日志不阻断生成，模型退化为无检索依据的回答。
func (c *Client) searchGrounding(ctx context.Context, query, market string) (string, []model.GroundingSource) {
	resp, err := c.searcher.Search(ctx, &search.Request{
		Query:      query,
		Market:     market,
		MaxResults: maxGroundingPages * 2,
	})
	if err != nil {
		logger.Log.Errorf("网页检索失败 [%s]: %v", query, err)
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("以下是关于「%s」的实时网页检索结果，请以此为依据作答：\n\n", query))

	var sources []model.GroundingSource
	count := 0
	for _, item := range resp.Results {
		content := item.Content
		if len(content) < minPageContent {
			fetched, err := fetchAndCleanContent(item.URL)
			if err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		if len(content) > maxPageContent {
			content = content[:maxPageContent]
		}
		if len(content) < minPageContent {
			continue
		}

		count++
		sb.WriteString(fmt.Sprintf("網頁 %d:\n標題: %s\n內容摘要: %s\n\n", count, item.Title, content))
		sources = append(sources, model.GroundingSource{URI: item.URL, Title: item.Title})
		if count >= maxGroundingPages {
			break
		}
	}

	if count == 0 {
		return "", nil
	}
	return sb.String(), normalize.FilterSources(sources)
}

// fetchAndCleanContent 抓取 URL 并提取核心文本
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
