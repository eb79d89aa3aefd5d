// Package search 定义关键词调研所用的通用网页搜索接口
package search

import "context"

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query             string
	Market            string // 目标市场，用于地域化检索（如 "Taiwan"）
	MaxResults        int
	IncludeRawContent bool
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// Config 搜索提供方配置，由外层配置转换而来
type Config struct {
	Provider string // "tavily" 或 "searxng"
	Tavily   TavilyConfig
	SearXNG  SearXNGConfig
}

// TavilyConfig Tavily 提供方配置
type TavilyConfig struct {
	APIKey string
}

// SearXNGConfig SearXNG 提供方配置
type SearXNGConfig struct {
	BaseURL string
	Timeout int // 秒
}
