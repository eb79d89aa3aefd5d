package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iWorld-y/keyword_scope/pkg/search"
)

const baseURL = "https://api.tavily.com/search"

// Client Tavily API 客户端
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient 创建一个新的 Tavily 客户端
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		client: http.DefaultClient,
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	query := req.Query
	if req.Market != "" {
		// 把目标市场拼进查询串做地域化，Tavily 本身不支持按地区过滤
		query = fmt.Sprintf("%s %s", req.Query, req.Market)
	}
	tavilyReq := searchRequest{
		Query:             query,
		Topic:             "general",
		MaxResults:        req.MaxResults,
		IncludeRawContent: req.IncludeRawContent,
	}

	resp, err := c.doSearch(ctx, tavilyReq)
	if err != nil {
		return nil, err
	}

	var results []search.Result
	for _, r := range resp.Results {
		results = append(results, search.Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}

	return &search.Response{Results: results}, nil
}

// searchRequest Tavily 搜索请求参数
type searchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth,omitempty"` // basic or advanced
	Topic             string   `json:"topic,omitempty"`        // general or news
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeRawContent bool     `json:"include_raw_content,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
}

// searchResponse Tavily 搜索响应
type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

// searchResult 单个搜索结果
type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// doSearch 执行搜索 (Internal)
func (c *Client) doSearch(ctx context.Context, req searchRequest) (*searchResponse, error) {
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	httpReq.Header.Add("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &searchResp, nil
}
