package factory

import (
	"fmt"

	"github.com/iWorld-y/keyword_scope/pkg/search"
	"github.com/iWorld-y/keyword_scope/pkg/search/searxng"
	"github.com/iWorld-y/keyword_scope/pkg/search/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg search.Config) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// 默认回退逻辑：配置了 tavily key 就用 tavily
		if cfg.Tavily.APIKey != "" {
			provider = "tavily"
		} else {
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
