package factory

import (
	"fmt"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/config"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/searxng"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/serper"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例，provider 为空时返回 nil 表示不联网检索
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	switch cfg.Provider {
	case "":
		return nil, nil

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

	case "serper":
		if cfg.Serper.APIKey == "" {
			return nil, fmt.Errorf("serper api key is missing")
		}
		return serper.NewClient(cfg.Serper.APIKey), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
