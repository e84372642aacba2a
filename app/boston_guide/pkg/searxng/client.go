package searxng

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client 自建 SearXNG 实例客户端
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient 创建 SearXNG 客户端，timeout 单位为秒，0 表示 30 秒
func NewClient(baseURL string, timeout int) *Client {
	d := time.Duration(timeout) * time.Second
	if d <= 0 {
		d = 30 * time.Second
	}
	return &Client{
		endpoint: baseURL,
		client:   &http.Client{Timeout: d},
	}
}

var _ search.Searcher = (*Client)(nil)

type searxResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid searxng url: %w", err)
	}
	u.Path = "/search"

	category := "general"
	if req.Topic == "news" {
		category = "news"
	}
	u.RawQuery = url.Values{
		"q":          {req.Query},
		"format":     {"json"},
		"categories": {category},
		"language":   {"en-US"},
	}.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create searxng request: %w", err)
	}
	// 部分实例会拦截无 UA 的请求
	httpReq.Header.Set("User-Agent", userAgent)

	var sr searxResponse
	if err := search.DoJSON(c.client, httpReq, "searxng", &sr); err != nil {
		return nil, err
	}

	out := &search.Response{}
	for _, r := range sr.Results {
		if req.MaxResults > 0 && len(out.Results) >= req.MaxResults {
			break
		}
		out.Results = append(out.Results, search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
