package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
)

const defaultBaseURL = "https://google.serper.dev/search"

// Location 检索结果限定在波士顿地区
const Location = "Boston, Massachusetts, United States"

// Client Serper (Google Search) API 客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建 Serper 客户端
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
	}
}

// WithBaseURL 替换接口地址
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

var _ search.Searcher = (*Client)(nil)

type serperRequest struct {
	Q        string `json:"q"`
	Num      int    `json:"num,omitempty"`
	GL       string `json:"gl,omitempty"`
	Location string `json:"location,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Date     string `json:"date"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	num := req.MaxResults
	if num <= 0 {
		num = 5
	}
	payload, err := json.Marshal(serperRequest{
		Q:        req.Query,
		Num:      num,
		GL:       "us",
		Location: Location,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal serper request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create serper request: %w", err)
	}
	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	var sr serperResponse
	if err := search.DoJSON(c.client, httpReq, "serper", &sr); err != nil {
		return nil, err
	}

	out := &search.Response{Results: make([]search.Result, 0, len(sr.Organic))}
	for _, r := range sr.Organic {
		out.Results = append(out.Results, search.Result{
			Title:         r.Title,
			URL:           r.Link,
			Content:       r.Snippet,
			PublishedDate: r.Date,
			// position 越小越相关
			Score: 1 / float64(r.Position+1),
		})
	}
	return out, nil
}
