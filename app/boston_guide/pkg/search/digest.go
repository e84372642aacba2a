package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
)

// FetchFunc 抓取 URL 并返回正文
type FetchFunc func(ctx context.Context, url string) (string, error)

// DigestOptions 检索摘要选项
type DigestOptions struct {
	MaxResults int
	// MinContent 摘要短于该长度时尝试抓取原文
	MinContent int
	// MaxContent 每条结果保留的最大字符数
	MaxContent int
	Fetch      FetchFunc
}

func (o *DigestOptions) withDefaults() {
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	if o.MinContent <= 0 {
		o.MinContent = 200
	}
	if o.MaxContent <= 0 {
		o.MaxContent = 600
	}
	if o.Fetch == nil {
		o.Fetch = FetchReadable
	}
}

// Digest 依次执行查询并整理为纯文本参考列表
// 检索失败只记录日志，不影响主流程，全部失败时返回空串
func Digest(ctx context.Context, s Searcher, queries []string, opts DigestOptions) string {
	opts.withDefaults()

	var sb strings.Builder
	seen := make(map[string]bool)
	for _, q := range queries {
		resp, err := s.Search(ctx, &Request{
			Query:      q,
			Topic:      "general",
			MaxResults: opts.MaxResults,
		})
		if err != nil {
			logger.Log.Warnf("搜索失败 [%s]: %v", q, err)
			continue
		}
		logger.Log.Debugf("搜索 [%s] 返回 %d 条结果", q, len(resp.Results))

		kept := 0
		for _, item := range resp.Results {
			if kept >= opts.MaxResults {
				break
			}
			if item.URL == "" || seen[item.URL] {
				continue
			}
			seen[item.URL] = true

			content := strings.TrimSpace(item.Content)
			if utf8.RuneCountInString(content) < opts.MinContent {
				fetched, err := opts.Fetch(ctx, item.URL)
				if err != nil {
					logger.Log.Debugf("原文抓取失败，使用摘要 [%s]: %v", item.Title, err)
				} else if len(fetched) > len(content) {
					content = fetched
				}
			}

			fmt.Fprintf(&sb, "- %s (%s): %s\n", item.Title, item.URL, truncate(collapse(content), opts.MaxContent))
			kept++
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// maxPageBytes 单个页面最多读取的字节数
const maxPageBytes = 4 << 20

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// FetchReadable 抓取 HTML 页面并用 readability 提取正文，ctx 取消时立即返回
func FetchReadable(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create page request: %w", err)
	}

	res, err := fetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return "", fmt.Errorf("fetch page: unsupported content type %q", ct)
	}

	article, err := readability.FromReader(io.LimitReader(res.Body, maxPageBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract page: %w", err)
	}
	return article.TextContent, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate 按字符截断，避免切坏多字节字符
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}
