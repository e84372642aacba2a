package search

import "context"

// Searcher 联网检索，用于给推荐任务附加参考资料
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 检索请求，Topic 取 general 或 news
type Request struct {
	Query             string
	Topic             string
	MaxResults        int
	IncludeRawContent bool
}

// Response 检索结果，按相关度降序
type Response struct {
	Results []Result
}

// Result 单条结果，RawContent 仅部分服务返回
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	Score         float64
	PublishedDate string
}
