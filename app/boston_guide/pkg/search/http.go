package search

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody 错误信息中保留的响应体长度
const maxErrorBody = 512

// APIError 搜索服务返回非 200 状态
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.Status, e.Body)
}

// DoJSON 执行请求并把 JSON 响应解码到 out
func DoJSON(client *http.Client, req *http.Request, provider string, out any) error {
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &APIError{Provider: provider, Status: res.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode response failed: %w", provider, err)
	}
	return nil
}
