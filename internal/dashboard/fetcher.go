package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sqall01/alertR/internal/aggregator"
	"github.com/sqall01/alertR/internal/models"
)

// Fetcher 向服务端请求聚合数据
type Fetcher interface {
	Fetch(ctx context.Context, req aggregator.Request) (*models.Response, error)
}

// HTTPFetcher 通过 /getJson 获取数据
type HTTPFetcher struct {
	client *resty.Client
	path   string
	logger *zap.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 创建客户端; 重试由 Controller 负责
func NewHTTPFetcher(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPFetcher{
		client: client,
		path:   "/getJson",
		logger: logger,
	}
}

// Fetch 请求 req 对应的分类
func (f *HTTPFetcher) Fetch(ctx context.Context, req aggregator.Request) (*models.Response, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(req.Query()).
		Get(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", f.path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var out models.Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out.Normalize()

	f.logger.Debug("Fetched manager data",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
		zap.Int("categories", len(out.Categories())),
	)
	return &out, nil
}
