package udemy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// ErrCourseAPIUnavailable 课程接口不可达或返回非200
var ErrCourseAPIUnavailable = errors.New("课程搜索接口不可用")

// Client Udemy课程搜索API客户端。
// 认证为Basic头，clientID:secret在每次调用时base64编码一次，
// 无token缓存、无重试。
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	pageSize     int
	fields       string
	httpClient   *http.Client
}

// searchResponse 课程接口的JSON响应
type searchResponse struct {
	Count   int            `json:"count"`
	Results []types.Course `json:"results"`
}

// NewClient 创建课程搜索客户端
func NewClient(baseURL, clientID, clientSecret, fields string, pageSize int, timeout time.Duration) *Client {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		pageSize:     pageSize,
		fields:       fields,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// authHeader 构造Basic认证头
func (c *Client) authHeader() string {
	raw := c.clientID + ":" + c.clientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// Search 按自由文本查询课程，返回有序的课程列表（最多pageSize条）。
// 单次尝试，失败返回 ErrCourseAPIUnavailable 包装错误。
func (c *Client) Search(ctx context.Context, query string) ([]types.Course, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page", "1")
	params.Set("page_size", strconv.Itoa(c.pageSize))
	params.Set("fields[course]", c.fields)

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构造课程搜索请求失败: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCourseAPIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("query", query).
			Msg("课程接口返回非200状态")
		return nil, fmt.Errorf("%w: 状态码 %d", ErrCourseAPIUnavailable, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取课程响应失败: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("解析课程响应失败: %w", err)
	}

	// 结果顺序保持接口返回顺序，最多pageSize条
	results := searchResp.Results
	if len(results) > c.pageSize {
		results = results[:c.pageSize]
	}
	return results, nil
}
