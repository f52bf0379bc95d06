package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// Client LeetCode统计接口客户端。
// 单次尝试、无重试、无退避：接口不可达或返回非200时，
// 返回所有计数器不可用的记录，调用方以"N/A"展示并继续流程。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// statsResponse 统计接口的JSON响应
type statsResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TotalSolved  int    `json:"totalSolved"`
	EasySolved   int    `json:"easySolved"`
	TotalEasy    int    `json:"totalEasy"`
	MediumSolved int    `json:"mediumSolved"`
	TotalMedium  int    `json:"totalMedium"`
	HardSolved   int    `json:"hardSolved"`
	TotalHard    int    `json:"totalHard"`
}

// NewClient 创建LeetCode统计客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://leetcode-stats-api.herokuapp.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchStats 按用户名查询解题统计。
// 失败不返回错误而是返回 Available=false 的记录，错误仅记录日志；
// 简历生成流程不因统计不可用而中断。
func (c *Client) FetchStats(ctx context.Context, username string) types.LeetCodeStats {
	unavailable := types.LeetCodeStats{Available: false}

	url := fmt.Sprintf("%s/%s/", c.baseURL, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("构造统计请求失败")
		return unavailable
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("统计接口不可达")
		return unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("username", username).
			Msg("统计接口返回非200状态")
		return unavailable
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("读取统计响应失败")
		return unavailable
	}

	var statsResp statsResponse
	if err := json.Unmarshal(bodyBytes, &statsResp); err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("解析统计响应失败")
		return unavailable
	}

	// 接口对不存在的用户返回 status=error
	if statsResp.Status != "success" {
		logger.Warn().
			Str("username", username).
			Str("api_status", statsResp.Status).
			Str("message", statsResp.Message).
			Msg("统计接口返回错误记录")
		return unavailable
	}

	return types.LeetCodeStats{
		Available:    true,
		TotalSolved:  statsResp.TotalSolved,
		EasySolved:   statsResp.EasySolved,
		TotalEasy:    statsResp.TotalEasy,
		MediumSolved: statsResp.MediumSolved,
		TotalMedium:  statsResp.TotalMedium,
		HardSolved:   statsResp.HardSolved,
		TotalHard:    statsResp.TotalHard,
	}
}
