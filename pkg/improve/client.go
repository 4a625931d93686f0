// Package improve 对接通用的文本润色 REST 服务。
// 协议：POST {baseUrl}/v1/improve，请求与响应都是简单 JSON。
package improve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"storyboard-ai/log"
)

// RestClient implements types.TextImprover interface
type RestClient struct {
	http *resty.Client
}

type improveRequest struct {
	Text     string `json:"text"`
	Style    string `json:"style,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Language string `json:"language,omitempty"`
}

type improveResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

func NewRestClient(baseUrl, apiKey string, timeout time.Duration) *RestClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseUrl, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RestClient{http: client}
}

func (c *RestClient) Improve(ctx context.Context, text, styleHint, toneHint, languageHint string) (string, error) {
	var result improveResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(improveRequest{
			Text:     text,
			Style:    styleHint,
			Tone:     toneHint,
			Language: languageHint,
		}).
		SetResult(&result).
		Post("/v1/improve")
	if err != nil {
		log.GetLogger().Warn("improve service request failed", zap.Error(err))
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("improve service returned http %d", resp.StatusCode())
	}
	if result.Code != 0 {
		return "", fmt.Errorf("improve service error %d: %s", result.Code, result.Msg)
	}
	return strings.TrimSpace(result.Data.Text), nil
}
