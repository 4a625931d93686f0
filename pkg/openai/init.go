package openai

import (
	"context"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/log"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	// 总是配置自定义 HTTP Client 以设置代理
	transport := &http.Transport{}
	if proxyAddr != "" {
		transport.Proxy = http.ProxyURL(config.Conf.App.ParsedProxy)
	}

	cfg.HTTPClient = &http.Client{
		Transport: transport,
		// 不设置超时，长剧本解析可能运行较久，由调用方的 ctx 控制
	}

	client := openai.NewClientWithConfig(cfg)
	return &Client{client: client, model: model}
}

// ChatCompletion 单轮非流式补全，返回首个 choice 的文本
func (c *Client) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		log.GetLogger().Error("openai chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Improve 让 Client 直接充当提示词润色协作方
func (c *Client) Improve(ctx context.Context, text, styleHint, toneHint, languageHint string) (string, error) {
	prompt := "Rewrite the following video generation prompt to be more vivid and specific. " +
		"Keep the same scene content, do not add new plot elements, and answer with the rewritten prompt only."
	if styleHint != "" {
		prompt += " Target prompt style: " + styleHint + "."
	}
	if toneHint != "" {
		prompt += " Emotional tone: " + toneHint + "."
	}
	if languageHint != "" {
		prompt += " Answer in " + languageHint + "."
	}
	prompt += "\n\n" + text
	return c.ChatCompletion(ctx, prompt)
}
