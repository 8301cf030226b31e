package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
)

const systemPrompt = "You are a JSON generator. Only output the JSON object requested."

// Client 基于 eino ChatModel 的 OpenAI 兼容后端
type Client struct {
	baseURL   string
	apiKey    string
	chatModel model.ChatModel
	http      *http.Client
}

// NewClient 创建 OpenAI 兼容客户端
func NewClient(ctx context.Context, baseURL, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return newClient(baseURL, apiKey, chatModel, timeout), nil
}

func newClient(baseURL, apiKey string, cm model.ChatModel, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		chatModel: cm,
		http:      &http.Client{Timeout: timeout},
	}
}

var _ llm.Backend = (*Client)(nil)

func (c *Client) Name() string { return "openai" }

// Generate 以 system + user 消息调用模型，返回原始文本
func (c *Client) Generate(ctx context.Context, req *llm.GenerationRequest) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: req.Prompt},
	}

	resp, err := c.chatModel.Generate(ctx, messages,
		model.WithTemperature(float32(req.Temperature)),
		model.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}

// Probe 请求 {base}/models 确认服务可达且密钥有效
func (c *Client) Probe(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", llm.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", llm.ErrBackendUnavailable, res.StatusCode)
	}
	return nil
}
