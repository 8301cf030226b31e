package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
)

// Client Ollama API 客户端
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient 创建一个新的 Ollama 客户端。调用超时由 llm.Gate 控制，这里只设置兜底超时
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements llm.Backend
var _ llm.Backend = (*Client)(nil)

// GenerateRequest /api/generate 请求体
type GenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options GenerateOptions `json:"options"`
}

// GenerateOptions 采样参数
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// GenerateResponse /api/generate 非流式响应
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// TagsResponse /api/tags 响应
type TagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func (c *Client) Name() string { return "ollama" }

// Generate 调用 /api/generate 返回原始文本
func (c *Client) Generate(ctx context.Context, req *llm.GenerationRequest) (string, error) {
	u, err := c.endpoint("/api/generate")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(&GenerateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: GenerateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("ollama api error (status %d): %s", res.StatusCode, string(b))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(res.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response failed: %w", err)
	}
	return strings.TrimSpace(genResp.Response), nil
}

// Probe 检查 /api/tags 中是否存在配置的模型
func (c *Client) Probe(ctx context.Context) error {
	u, err := c.endpoint("/api/tags")
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", llm.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", llm.ErrBackendUnavailable, res.StatusCode)
	}

	var tags TagsResponse
	if err := json.NewDecoder(res.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags failed: %w", err)
	}
	for _, m := range tags.Models {
		if c.matches(m.Name) || c.matches(m.Model) {
			return nil
		}
	}
	return fmt.Errorf("%w: model %s not found", llm.ErrBackendUnavailable, c.model)
}

func (c *Client) matches(name string) bool {
	if name == "" {
		return false
	}
	return name == c.model || name == c.model+":latest"
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}
