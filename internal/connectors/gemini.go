package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient — единственный исходящий вызов к generateContent.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewGeminiClient создает клиент. Пустые baseURL/model заменяются дефолтами.
func NewGeminiClient(httpClient *http.Client, baseURL, model string) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// Model возвращает идентификатор модели (для логов и метрик).
func (c *GeminiClient) Model() string { return c.model }

// Send делает ровно один POST и возвращает текст первого кандидата.
// jsonMode только просит модель отдать application/json, разбор остается за parser.
func (c *GeminiClient) Send(ctx context.Context, prompt string, jsonMode bool, credential string) (string, error) {
	// 1. Без ключа в сеть не ходим
	if strings.TrimSpace(credential) == "" {
		return "", ErrUnauthenticated
	}

	// 2. Собираем тело запроса
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0},
	}
	if jsonMode {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(credential))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 3. Сам вызов. Отмена контекста прерывает его на лету
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// 4. Не-2xx: статус + сообщение сервера, если его можно достать
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != nil && er.Error.Message != "" {
			msg = er.Error.Message
		}
		return "", &HTTPError{Status: resp.StatusCode, Message: msg}
	}

	// 5. Нет candidates/content/parts — ответ заблокирован или битый
	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	if len(gr.Candidates) == 0 || gr.Candidates[0].Content == nil || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", ErrBlocked
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// IsCancelled проверяет, что ошибка вызвана отменой.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
