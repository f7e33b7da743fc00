// Package agenda は外部の補完API（OpenAI Chat Completions）を使って
// 会議トピックの一覧を整理されたアジェンダに変換する機能を提供する。
package agenda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultEndpoint はOpenAI Chat Completions APIのベースURL。
const defaultBaseURL = "https://api.openai.com/v1"

// ChatMessage は補完APIに渡す1件のメッセージ。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest はChat Completions APIのリクエストボディ。
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatCompletionResponse はChat Completions APIのレスポンスボディ。
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ClientConfig は補完APIクライアントの設定。
type ClientConfig struct {
	APIKey      string
	BaseURL     string  // 空の場合はdefaultBaseURL
	Model       string  // 例: "gpt-4o-mini"
	Temperature float64 // 創造性と一貫性のバランス
	MaxTokens   int
}

// Client はOpenAI Chat Completions APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     ClientConfig
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはタイムアウト設定済みのクライアントを渡すこと。
func NewClient(httpClient *http.Client, logger *slog.Logger, config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// CreateChatCompletion はメッセージ列を補完APIに送信し、生成テキストを返す。
// リトライ・バッチ・ストリーミングは行わない単一のブロッキング呼び出し。
func (c *Client) CreateChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("補完APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("model", c.config.Model),
		)
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("補完APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("model", c.config.Model),
		)
		// エラーレスポンスからメッセージを取り出せる場合は含める
		var errResp chatCompletionResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return "", fmt.Errorf("補完APIがステータス %d を返しました: %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("補完APIがステータス %d を返しました", resp.StatusCode)
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("補完APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("補完APIのレスポンスにchoicesが含まれていません")
	}

	return result.Choices[0].Message.Content, nil
}
