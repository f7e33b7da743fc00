package agenda

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/eventhub/internal/metrics"
)

// systemPrompt はアジェンダ最適化のふるまいを定義するシステムプロンプト。
const systemPrompt = `You help organize meeting topics into a clear agenda.

    Take the user's topics and arrange them in a logical order for the meeting.`

// CompletionClient は補完APIクライアントのインターフェースを定義する。
// テストではHTTPを使わないスタブに差し替える。
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, messages []ChatMessage) (string, error)
}

// ServiceConfig はアジェンダ最適化サービスの設定。
type ServiceConfig struct {
	Timeout    time.Duration // 補完API呼び出しの上限時間
	RatePerMin int           // 外向きリクエストのレート上限（件/分）
}

// Service は会話履歴つきのアジェンダ最適化を提供する。
// 補完APIの失敗はエラーとしてではなく、謝罪メッセージ文字列として
// 呼び出し元に返す（エンドポイントは200を返し続ける）。
type Service struct {
	client   CompletionClient
	limiter  *rate.Limiter
	recorder metrics.AgendaRecorder
	timeout  time.Duration
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(client CompletionClient, recorder metrics.AgendaRecorder, config ServiceConfig) *Service {
	ratePerMin := config.RatePerMin
	if ratePerMin <= 0 {
		ratePerMin = 60
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), ratePerMin),
		recorder: recorder,
		timeout:  timeout,
	}
}

// Optimize はユーザーの入力トピックと会話履歴から整理されたアジェンダを生成する。
// メッセージ列は system → history... → user の順に組み立てる。
// 補完APIの呼び出しに失敗した場合もエラーは返さず、定型の謝罪文を返す。
func (s *Service) Optimize(ctx context.Context, userMessage string, history []ChatMessage) string {
	start := time.Now()
	s.recordRequest()

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: userMessage})

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 外向きレートの平滑化。上限超過時はコンテキスト期限までブロックする
	if err := s.limiter.Wait(ctx); err != nil {
		s.recordFailure()
		slog.Warn("agenda request throttled",
			slog.String("error", err.Error()),
		)
		return fallbackMessage(err)
	}

	content, err := s.client.CreateChatCompletion(ctx, messages)
	s.recordLatency(time.Since(start))
	if err != nil {
		s.recordFailure()
		slog.Error("agenda optimization failed",
			slog.String("error", err.Error()),
		)
		return fallbackMessage(err)
	}

	return content
}

// fallbackMessage は補完API失敗時にユーザーへ返す定型文を生成する。
func fallbackMessage(err error) string {
	return fmt.Sprintf("Sorry, I encountered an error: %s. Please make sure your OpenAI API key is set correctly.", err)
}

func (s *Service) recordRequest() {
	if s.recorder != nil {
		s.recorder.RecordAgendaRequest()
	}
}

func (s *Service) recordFailure() {
	if s.recorder != nil {
		s.recorder.RecordAgendaFailure()
	}
}

func (s *Service) recordLatency(d time.Duration) {
	if s.recorder != nil {
		s.recorder.RecordAgendaLatency(d)
	}
}
