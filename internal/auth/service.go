// Package auth は許可リスト方式の管理者ログイン、セッション検証、管理者管理を提供する。
//
// 認証はProfileテーブル（許可リスト）にemailが存在することのみを資格とする。
// パスワードや多要素認証は扱わない。セッションはプロセスローカルの
// session.Storeに保持され、固定TTLで失効する。スライディング有効期限は
// 実装しない（検証に成功してもセッションは延長されない）。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/eventhub/internal/metrics"
	"github.com/hitoshi/eventhub/internal/model"
	"github.com/hitoshi/eventhub/internal/repository"
	"github.com/hitoshi/eventhub/internal/session"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL time.Duration // セッション有効期間
}

// LoginResult はログイン成功時に呼び出し元へ返す値。
type LoginResult struct {
	Token string
	Email string
}

// Service は認証に関するビジネスロジックを提供する。
// sessionsのロックを保持したままprofilesへのI/Oを行わないこと。
type Service struct {
	profiles repository.ProfileRepository
	sessions *session.Store
	recorder metrics.AuthRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(
	profiles repository.ProfileRepository,
	sessions *session.Store,
	recorder metrics.AuthRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		profiles: profiles,
		sessions: sessions,
		recorder: recorder,
		config:   config,
	}
}

// Login は許可リストを照合し、成功時に新しいセッションを発行する。
// emailがProfileテーブルに存在しない場合はセッションを作らず
// EMAIL_NOT_AUTHORIZEDを返す。これが唯一の認証チェックである。
func (s *Service) Login(ctx context.Context, email string) (*LoginResult, error) {
	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		s.recordLoginFailure()
		slog.Warn("login rejected: email not on allowlist",
			slog.String("email", email),
		)
		return nil, model.NewEmailNotAuthorizedError()
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().Add(s.config.SessionTTL)
	s.sessions.Put(token, profile.Email, expiresAt)

	s.recordLoginSuccess()
	slog.Info("admin logged in",
		slog.String("email", profile.Email),
	)

	return &LoginResult{
		Token: token,
		Email: profile.Email,
	}, nil
}

// Validate はトークンを検証し、対応するProfileを返す。
// 期限はアクセスごとに再判定する。期限切れを検出した場合はセッションを
// 削除した上でSESSION_EXPIREDを返す（2回目以降の検証はSESSION_INVALIDになる）。
// Profileは都度データベースから再取得し、削除済み管理者の古い身元を信用しない。
func (s *Service) Validate(ctx context.Context, token string) (*model.Profile, error) {
	if token == "" {
		return nil, model.NewSessionInvalidError()
	}

	sess := s.sessions.Get(token)
	if sess == nil {
		return nil, model.NewSessionInvalidError()
	}

	if time.Now().After(sess.ExpiresAt) {
		s.sessions.Delete(token)
		s.updateActiveSessions()
		return nil, model.NewSessionExpiredError()
	}

	profile, err := s.profiles.FindByEmail(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile for session: %w", err)
	}
	if profile == nil {
		// セッションは生きているがアカウントが消えている場合は認証失敗とする
		return nil, model.NewSessionInvalidError()
	}

	return profile, nil
}

// Logout はセッションを破棄し、セッションが実在したかを返す。常に成功する（冪等）。
// 空トークンや未登録トークンもエラーにしない。厳密なセキュリティ慣行では
// ないが、フロントエンドの利便性のための仕様である。
// 期限切れでもストアに残っているセッションは「破棄された」として扱う。
func (s *Service) Logout(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	removed := s.sessions.Delete(token)
	s.updateActiveSessions()
	if removed {
		slog.Info("admin logged out")
	}
	return removed
}

// generateToken は暗号的に安全なURLセーフのセッショントークンを生成する。
// 32バイト（256ビット）のエントロピーを持ち、衝突は実質的に発生しない。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Service) recordLoginSuccess() {
	if s.recorder != nil {
		s.recorder.RecordLoginSuccess()
		s.recorder.SetActiveSessions(s.sessions.Len())
	}
}

func (s *Service) recordLoginFailure() {
	if s.recorder != nil {
		s.recorder.RecordLoginFailure()
	}
}

func (s *Service) updateActiveSessions() {
	if s.recorder != nil {
		s.recorder.SetActiveSessions(s.sessions.Len())
	}
}
