// Package session はプロセスローカルなセッションストアを提供する。
// セッションは永続化されず、プロセス再起動で全管理者が暗黙的にログアウトされる
// （既知の制限として運用上許容する）。
package session

import (
	"log/slog"
	"sync"
	"time"
)

// Session はログイン成功の証明となるトークンとアカウントの紐付けを表す。
type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store はトークンをキーとするセッションの並行安全なインメモリストア。
// 期限の判定はStoreでは行わず、呼び出し側（認証サービス）がアクセスごとに行う。
// バックグラウンドのクリーンアップは期限切れエントリのメモリ解放のみを目的とする。
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
		stopCh:   make(chan struct{}),
	}
}

// Put はセッションを登録する。同一トークンが既に存在する場合は上書きする
// （トークン空間は実質的に衝突しないが、上書きでも状態は壊れない）。
func (s *Store) Put(token, email string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = Session{
		Token:     token,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

// Get は指定トークンのセッションを返す。見つからない場合はnilを返す。
// 期限切れかどうかの判定は行わない。
func (s *Store) Get(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	// 呼び出し側の変更がストアに影響しないようコピーを返す
	copied := sess
	return &copied
}

// Delete は指定トークンのセッションを削除し、セッションが存在したかを返す。
// 存在しない場合は何もせずfalseを返す。
func (s *Store) Delete(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok
}

// DeleteByEmail は指定emailの全セッションを削除し、削除件数を返す。
// 管理者削除時の失効処理で使用する。
func (s *Store) DeleteByEmail(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, sess := range s.sessions {
		if sess.Email == email {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted
}

// CleanupExpired は期限切れセッションを削除し、削除件数を返す。
// 冪等であり、削除対象がない場合も正常に返る。
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	deleted := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted
}

// Len は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartCleanup はバックグラウンドで期限切れセッションを定期的に削除する
// ゴルーチンを起動する。Stopで停止する。
func (s *Store) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if deleted := s.CleanupExpired(); deleted > 0 {
					slog.Info("expired sessions cleaned up",
						slog.Int("deleted_count", deleted),
					)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
