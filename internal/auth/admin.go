package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/eventhub/internal/model"
)

// ListAdmins は全管理者アカウントをcreated_at降順で返す。
// 呼び出し元でセッション検証済みであることを前提とする。
func (s *Service) ListAdmins(ctx context.Context) ([]*model.Profile, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return profiles, nil
}

// AddAdmin は新しい管理者アカウントを作成する。
// 同じemailのアカウントが既に存在する場合はADMIN_ALREADY_EXISTSを返し、
// ストアの状態は変更しない。
func (s *Service) AddAdmin(ctx context.Context, email string) (*model.Profile, error) {
	existing, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		return nil, model.NewAdminExistsError(email)
	}

	now := time.Now()
	profile := &model.Profile{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      model.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("admin added",
		slog.String("email", email),
	)

	return profile, nil
}

// RemoveAdmin は管理者アカウントを削除する。
// 自分自身の削除はSELF_REMOVAL_FORBIDDENで拒否する（同一リクエスト内での
// ロックアウト防止であり、他の手段による全管理者消失は防がない）。
// 削除成功時は該当emailのライブセッションもすべて失効させ、
// 削除された管理者が即座にアクセスを失うようにする。
func (s *Service) RemoveAdmin(ctx context.Context, callerEmail, email string) error {
	if callerEmail == email {
		return model.NewSelfRemovalError()
	}

	target, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find admin: %w", err)
	}
	if target == nil {
		return model.NewAdminNotFoundError(email)
	}

	if err := s.profiles.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	// ライブセッションの失効（削除された管理者の即時アクセス遮断）
	revoked := s.sessions.DeleteByEmail(email)
	s.updateActiveSessions()

	slog.Info("admin removed",
		slog.String("email", email),
		slog.String("removed_by", callerEmail),
		slog.Int("revoked_sessions", revoked),
	)

	return nil
}
