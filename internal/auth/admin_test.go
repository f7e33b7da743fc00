package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/eventhub/internal/model"
)

// --- ListAdmins テスト ---

func TestService_ListAdmins(t *testing.T) {
	want := []*model.Profile{
		{ID: "id-2", Email: "newer@example.com", Role: model.RoleAdmin},
		{ID: "id-1", Email: "older@example.com", Role: model.RoleAdmin},
	}
	repo := &mockProfileRepo{
		listAllFn: func(ctx context.Context) ([]*model.Profile, error) {
			return want, nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	admins, err := svc.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("len = %d, want 2", len(admins))
	}
	if admins[0].Email != "newer@example.com" {
		t.Errorf("admins[0].Email = %q, want repo order preserved", admins[0].Email)
	}
}

// --- AddAdmin テスト ---

func TestService_AddAdmin_Success(t *testing.T) {
	var created *model.Profile
	repo := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, profile *model.Profile) error {
			created = profile
			return nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	admin, err := svc.AddAdmin(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if admin.Email != "new@example.com" {
		t.Errorf("Email = %q, want %q", admin.Email, "new@example.com")
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, model.RoleAdmin)
	}
	if admin.ID == "" {
		t.Error("expected generated ID")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
}

func TestService_AddAdmin_Duplicate(t *testing.T) {
	createCalled := false
	repo := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			return &model.Profile{ID: "id-1", Email: email, Role: model.RoleAdmin}, nil
		},
		createFn: func(ctx context.Context, profile *model.Profile) error {
			createCalled = true
			return nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	_, err := svc.AddAdmin(context.Background(), "existing@example.com")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAdminExists {
		t.Fatalf("expected ADMIN_ALREADY_EXISTS, got %v", err)
	}
	// 重複時はストアの状態を変更しない
	if createCalled {
		t.Error("Create should not be called for duplicate admin")
	}
}

// --- RemoveAdmin テスト ---

func TestService_RemoveAdmin_Success(t *testing.T) {
	deleteCalled := false
	repo := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			return &model.Profile{ID: "id-2", Email: email, Role: model.RoleAdmin}, nil
		},
		deleteByEmailFn: func(ctx context.Context, email string) error {
			deleteCalled = true
			return nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	err := svc.RemoveAdmin(context.Background(), "caller@example.com", "target@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleteCalled {
		t.Error("expected DeleteByEmail to be called")
	}
}

func TestService_RemoveAdmin_Self(t *testing.T) {
	// 自己削除は対象の存在確認より前に拒否される
	repo := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			t.Error("FindByEmail should not be called for self removal")
			return nil, nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	err := svc.RemoveAdmin(context.Background(), "me@example.com", "me@example.com")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSelfRemoval {
		t.Fatalf("expected SELF_REMOVAL_FORBIDDEN, got %v", err)
	}
}

func TestService_RemoveAdmin_NotFound(t *testing.T) {
	repo := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			return nil, nil
		},
	}
	svc, _ := newTestService(repo, 24*time.Hour)

	err := svc.RemoveAdmin(context.Background(), "caller@example.com", "ghost@example.com")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAdminNotFound {
		t.Fatalf("expected ADMIN_NOT_FOUND, got %v", err)
	}
}

func TestService_RemoveAdmin_RevokesLiveSessions(t *testing.T) {
	repo := allowlistedRepo("caller@example.com", "target@example.com")
	repo.deleteByEmailFn = func(ctx context.Context, email string) error {
		return nil
	}
	svc, store := newTestService(repo, 24*time.Hour)

	// 削除対象の管理者がログイン中
	result, err := svc.Login(context.Background(), "target@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.RemoveAdmin(context.Background(), "caller@example.com", "target@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 削除された管理者のセッションは即座に失効する
	if store.Get(result.Token) != nil {
		t.Error("removed admin's session should be revoked")
	}
}
