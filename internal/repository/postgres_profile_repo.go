package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eventhub/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用した管理者アカウントリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByEmail は指定emailのProfileを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, role, created_at, updated_at FROM profiles WHERE email = $1`,
		email,
	).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	return profile, nil
}

// ListAll は全Profileをcreated_at降順で返す。
func (r *PostgresProfileRepo) ListAll(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, role, created_at, updated_at FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		profile := &model.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile rows: %w", err)
	}

	return profiles, nil
}

// Create はProfileを作成する。emailの重複はUNIQUE制約違反のエラーになる。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		profile.ID, profile.Email, profile.Role, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// DeleteByEmail は指定emailのProfileを削除する。
func (r *PostgresProfileRepo) DeleteByEmail(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE email = $1`,
		email,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found: %s", email)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
