// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/eventhub/internal/model"
)

// ListEventsQuery はイベント一覧取得の検索条件。
type ListEventsQuery struct {
	// Organization は主催団体名の完全一致フィルタ。空文字列の場合はフィルタしない。
	Organization string
	// Offset はスキップする件数。
	Offset int
	// Limit は最大取得件数。
	Limit int
}

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// List は検索条件に一致するイベントをstart_time昇順で返す。
	List(ctx context.Context, q ListEventsQuery) ([]*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// Update はイベントの全フィールドを上書き更新する。
	// 対象が存在しない場合はエラーを返す。
	Update(ctx context.Context, event *model.Event) error

	// DeleteByID は指定IDのイベントを削除する。
	// 対象が存在しない場合はエラーを返す。
	DeleteByID(ctx context.Context, id string) error
}

// ProfileRepository は管理者アカウントの永続化インターフェース。
// emailの一意性はデータベースの制約で保証される。
type ProfileRepository interface {
	// FindByEmail は指定emailのProfileを取得する。見つからない場合はnilを返す。
	// emailは大文字小文字を区別して照合する。
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)

	// ListAll は全Profileをcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.Profile, error)

	// Create はProfileを作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// DeleteByEmail は指定emailのProfileを削除する。
	// 対象が存在しない場合はエラーを返す。
	DeleteByEmail(ctx context.Context, email string) error
}
