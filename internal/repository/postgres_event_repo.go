package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eventhub/internal/model"
)

// defaultListLimit はLimit未指定時の最大取得件数。
const defaultListLimit = 100

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	event := &model.Event{}
	var description, imageURL sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, organization, start_time, end_time, image_url, created_at, updated_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.Title, &description, &event.Organization,
		&event.StartTime, &event.EndTime, &imageURL, &event.CreatedAt, &event.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event by ID: %w", err)
	}

	event.Description = description.String
	event.ImageURL = imageURL.String
	return event, nil
}

// List は検索条件に一致するイベントをstart_time昇順で返す。
func (r *PostgresEventRepo) List(ctx context.Context, q ListEventsQuery) ([]*model.Event, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	// organizationフィルタの有無でクエリを分ける
	query := `SELECT id, title, description, organization, start_time, end_time, image_url, created_at, updated_at
	          FROM events`
	args := []interface{}{}
	if q.Organization != "" {
		query += ` WHERE organization = $1 ORDER BY start_time ASC OFFSET $2 LIMIT $3`
		args = append(args, q.Organization, offset, limit)
	} else {
		query += ` ORDER BY start_time ASC OFFSET $1 LIMIT $2`
		args = append(args, offset, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*model.Event{}
	for rows.Next() {
		event := &model.Event{}
		var description, imageURL sql.NullString
		if err := rows.Scan(&event.ID, &event.Title, &description, &event.Organization,
			&event.StartTime, &event.EndTime, &imageURL, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		event.Description = description.String
		event.ImageURL = imageURL.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return events, nil
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, organization, start_time, end_time, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Title, nullIfEmpty(event.Description), event.Organization,
		event.StartTime, event.EndTime, nullIfEmpty(event.ImageURL), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update はイベントの全フィールドを上書き更新する。
func (r *PostgresEventRepo) Update(ctx context.Context, event *model.Event) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET title = $2, description = $3, organization = $4, start_time = $5, end_time = $6, image_url = $7, updated_at = $8
		 WHERE id = $1`,
		event.ID, event.Title, nullIfEmpty(event.Description), event.Organization,
		event.StartTime, event.EndTime, nullIfEmpty(event.ImageURL), event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", event.ID)
	}
	return nil
}

// DeleteByID は指定IDのイベントを削除する。
func (r *PostgresEventRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	return nil
}

// nullIfEmpty は空文字列をNULLとして保存するための変換。
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
