// Package event はイベントCRUDのドメインロジックを提供する。
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/eventhub/internal/model"
	"github.com/hitoshi/eventhub/internal/repository"
	"github.com/hitoshi/eventhub/internal/security"
)

// CreateEventInput はイベント作成の入力。
type CreateEventInput struct {
	Title        string
	Description  string
	Organization string
	StartTime    time.Time
	EndTime      time.Time
	ImageURL     string
}

// EventPatch はイベント部分更新の入力。
// nilのフィールドは変更せず、非nilのフィールドのみを上書きする。
// リフレクションによる属性設定ではなく、フィールドごとの明示的な代入で適用する。
type EventPatch struct {
	Title        *string
	Description  *string
	Organization *string
	StartTime    *time.Time
	EndTime      *time.Time
	ImageURL     *string
}

// Service はイベント管理のサービス層。
type Service struct {
	events    repository.EventRepository
	sanitizer security.ContentSanitizerService
	ssrfGuard security.SSRFGuardService
}

// NewService はServiceを生成する。
func NewService(
	events repository.EventRepository,
	sanitizer security.ContentSanitizerService,
	ssrfGuard security.SSRFGuardService,
) *Service {
	return &Service{
		events:    events,
		sanitizer: sanitizer,
		ssrfGuard: ssrfGuard,
	}
}

// ListEvents は検索条件に一致するイベントをstart_time昇順で返す。
func (s *Service) ListEvents(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error) {
	events, err := s.events.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent は指定IDのイベントを返す。見つからない場合はEVENT_NOT_FOUNDを返す。
func (s *Service) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if !isValidEventID(id) {
		return nil, model.NewEventNotFoundError(id)
	}

	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}
	return event, nil
}

// CreateEvent はイベントを作成する。
// 説明文はサニタイズしてから保存し、画像URLは保存前にSSRF検証を行う。
func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (*model.Event, error) {
	if err := s.validateRequired(input.Title, input.Organization, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	if input.ImageURL != "" {
		if err := s.ssrfGuard.ValidateURL(input.ImageURL); err != nil {
			return nil, model.NewInvalidImageURLError(err.Error())
		}
	}

	now := time.Now()
	event := &model.Event{
		ID:           uuid.New().String(),
		Title:        input.Title,
		Description:  s.sanitizer.Sanitize(input.Description),
		Organization: input.Organization,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		ImageURL:     input.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// UpdateEvent はイベントを部分更新する。
// patchで明示的に指定されたフィールドのみを変更し、updated_atを更新する。
func (s *Service) UpdateEvent(ctx context.Context, id string, patch EventPatch) (*model.Event, error) {
	if !isValidEventID(id) {
		return nil, model.NewEventNotFoundError(id)
	}

	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = s.sanitizer.Sanitize(*patch.Description)
	}
	if patch.Organization != nil {
		event.Organization = *patch.Organization
	}
	if patch.StartTime != nil {
		event.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		event.EndTime = *patch.EndTime
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL != "" {
			if err := s.ssrfGuard.ValidateURL(*patch.ImageURL); err != nil {
				return nil, model.NewInvalidImageURLError(err.Error())
			}
		}
		event.ImageURL = *patch.ImageURL
	}

	if event.Title == "" || event.Organization == "" {
		return nil, model.NewInvalidRequestError("titleとorganizationは空にできません")
	}

	event.UpdatedAt = time.Now()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// DeleteEvent はイベントを削除する。見つからない場合はEVENT_NOT_FOUNDを返す。
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if !isValidEventID(id) {
		return model.NewEventNotFoundError(id)
	}

	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return model.NewEventNotFoundError(id)
	}

	if err := s.events.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// isValidEventID はイベントIDがUUIDとして解釈できるかを判定する。
// 不正なIDはデータベースのuuid列に到達する前にEVENT_NOT_FOUND扱いにする。
func isValidEventID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validateRequired は作成時の必須フィールドを検証する。
func (s *Service) validateRequired(title, organization string, startTime, endTime time.Time) error {
	if title == "" {
		return model.NewInvalidRequestError("titleは必須です")
	}
	if organization == "" {
		return model.NewInvalidRequestError("organizationは必須です")
	}
	if startTime.IsZero() || endTime.IsZero() {
		return model.NewInvalidRequestError("start_timeとend_timeは必須です")
	}
	if endTime.Before(startTime) {
		return model.NewInvalidRequestError("end_timeはstart_timeより後である必要があります")
	}
	return nil
}
