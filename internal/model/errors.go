package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, event, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailNotAuthorized = "EMAIL_NOT_AUTHORIZED"
	ErrCodeSessionInvalid     = "SESSION_INVALID"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeAdminExists        = "ADMIN_ALREADY_EXISTS"
	ErrCodeAdminNotFound      = "ADMIN_NOT_FOUND"
	ErrCodeSelfRemoval        = "SELF_REMOVAL_FORBIDDEN"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidImageURL    = "INVALID_IMAGE_URL"
)

// NewEmailNotAuthorizedError は許可リスト外のemailでのログイン失敗エラーを生成する。
func NewEmailNotAuthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotAuthorized,
		Message:  "このメールアドレスは許可されていません。",
		Category: "auth",
		Action:   "管理者に連絡してアカウントの追加を依頼してください。",
	}
}

// NewSessionInvalidError はトークン未指定・未登録トークンのエラーを生成する。
func NewSessionInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionInvalid,
		Message:  "セッションが無効です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewSessionExpiredError は期限切れセッションのエラーを生成する。
// SESSION_INVALIDと同じ401で返すが、メッセージは区別する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "セッションの有効期限が切れました。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewAdminExistsError は管理者の重複登録エラーを生成する。
func NewAdminExistsError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeAdminExists,
		Message:  fmt.Sprintf("管理者は既に登録されています: %s", email),
		Category: "validation",
		Action:   "管理者一覧を確認してください。",
	}
}

// NewAdminNotFoundError は管理者未検出エラーを生成する。
func NewAdminNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeAdminNotFound,
		Message:  fmt.Sprintf("指定された管理者が見つかりません: %s", email),
		Category: "auth",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewSelfRemovalError は自分自身の管理者削除を拒否するエラーを生成する。
func NewSelfRemovalError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfRemoval,
		Message:  "自分自身を管理者から削除することはできません。",
		Category: "validation",
		Action:   "他の管理者に削除を依頼してください。",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: "event",
		Action:   "イベントIDを確認してください。",
	}
}

// NewInvalidRequestError はリクエスト内容の不備エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidImageURLError は画像URLの検証失敗エラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("画像URLが不正です: %s", reason),
		Category: "validation",
		Action:   "公開されているhttps URLを指定してください。",
	}
}
