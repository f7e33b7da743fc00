package model

import "time"

// RoleAdmin は管理者ロール。現状すべてのProfileがこのロールを持つ。
const RoleAdmin = "admin"

// Profile は管理者アカウントを表す。
// emailの集合が許可リストとして機能し、許可リストに載っていることが認証の資格となる。
type Profile struct {
	ID        string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
