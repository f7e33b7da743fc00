// Package model はドメインモデルを定義する。
package model

import "time"

// Event はカレンダーに表示されるイベントを表す。
type Event struct {
	ID           string
	Title        string
	Description  string
	Organization string
	StartTime    time.Time
	EndTime      time.Time
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
