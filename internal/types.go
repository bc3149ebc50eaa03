package internal

import "time"

type Link struct {
	ID            int64
	Code          string
	TargetURL     string
	TotalClicks   int64
	LastClickedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
