package models

import "time"

// DashboardStats is the admin dashboard header.
type DashboardStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalProfessionals int64 `json:"total_professionals"`
	PendingApprovals   int64 `json:"pending_approvals"`
	QuotesThisMonth    int64 `json:"quotes_this_month"`
}

type ActivityKind string

const (
	ActivityUserRegistered ActivityKind = "user_registered"
	ActivityQuoteCreated   ActivityKind = "quote_created"
	ActivityReviewPosted   ActivityKind = "review_posted"
)

// ActivityItem is one entry of the merged recent-activity feed.
type ActivityItem struct {
	Kind        ActivityKind `json:"kind"`
	ReferenceID uint         `json:"reference_id"`
	Summary     string       `json:"summary"`
	Timestamp   time.Time    `json:"timestamp"`
}
