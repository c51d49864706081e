package models

// DashboardStats are the per-user counters shown on the dashboard.
type DashboardStats struct {
	TotalDonations     int `json:"total_donations"`
	PendingRequests    int `json:"pending_requests"`
	ScheduledDonations int `json:"scheduled_donations"`
	CompletedDonations int `json:"completed_donations"`
}

// Dashboard aggregates the session user's counters and recent activity.
type Dashboard struct {
	Stats             DashboardStats     `json:"stats"`
	RecentRequests    []BloodRequest     `json:"recent_requests"`
	UpcomingDonations []UpcomingDonation `json:"upcoming_donations"`
}
