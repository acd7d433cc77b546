package dto

// DashboardResponse is the per-student projection: the full submission list
// plus the on-demand sum of currently approved point values. It is derived
// on every request and never persisted.
type DashboardResponse struct {
	Submissions []SubmissionView `json:"submissions"`
	TotalPoints float64          `json:"total_points"`
}
