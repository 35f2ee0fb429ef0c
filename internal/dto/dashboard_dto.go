package dto

// StudentDashboardResponse aggregates a student's standing across all
// assignment definitions. Served from cache when warm.
type StudentDashboardResponse struct {
	TotalAssignments  int                  `json:"total_assignments"`
	Submitted         int                  `json:"submitted"`
	Pending           int                  `json:"pending"`
	Graded            int                  `json:"graded"`
	Late              int                  `json:"late"`
	RecentSubmissions []SubmissionResponse `json:"recent_submissions"`
}
