package domain

import "time"

// ProgressRecord is one completed problem for one user.
// At most one record exists per (UserID, ProblemID).
type ProgressRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProblemID     string    `json:"problem_id"`
	CompletedDate time.Time `json:"completed_date"`
	XPAwarded     int       `json:"xp_awarded"`
}

// CatalogProblem is a static, read-only problem shipped with the build.
type CatalogProblem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// DomainProblem is a catalog entry joined with the user's progress.
// CompletedDate is nil when the problem has not been completed.
type DomainProblem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completedDate"`
	XPAwarded     int        `json:"xpAwarded"`
}

// Stats aggregates a user's progress records.
type Stats struct {
	TotalSolved    int `json:"totalSolved"`
	TotalXP        int `json:"totalXP"`
	SolvedThisWeek int `json:"solvedThisWeek"`

	// Streak is always 0. No streak semantics are defined for progress
	// records; do not fill it in without defining them first.
	Streak int `json:"streak"`
}

// View is everything a presentation layer needs for one user.
type View struct {
	Problems []DomainProblem `json:"problems"`
	Stats    Stats           `json:"stats"`
}
