// Package domain joins the static problem catalog with live progress records
// and derives aggregate statistics. Everything here is pure: no I/O, no
// clocks read implicitly.
package domain

import "time"

// Week is the trailing window used for SolvedThisWeek.
const Week = 7 * 24 * time.Hour

// MergeCatalogWithProgress left-joins catalog with records on problem id.
//
// Iteration is driven by the catalog, so the result always has exactly
// len(catalog) entries in catalog order. Records whose problem id is not in
// the catalog are dropped.
func MergeCatalogWithProgress(catalog []CatalogProblem, records []ProgressRecord) []DomainProblem {
	byProblem := make(map[string]ProgressRecord, len(records))
	for _, r := range records {
		byProblem[r.ProblemID] = r
	}

	out := make([]DomainProblem, 0, len(catalog))
	for _, p := range catalog {
		dp := DomainProblem{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		}
		if r, ok := byProblem[p.ID]; ok {
			completed := r.CompletedDate
			dp.Completed = true
			dp.CompletedDate = &completed
			dp.XPAwarded = r.XPAwarded
		}
		out = append(out, dp)
	}
	return out
}

// ComputeStats aggregates records as of now.
// A record counts toward SolvedThisWeek when it was completed strictly after
// now minus seven days.
func ComputeStats(records []ProgressRecord, now time.Time) Stats {
	cutoff := now.Add(-Week)
	var s Stats
	for _, r := range records {
		s.TotalSolved++
		s.TotalXP += r.XPAwarded
		if r.CompletedDate.After(cutoff) {
			s.SolvedThisWeek++
		}
	}
	return s
}

// RewardForCompletion returns the XP for the completion that brings a user's
// total to newCount: 1 on every third completion, 0 otherwise.
func RewardForCompletion(newCount int) int {
	if newCount > 0 && newCount%3 == 0 {
		return 1
	}
	return 0
}
