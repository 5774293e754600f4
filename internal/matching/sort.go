// internal/matching/sort.go
package matching

import (
	"sort"

	"talent-matching-workers/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortMatches orders matches in place by the field named in sortBy (score
// when unset). Ties fall back to freelancer id ascending. Missing rates sort
// last.
func SortMatches(matches []models.MatchedFreelancer, sortBy models.SortField) {
	key := byScore
	switch sortBy {
	case models.SortByRate:
		key = byRate
	case models.SortByRating:
		key = byRating
	case models.SortByTrust:
		key = byTrust
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := &matches[i], &matches[j]
		if c := key(a, b); c != 0 {
			return c < 0
		}
		return a.Freelancer.ID < b.Freelancer.ID
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func byScore(a, b *models.MatchedFreelancer) int {
	return compareFloat(b.OverallScore, a.OverallScore)
}

func byRate(a, b *models.MatchedFreelancer) int {
	ra, rb := a.Freelancer.HourlyRate, b.Freelancer.HourlyRate
	switch {
	case ra == nil && rb == nil:
		return 0
	case ra == nil:
		return 1
	case rb == nil:
		return -1
	}
	return compareFloat(*ra, *rb)
}

func byRating(a, b *models.MatchedFreelancer) int {
	return compareFloat(b.Freelancer.AvgRating, a.Freelancer.AvgRating)
}

func byTrust(a, b *models.MatchedFreelancer) int {
	ta, tb := 0.0, 0.0
	if a.Freelancer.TrustScore != nil {
		ta = *a.Freelancer.TrustScore
	}
	if b.Freelancer.TrustScore != nil {
		tb = *b.Freelancer.TrustScore
	}
	return compareFloat(tb, ta)
}

// Paginate returns the 1-based page of items. Page and limit are clamped to
// their defaults; a page past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, page, limit int) (out []T, normPage, normLimit int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, page, limit
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page, limit
}
