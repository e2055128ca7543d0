package service

import (
	"math"
	"strings"
	"time"

	"reelshelf/internal/model"
)

// ComputeStats derives library statistics from a user's movie records.
// Pure and deterministic given now; no I/O. Callers pass time.Now() so
// the month/year windows follow the caller's wall clock and location.
//
// Out-of-range ratings are not validated here (that happens at record
// creation) but they must not break the computation; they simply land
// in whatever distribution bucket floor() puts them in.
func ComputeStats(movies []model.Movie, now time.Time) model.MovieStats {
	stats := model.MovieStats{
		TopGenres:          make(map[string]int),
		RatingDistribution: make(map[int]int),
	}

	stats.TotalMovies = len(movies)

	currentYear, currentMonth, _ := now.Date()

	var ratingSum float64
	for _, m := range movies {
		ratingSum += m.UserRating

		year, month, _ := m.WatchedDate.Date()
		if year == currentYear {
			stats.MoviesThisYear++
			stats.MonthlyCounts[int(month)-1]++
			if month == currentMonth {
				stats.MoviesThisMonth++
			}
		}

		// Genre tokens are counted as stored: comma-split, trimmed,
		// case-sensitive. "Drama" and "drama" are distinct keys.
		for _, genre := range strings.Split(m.Genre, ",") {
			stats.TopGenres[strings.TrimSpace(genre)]++
		}

		stats.RatingDistribution[int(math.Floor(m.UserRating))]++
	}

	if stats.TotalMovies > 0 {
		avg := ratingSum / float64(stats.TotalMovies)
		stats.AverageRating = math.Round(avg*10) / 10
	}

	return stats
}
