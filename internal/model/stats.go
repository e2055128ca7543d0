package model

// MovieStats is the derived summary of a user's library. It is never
// persisted; it is recomputed in full from the movie records and may be
// cached for a short time between library changes.
//
// TopGenres and RatingDistribution carry no ordering guarantee; clients
// sort by descending count for display.
type MovieStats struct {
	TotalMovies        int            `json:"total_movies"`
	AverageRating      float64        `json:"average_rating"` // mean of user ratings, one decimal, 0 when empty
	MoviesThisMonth    int            `json:"movies_this_month"`
	MoviesThisYear     int            `json:"movies_this_year"`
	TopGenres          map[string]int `json:"top_genres"`          // genre token -> occurrences
	RatingDistribution map[int]int    `json:"rating_distribution"` // floor(user rating) -> occurrences
	MonthlyCounts      [12]int        `json:"monthly_counts"`      // per-month counts for the current year, Jan..Dec
}
