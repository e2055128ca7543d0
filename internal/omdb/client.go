package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned when OMDb reports no match for an id or title
	ErrNotFound = errors.New("movie not found in catalog")

	// ErrMissingAPIKey is returned when the client is constructed without a key
	ErrMissingAPIKey = errors.New("OMDb API key is not configured")
)

// imdbIDPattern matches bare ids ("tt0111161") as well as full links
// ("https://www.imdb.com/title/tt0111161/").
var imdbIDPattern = regexp.MustCompile(`(?:title/)?(tt\d+)`)

// ExtractIMDBID pulls the IMDb id out of a URL or bare-id string.
// Returns "" when no id is present.
func ExtractIMDBID(ref string) string {
	match := imdbIDPattern.FindStringSubmatch(ref)
	if match == nil {
		return ""
	}
	return match[1]
}

// Client is the OMDb API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new OMDb API client. The key is validated lazily so
// the server can start without one; lookups fail with ErrMissingAPIKey.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Movie is the OMDb "by id" response shape, reduced to the fields we keep.
type Movie struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`

	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// ImdbRatingFloat parses the rating string; OMDb uses "N/A" for unrated
// titles, which maps to 0.
func (m *Movie) ImdbRatingFloat() float64 {
	f, err := strconv.ParseFloat(m.ImdbRating, 64)
	if err != nil {
		return 0
	}
	return f
}

// searchResponse is the OMDb "by title" response envelope.
type searchResponse struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ImdbID string `json:"imdbID"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// SearchResult is one candidate match from a title search.
type SearchResult struct {
	Title  string `json:"title"`
	Year   string `json:"year"`
	ImdbID string `json:"imdb_id"`
	Poster string `json:"poster"`
}

// GetByID fetches full movie metadata for an IMDb id.
func (c *Client) GetByID(ctx context.Context, imdbID string) (*Movie, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL := fmt.Sprintf("%s/?i=%s&apikey=%s&plot=full", c.baseURL, url.QueryEscape(imdbID), c.apiKey)

	var movie Movie
	if err := c.doGet(ctx, reqURL, &movie); err != nil {
		return nil, err
	}

	if movie.Response == "False" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, movie.Error)
	}

	return &movie, nil
}

// SearchByTitle returns candidate matches for a free-text title.
// An empty result set is not an error.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL := fmt.Sprintf("%s/?s=%s&apikey=%s", c.baseURL, url.QueryEscape(title), c.apiKey)

	var resp searchResponse
	if err := c.doGet(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	if resp.Response == "False" {
		// OMDb answers "Movie not found!" for zero matches
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(resp.Search))
	for _, s := range resp.Search {
		results = append(results, SearchResult{
			Title:  s.Title,
			Year:   s.Year,
			ImdbID: s.ImdbID,
			Poster: s.Poster,
		})
	}
	return results, nil
}

func (c *Client) doGet(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("OMDb returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode OMDb response: %w", err)
	}
	return nil
}
