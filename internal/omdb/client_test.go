package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractIMDBID(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"bare id", "tt0111161", "tt0111161"},
		{"full url", "https://www.imdb.com/title/tt0111161/", "tt0111161"},
		{"url without scheme", "www.imdb.com/title/tt4154796", "tt4154796"},
		{"mobile url with query", "https://m.imdb.com/title/tt0468569/?ref_=hm", "tt0468569"},
		{"no id present", "https://example.com/some-movie", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractIMDBID(tt.ref); got != tt.want {
				t.Errorf("ExtractIMDBID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestClient_GetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("apikey = %q, want test-key", r.URL.Query().Get("apikey"))
		}
		if r.URL.Query().Get("plot") != "full" {
			t.Errorf("plot = %q, want full", r.URL.Query().Get("plot"))
		}

		switch r.URL.Query().Get("i") {
		case "tt0111161":
			w.Write([]byte(`{
				"Title": "The Shawshank Redemption",
				"Year": "1994",
				"Genre": "Drama",
				"imdbRating": "9.3",
				"imdbID": "tt0111161",
				"Response": "True"
			}`))
		default:
			w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
		}
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	movie, err := client.GetByID(context.Background(), "tt0111161")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie.Title != "The Shawshank Redemption" {
		t.Errorf("title = %q", movie.Title)
	}
	if movie.ImdbRatingFloat() != 9.3 {
		t.Errorf("rating = %v, want 9.3", movie.ImdbRatingFloat())
	}

	// OMDb reports misses inside a 200 response
	_, err = client.GetByID(context.Background(), "tt9999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want %v", err, ErrNotFound)
	}
}

func TestClient_GetByID_MissingKey(t *testing.T) {
	client := NewClient("", "https://www.omdbapi.com")

	_, err := client.GetByID(context.Background(), "tt0111161")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestClient_GetByID_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	if _, err := client.GetByID(context.Background(), "tt0111161"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestClient_GetByID_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Title": `))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	if _, err := client.GetByID(context.Background(), "tt0111161"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestClient_SearchByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("s") {
		case "shawshank":
			w.Write([]byte(`{
				"Search": [
					{"Title": "The Shawshank Redemption", "Year": "1994", "imdbID": "tt0111161", "Poster": "https://example.com/p.jpg"}
				],
				"Response": "True"
			}`))
		default:
			w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
		}
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	results, err := client.SearchByTitle(context.Background(), "shawshank")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ImdbID != "tt0111161" {
		t.Errorf("results = %+v", results)
	}

	// Zero matches is an empty slice, not an error
	results, err = client.SearchByTitle(context.Background(), "zzzzzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
}

func TestMovie_ImdbRatingFloat_NA(t *testing.T) {
	m := &Movie{ImdbRating: "N/A"}
	if m.ImdbRatingFloat() != 0 {
		t.Errorf("rating = %v, want 0 for N/A", m.ImdbRatingFloat())
	}
}
