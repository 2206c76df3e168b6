package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result results_links">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.edu%2Ftuition">Học phí 2025</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.edu%2Ftuition">Thông tin <b>học phí</b> năm học 2025.</a>
  </div>
  <div class="result results_links">
    <h2 class="result__title">
      <a class="result__a" href="https://example.edu/dorm">Ký túc xá</a>
    </h2>
    <a class="result__snippet" href="https://example.edu/dorm">Đăng ký ký túc xá.</a>
  </div>
  <div class="result results_links">
    <h2 class="result__title">
      <a class="result__a" href="https://example.edu/library">Thư viện</a>
    </h2>
  </div>
</div>
</body></html>`

func TestSearchParsesResultsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "học phí", r.Form.Get("q"))
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	results, err := client.Search(context.Background(), "học phí", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Học phí 2025", results[0].Title)
	assert.Equal(t, "https://example.edu/tuition", results[0].URL)
	assert.Contains(t, results[0].Snippet, "học phí")

	assert.Equal(t, "Ký túc xá", results[1].Title)
	assert.Equal(t, "https://example.edu/dorm", results[1].URL)
}

func TestSearchCapsResultCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	results, err := client.Search(context.Background(), "học phí", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchReportsServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := client.Search(context.Background(), "học phí", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestSearchEmptyPageReturnsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><div class='no-results'>Không có kết quả</div></body></html>"))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	results, err := client.Search(context.Background(), "zzzz", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCleanURLUnwrapsRedirect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"redirect link", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.edu%2Fpage", "https://example.edu/page"},
		{"direct link", "https://example.edu/page", "https://example.edu/page"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanURL(tt.raw))
		})
	}
}

func TestExtractResultRequiresAllFields(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			"snippet only",
			`<div class="result"><a class="result__snippet">chỉ có mô tả</a></div>`,
		},
		{
			"title and url without snippet",
			`<div class="result"><a class="result__a" href="https://example.edu/library">Thư viện</a></div>`,
		},
		{
			"empty node",
			`<div class="result"></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := html.Parse(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Empty(t, parseResults(doc, 5))
		})
	}
}
