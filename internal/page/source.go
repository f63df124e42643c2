package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) jobmatch/1.0"
	fetchTimeout     = 15 * time.Second
)

// Page is a loaded document together with the user's explicit text
// selection, if any. The selection participates in the extraction fallback
// chain but never wins over a matched description container.
type Page struct {
	doc       *goquery.Document
	Selection string
}

// Source produces a Page from some host location: a URL, a saved HTML file
// or an already-open reader. It stands in for the browser tab the analysis
// originally targets, so the extraction logic stays testable without one.
type Source interface {
	Load(ctx context.Context) (*Page, error)
}

// URLSource fetches a page over HTTP.
type URLSource struct {
	URL        string
	UserAgent  string
	HTTPClient *http.Client
}

func NewURLSource(url string) *URLSource {
	return &URLSource{
		URL:       url,
		UserAgent: defaultUserAgent,
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

func (s *URLSource) Load(ctx context.Context) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	agent := s.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}
	req.Header.Set("User-Agent", agent)

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page %q: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching page %q: bad status: %s", s.URL, resp.Status)
	}

	return FromReader(resp.Body)
}

// FileSource reads a page from a saved HTML file.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(_ context.Context) (*Page, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening page file: %w", err)
	}
	defer file.Close()

	return FromReader(file)
}

// ReaderSource wraps an already-open stream, typically stdin.
type ReaderSource struct {
	Reader io.Reader
}

func (s *ReaderSource) Load(_ context.Context) (*Page, error) {
	return FromReader(s.Reader)
}

// FromReader parses HTML into a Page.
func FromReader(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page markup: %w", err)
	}

	return &Page{doc: doc}, nil
}
