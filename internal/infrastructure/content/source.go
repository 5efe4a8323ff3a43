package content

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"TagPress/internal/ports"
)

// LiteralSource serves content passed directly on the command line.
type LiteralSource struct {
	text string
}

var _ ports.ContentSource = (*LiteralSource)(nil)

// NewLiteralSource wraps raw content text.
func NewLiteralSource(text string) *LiteralSource {
	return &LiteralSource{text: text}
}

// Load returns the wrapped text verbatim.
func (s *LiteralSource) Load(_ context.Context) (string, error) {
	return s.text, nil
}

// FileSource reads content from a UTF-8 text file.
type FileSource struct {
	path string
}

var _ ports.ContentSource = (*FileSource)(nil)

// NewFileSource wraps a filesystem path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads the whole file.
func (s *FileSource) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read content file: %w", err)
	}
	return string(raw), nil
}

// URLSource fetches a web page and extracts its readable article text.
type URLSource struct {
	url    string
	client *http.Client
}

var _ ports.ContentSource = (*URLSource)(nil)

// NewURLSource wires an HTTP client; a nil client gets a 20s timeout default.
func NewURLSource(pageURL string, client *http.Client) *URLSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &URLSource{url: pageURL, client: client}
}

// Load downloads the page and extracts article text, preferring readability
// output and falling back to stripped body text when it comes up empty.
func (s *URLSource) Load(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TagPress/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch content url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content url returned %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("read content url: %w", err)
	}

	pageURL, _ := url.Parse(s.url)
	if article, err := readability.FromReader(bytes.NewReader(buf.Bytes()), pageURL); err == nil {
		if text := normalizeSpace(article.TextContent); text != "" {
			return text, nil
		}
	}

	return bodyText(buf.Bytes())
}

// bodyText is the fallback extractor for pages readability cannot handle.
func bodyText(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := normalizeSpace(doc.Find("body").Text())
	if text == "" {
		return "", fmt.Errorf("no readable text in document")
	}

	return text, nil
}

var spaceExpr = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(s, " "))
}
