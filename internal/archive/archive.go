// Package archive fetches works-index pages from an Archive of Our Own
// style site and saves them for offline parsing.
//
// Harvesting and parsing are separate stages on purpose: pages are fetched
// once, slowly and politely, and every later pipeline change replays against
// the saved HTML instead of the live site.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "https://archiveofourown.org"

// Config holds the collector settings.
type Config struct {
	// BaseURL of the archive. Defaults to archiveofourown.org.
	BaseURL string
	// UserAgent sent with every request. The archive's terms ask bulk
	// fetchers to identify themselves with contact details.
	UserAgent string
	// PagesPerMinute caps the fetch rate. Zero disables the cap.
	PagesPerMinute int
}

// Client fetches index pages under a politeness rate limit.
type Client struct {
	baseURL        string
	userAgent      string
	pagesPerMinute int
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewClient creates an archive client from a config.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.PagesPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.PagesPerMinute))
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		userAgent:      cfg.UserAgent,
		pagesPerMinute: cfg.PagesPerMinute,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// TagURL returns the works-index URL for a tag. The archive escapes "/"
// inside tag names as a literal "*s*"; everything else is ordinary URL
// escaping. PathEscape percent-encodes "*", so that one is put back to keep
// the canonical form the archive itself links with.
func (c *Client) TagURL(tag string) string {
	escaped := url.PathEscape(strings.ReplaceAll(tag, "/", "*s*"))
	escaped = strings.ReplaceAll(escaped, "%2A", "*")
	return fmt.Sprintf("%s/tags/%s/works", c.baseURL, escaped)
}

// PageURL returns the URL for one numbered page of a tag's works index.
func (c *Client) PageURL(tag string, page int) string {
	return fmt.Sprintf("%s?page=%d", c.TagURL(tag), page)
}

// FetchPage fetches one URL under the rate limit. A non-2xx response is not
// an error: the page body comes back empty and the caller records the status
// in the page's meta sidecar, keeping a long harvest running through
// transient server errors.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (body string, status int, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", 0, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	return string(data), resp.StatusCode, nil
}

// ParseHighestPage reads the pagination bar of an index page and returns the
// highest page number it mentions. A page without a pagination bar is a
// one-page index.
func ParseHighestPage(r io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	highest := 1
	doc.Find("ol.pagination li a").Each(func(_ int, a *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > highest {
			highest = n
		}
	})

	return highest, nil
}

// SafeTag mangles a tag into a string usable inside a filename: lowercased,
// with separators and glob characters folded to "-".
func SafeTag(tag string) string {
	tag = strings.ToLower(tag)
	for _, c := range []string{"/", " ", "*", "?", ":"} {
		tag = strings.ReplaceAll(tag, c, "-")
	}
	for strings.Contains(tag, "--") {
		tag = strings.ReplaceAll(tag, "--", "-")
	}
	return strings.Trim(tag, "-")
}

func fileNameBase(prefix, tag string, runTime time.Time, page int) string {
	return fmt.Sprintf("%s%s-%s-%04d", prefix, SafeTag(tag), runTime.Format("20060102-150405"), page)
}

// HTMLFileName returns the output filename for one saved index page.
func HTMLFileName(prefix, tag string, runTime time.Time, page int) string {
	return fileNameBase(prefix, tag, runTime, page) + "-index.html"
}

// MetaFileName returns the filename of the sidecar describing how the
// matching index page was fetched.
func MetaFileName(prefix, tag string, runTime time.Time, page int) string {
	return fileNameBase(prefix, tag, runTime, page) + "-meta.yaml"
}

// PageMeta records the provenance of one saved index page.
type PageMeta struct {
	Tag         string `yaml:"tag"`
	URL         string `yaml:"url"`
	StatusCode  int    `yaml:"status_code"`
	RunDatetime string `yaml:"run_datetime"`
	GetStart    string `yaml:"get_start_datetime"`
	GetEnd      string `yaml:"get_end_datetime"`
	RateLimit   int    `yaml:"rate_limit"`
}

// WriteMeta writes a page's meta sidecar.
func WriteMeta(path string, meta PageMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal page meta: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write page meta %s: %w", path, err)
	}
	return nil
}

// Collect harvests every index page for a tag: fetch the first page,
// discover the page count from its pagination bar, then fetch and save each
// page with a meta sidecar. When inFile is non-empty the page count is
// discovered from that saved page instead of the network, which keeps test
// runs off the live site.
func (c *Client) Collect(ctx context.Context, tag, outPrefix, inFile string) error {
	var first io.Reader
	var firstBody string
	var firstStatus int
	var firstStart, firstEnd time.Time
	prefetched := false

	if inFile != "" {
		f, err := os.Open(inFile)
		if err != nil {
			return fmt.Errorf("failed to open input page: %w", err)
		}
		defer f.Close()
		first = f
	} else {
		firstStart = time.Now()
		body, status, err := c.FetchPage(ctx, c.TagURL(tag))
		if err != nil {
			return err
		}
		firstEnd = time.Now()
		if status != http.StatusOK {
			return fmt.Errorf("GET %s failed with HTTP status %d", c.TagURL(tag), status)
		}
		first = strings.NewReader(body)
		firstBody, firstStatus = body, status
		prefetched = true
	}

	highest, err := ParseHighestPage(first)
	if err != nil {
		return err
	}
	slog.Info("discovered index size", "tag", tag, "pages", highest)

	runTime := time.Now()
	for page := 1; page <= highest; page++ {
		pageURL := c.PageURL(tag, page)

		var body string
		var status int
		var start, end time.Time
		if page == 1 && prefetched {
			// The discovery fetch already holds page 1; save it instead of
			// asking the server for the same page twice.
			body, status = firstBody, firstStatus
			start, end = firstStart, firstEnd
			pageURL = c.TagURL(tag)
		} else {
			start = time.Now()
			body, status, err = c.FetchPage(ctx, pageURL)
			if err != nil {
				return err
			}
			end = time.Now()
		}

		htmlPath := HTMLFileName(outPrefix, tag, runTime, page)
		if err := os.WriteFile(htmlPath, []byte(body), 0644); err != nil {
			return fmt.Errorf("failed to write page %s: %w", htmlPath, err)
		}

		meta := PageMeta{
			Tag:         tag,
			URL:         pageURL,
			StatusCode:  status,
			RunDatetime: runTime.Format(time.RFC3339),
			GetStart:    start.Format(time.RFC3339Nano),
			GetEnd:      end.Format(time.RFC3339Nano),
			RateLimit:   c.pagesPerMinute,
		}
		if err := WriteMeta(MetaFileName(outPrefix, tag, runTime, page), meta); err != nil {
			return err
		}

		slog.Info("saved index page", "page", page, "of", highest, "status", status, "file", htmlPath)
	}

	return nil
}
