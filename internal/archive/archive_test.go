package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestTagURL(t *testing.T) {
	c := NewClient(Config{})

	tests := []struct {
		tag  string
		want string
	}{
		{
			tag:  "Star Trek: Deep Space Nine",
			want: "https://archiveofourown.org/tags/Star%20Trek:%20Deep%20Space%20Nine/works",
		},
		{
			// "/" inside a tag is archive-escaped as "*s*".
			tag:  "Julian Bashir/Elim Garak",
			want: "https://archiveofourown.org/tags/Julian%20Bashir*s*Elim%20Garak/works",
		},
	}
	for _, tt := range tests {
		if got := c.TagURL(tt.tag); got != tt.want {
			t.Errorf("TagURL(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestPageURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.test"})

	got := c.PageURL("Foo", 515)
	want := "https://example.test/tags/Foo/works?page=515"
	if got != want {
		t.Errorf("PageURL() = %q, want %q", got, want)
	}
}

func TestSafeTag(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"Star Trek: Deep Space Nine", "star-trek-deep-space-nine"},
		{"Julian Bashir/Elim Garak", "julian-bashir-elim-garak"},
		{"What If...?", "what-if..."},
		{"a  b", "a-b"},
	}
	for _, tt := range tests {
		if got := SafeTag(tt.tag); got != tt.want {
			t.Errorf("SafeTag(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestFileNames(t *testing.T) {
	runTime := time.Date(2022, 5, 17, 9, 30, 0, 0, time.UTC)

	html := HTMLFileName("out/", "Star Trek: Deep Space Nine", runTime, 7)
	if html != "out/star-trek-deep-space-nine-20220517-093000-0007-index.html" {
		t.Errorf("HTMLFileName() = %q", html)
	}

	meta := MetaFileName("out/", "Star Trek: Deep Space Nine", runTime, 7)
	if meta != "out/star-trek-deep-space-nine-20220517-093000-0007-meta.yaml" {
		t.Errorf("MetaFileName() = %q", meta)
	}
}

const paginatedPage = `<html><body>
<ol class="pagination actions" role="navigation" title="pagination">
  <li class="previous" title="previous"><span class="disabled">Previous</span></li>
  <li><span class="current">1</span></li>
  <li><a href="/tags/Foo/works?page=2" rel="next">2</a></li>
  <li><a href="/tags/Foo/works?page=3">3</a></li>
  <li class="gap">&#8230;</li>
  <li><a href="/tags/Foo/works?page=515">515</a></li>
  <li><a href="/tags/Foo/works?page=516">516</a></li>
  <li class="next" title="next"><a href="/tags/Foo/works?page=2" rel="next">Next</a></li>
</ol>
</body></html>`

func TestParseHighestPage(t *testing.T) {
	got, err := ParseHighestPage(strings.NewReader(paginatedPage))
	if err != nil {
		t.Fatalf("ParseHighestPage() error = %v", err)
	}
	if got != 516 {
		t.Errorf("ParseHighestPage() = %d, want 516", got)
	}
}

func TestParseHighestPageNoPagination(t *testing.T) {
	got, err := ParseHighestPage(strings.NewReader("<html><body><p>one page</p></body></html>"))
	if err != nil {
		t.Fatalf("ParseHighestPage() error = %v", err)
	}
	if got != 1 {
		t.Errorf("ParseHighestPage() = %d, want 1", got)
	}
}

func TestFetchPage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>index</html>"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, UserAgent: "corpus study <curator@example.test>/1.0"})

	body, status, err := c.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body != "<html>index</html>" {
		t.Errorf("body = %q", body)
	}
	if gotUA != "corpus study <curator@example.test>/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestCollectReusesDiscoveryPage(t *testing.T) {
	const page = "<html><body><p>single page index</p></body></html>"

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, UserAgent: "corpus study <curator@example.test>/1.0"})

	dir := t.TempDir()
	if err := c.Collect(context.Background(), "Foo", dir+"/", ""); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	// A one-page index needs exactly one request: the discovery fetch is
	// saved as page 1 rather than fetched again.
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1", requests)
	}

	htmlFiles, err := filepath.Glob(filepath.Join(dir, "*-index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if len(htmlFiles) != 1 {
		t.Fatalf("found %d saved pages, want 1", len(htmlFiles))
	}
	saved, err := os.ReadFile(htmlFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(saved) != page {
		t.Errorf("saved page = %q, want the discovery fetch body", saved)
	}

	metaFiles, err := filepath.Glob(filepath.Join(dir, "*-meta.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(metaFiles) != 1 {
		t.Fatalf("found %d meta sidecars, want 1", len(metaFiles))
	}
	data, err := os.ReadFile(metaFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	var meta PageMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		t.Fatalf("parsing meta sidecar: %v", err)
	}
	if meta.StatusCode != http.StatusOK {
		t.Errorf("meta status = %d, want 200", meta.StatusCode)
	}
	if meta.Tag != "Foo" {
		t.Errorf("meta tag = %q, want Foo", meta.Tag)
	}
}

func TestFetchPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "retry later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	body, status, err := c.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage() error = %v, want nil for non-200", err)
	}
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}
