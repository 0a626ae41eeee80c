package folio

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	site, err := content.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cfg := SiteConfig{
		Name:          "Test Folio",
		URL:           "https://example.com",
		DatabasePath:  filepath.Join(t.TempDir(), "folio.db"),
		StaticDir:     t.TempDir(),
		SessionSecret: "test-secret",
		LogLevel:      "error",
		LiveEnabled:   true,
		LiveRate:      100,
		LiveBurst:     100,
	}
	a := New(cfg, ViewFuncs{}, append([]Option{WithSite(site)}, opts...)...)
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func doRequest(a *App, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHomePage(t *testing.T) {
	a := newTestApp(t)
	rec := doRequest(a, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	site := a.Site()
	for _, want := range []string{
		site.Name,
		site.Roles[0],
		`class="nav-link nav-active" href="/"`,
		`"@type":"Person"`,
		"/public/live.js",
		"layout-desktop",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if got := rec.Header().Get("Accept-CH"); !strings.Contains(got, "Sec-CH-Viewport-Width") {
		t.Errorf("Accept-CH = %q", got)
	}
	if got := rec.Header().Values("Vary"); len(got) == 0 {
		t.Error("missing Vary header")
	}
}

func TestStaticPages(t *testing.T) {
	a := newTestApp(t)
	tests := []struct {
		path, active, want string
	}{
		{"/work/", "/work/", "Sprouts.ai"},
		{"/about/", "/about/", "COUNTRIES VISITED"},
	}
	for _, tt := range tests {
		rec := doRequest(a, tt.path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", tt.path, rec.Code)
			continue
		}
		body := rec.Body.String()
		if !strings.Contains(body, tt.want) {
			t.Errorf("GET %s missing %q", tt.path, tt.want)
		}
		if !strings.Contains(body, `class="nav-link nav-active" href="`+tt.active+`"`) {
			t.Errorf("GET %s: active nav link not marked", tt.path)
		}
		if strings.Count(body, "nav-active") != 1 {
			t.Errorf("GET %s: expected exactly one active nav link", tt.path)
		}
		if !strings.Contains(body, `"@type":"WebSite"`) {
			t.Errorf("GET %s: missing WebSite JSON-LD", tt.path)
		}
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t)
	rec := doRequest(a, "/work", nil)
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/work/" {
		t.Errorf("GET /work = %d -> %q, want 301 -> /work/", rec.Code, rec.Header().Get("Location"))
	}
}

func TestWritingRedirect(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/writing", "/writing/"} {
		rec := doRequest(a, path, nil)
		if rec.Code != http.StatusFound {
			t.Errorf("GET %s = %d, want 302", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != a.Site().WritingURL {
			t.Errorf("GET %s Location = %q, want %q", path, loc, a.Site().WritingURL)
		}
	}
}

func TestWritingRedirectUsesConfig(t *testing.T) {
	a := newTestApp(t, func(a *App) { a.Config.WritingURL = "https://blog.example.com" })
	rec := doRequest(a, "/writing/", nil)
	if loc := rec.Header().Get("Location"); loc != "https://blog.example.com" {
		t.Errorf("Location = %q", loc)
	}
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t)
	rec := doRequest(a, "/writing/why-i-love-doing-the-dishes/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET post = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`href="/writing/ola/" rel="prev"`,
		`href="/writing/i-asked-my-manager-for-a-prayer-space/" rel="next"`,
		"<h2",
		`"@type":"BlogPosting"`,
		"Comments are disabled",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestPostPageStructuredData(t *testing.T) {
	a := newTestApp(t)
	body := doRequest(a, "/writing/why-i-love-doing-the-dishes/", nil).Body.String()
	for _, want := range []string{
		`"datePublished":"2020-11-27"`,
		`"author":{"@type":"Person","name":"` + a.Site().Name + `"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post JSON-LD missing %q", want)
		}
	}
}

func TestPostPageEdges(t *testing.T) {
	a := newTestApp(t)

	first := doRequest(a, "/writing/dear-brothers-lets-talk-about-periods/", nil).Body.String()
	if strings.Contains(first, `rel="prev"`) {
		t.Error("first post should have no previous link")
	}
	if !strings.Contains(first, `href="/writing/how-i-almost-never-miss-prayer-when-im-out/" rel="next"`) {
		t.Error("first post should link to the second")
	}
	if !strings.Contains(first, "placeholder") {
		t.Error("post without a body should render the placeholder")
	}

	last := doRequest(a, "/writing/welcome-to-my-blog/", nil).Body.String()
	if strings.Contains(last, `rel="next"`) {
		t.Error("last post should have no next link")
	}
	if !strings.Contains(last, `href="/writing/i-asked-my-manager-for-a-prayer-space/" rel="prev"`) {
		t.Error("last post should link back to the fifth")
	}
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t)
	rec := doRequest(a, "/writing/does-not-exist/", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET unknown post = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Post not found") || !strings.Contains(body, `href="`+a.Site().WritingURL+`"`) {
		t.Errorf("post-not-found view missing message or index link: %s", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	rec := doRequest(a, "/nope/", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope/ = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "This page could not be found") {
		t.Error("expected the 404 view")
	}
}

func TestServerErrorView(t *testing.T) {
	a := newTestApp(t, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/boom/", func(c echo.Context) error {
			return errors.New("boom")
		})
	}))
	rec := doRequest(a, "/boom/", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET /boom/ = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Error("expected the 500 view")
	}
}

func TestViewportHint(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(a, "/about/", http.Header{"Sec-Ch-Viewport-Width": {"390"}})
	if !strings.Contains(rec.Body.String(), `class="layout-mobile"`) {
		t.Fatal("narrow hint should render the mobile layout")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected the viewport width to be stored in the session")
	}

	// Without the hint the remembered width still applies.
	req := httptest.NewRequest(http.MethodGet, "/about/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `class="layout-mobile"`) {
		t.Error("remembered width should render the mobile layout")
	}

	rec = doRequest(a, "/about/", http.Header{"Viewport-Width": {"1280"}})
	if !strings.Contains(rec.Body.String(), `class="layout-desktop"`) {
		t.Error("wide hint should render the desktop layout")
	}
}

func TestSitemapFeedRobots(t *testing.T) {
	a := newTestApp(t)

	sitemap := doRequest(a, "/sitemap.xml", nil)
	if sitemap.Code != http.StatusOK {
		t.Fatalf("GET /sitemap.xml = %d", sitemap.Code)
	}
	for _, want := range []string{"<loc>https://example.com/writing/ola/</loc>", "<lastmod>2021-07-04</lastmod>", "<loc>https://example.com/work/</loc>"} {
		if !strings.Contains(sitemap.Body.String(), want) {
			t.Errorf("sitemap missing %q", want)
		}
	}

	feed := doRequest(a, "/feed.xml", nil)
	if ct := feed.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("feed content type = %q", ct)
	}
	if !strings.Contains(feed.Body.String(), "<title>Test Folio</title>") || strings.Count(feed.Body.String(), "<item>") != 6 {
		t.Errorf("feed body = %s", feed.Body.String())
	}
	for _, want := range []string{`<atom:link href="https://example.com/feed.xml" rel="self"`, "<content:encoded><![CDATA[", `<guid isPermaLink="true">https://example.com/writing/ola/</guid>`} {
		if !strings.Contains(feed.Body.String(), want) {
			t.Errorf("feed missing %q", want)
		}
	}

	robots := doRequest(a, "/robots.txt", nil)
	if !strings.Contains(robots.Body.String(), "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt = %q", robots.Body.String())
	}
}

func TestEmbeddedAssets(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/public/live.js", "/public/site.css"} {
		rec := doRequest(a, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
			t.Errorf("GET %s Cache-Control = %q", path, cc)
		}
	}
}

func TestReload(t *testing.T) {
	a := newTestApp(t)
	site := *a.Site()
	site.Posts = []content.Post{{ID: "1", Slug: "fresh", Title: "Fresh"}}
	if err := a.Reload(&site); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if rec := doRequest(a, "/writing/fresh/", nil); rec.Code != http.StatusOK {
		t.Errorf("GET new post = %d, want 200", rec.Code)
	}
	if rec := doRequest(a, "/writing/ola/", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET removed post = %d, want 404", rec.Code)
	}

	bad := site
	bad.Posts = []content.Post{{Slug: "x"}, {Slug: "x"}}
	if err := a.Reload(&bad); err == nil {
		t.Fatal("expected invalid catalog to be rejected")
	}
	if rec := doRequest(a, "/writing/fresh/", nil); rec.Code != http.StatusOK {
		t.Errorf("rejected reload replaced the collection: %d", rec.Code)
	}
}

func TestReloadOrdersByPosition(t *testing.T) {
	a := newTestApp(t)
	site := *a.Site()
	site.Posts = []content.Post{
		{ID: "3", Slug: "third", Title: "Third", Position: 3},
		{ID: "1", Slug: "first", Title: "First", Position: 1},
		{ID: "2", Slug: "second", Title: "Second", Position: 2},
	}
	if err := a.Reload(&site); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if site.Posts[0].Slug != "third" {
		t.Error("Reload modified the caller's catalog")
	}
	body := doRequest(a, "/writing/second/", nil).Body.String()
	for _, want := range []string{`href="/writing/first/" rel="prev"`, `href="/writing/third/" rel="next"`} {
		if !strings.Contains(body, want) {
			t.Errorf("second post missing %q", want)
		}
	}
	if got := a.Site().Posts[0].Slug; got != "first" {
		t.Errorf("served catalog starts with %q, want first", got)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageResize(t *testing.T) {
	a := newTestApp(t)
	writePNG(t, filepath.Join(a.Config.StaticDir, "pic.png"), 200, 100)

	rec := doRequest(a, "/_img/?src=/public/pic.png&w=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /_img/ = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	img, err := jpeg.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("resized to %dx%d, want 50x25", b.Dx(), b.Dy())
	}

	// Narrower images are not upscaled.
	rec = doRequest(a, "/_img/?src=/public/pic.png&w=400", nil)
	img, err = jpeg.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("width = %d, want 200", img.Bounds().Dx())
	}
}

func TestImageErrors(t *testing.T) {
	a := newTestApp(t)
	if err := os.WriteFile(filepath.Join(a.Config.StaticDir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		target string
		code   int
	}{
		{"/_img/?src=/public/../secret.png", http.StatusBadRequest},
		{"/_img/?src=/etc/passwd", http.StatusBadRequest},
		{"/_img/?src=/public/missing.png", http.StatusNotFound},
		{"/_img/?src=/public/notes.txt", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		if rec := doRequest(a, tt.target, nil); rec.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.code)
		}
	}
}

func TestStaticImagePath(t *testing.T) {
	tests := []struct {
		src  string
		ok   bool
		want string
	}{
		{"/public/profile.jpg", true, filepath.Join("static", "profile.jpg")},
		{"/public/icons/arc.png", true, filepath.Join("static", "icons", "arc.png")},
		{"/public/../x.png", false, ""},
		{"/public/a/../../x.png", false, ""},
		{"/public/", false, ""},
		{"profile.jpg", false, ""},
	}
	for _, tt := range tests {
		got, ok := staticImagePath("static", tt.src)
		if ok != tt.ok || got != tt.want {
			t.Errorf("staticImagePath(%q) = %q, %v; want %q, %v", tt.src, got, ok, tt.want, tt.ok)
		}
	}
}
