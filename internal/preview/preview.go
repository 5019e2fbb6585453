// Package preview fetches a page once so an operator can see what a site
// configuration would extract from it.
package preview

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/extractor"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/security"
	"github.com/go-playground/validator/v10"
	"github.com/gocolly/colly/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout   = 8 * time.Second
	DefaultMaxBytes  = 400_000
	DefaultUserAgent = "webwatch-preview/1.0"
)

// Config controls preview fetches.
type Config struct {
	Timeout   time.Duration
	MaxBytes  int
	UserAgent string
}

// Request names the page to preview. Site, when set, is run against the raw
// body as if it were a check.
type Request struct {
	URL     string             `validate:"required,url"`
	Headers map[string]string  `validate:"omitempty,dive,keys,required,endkeys"`
	Site    *models.SiteConfig `validate:"-"`
}

// Result is a sanitized page plus the optional extraction outcome.
type Result struct {
	URL        string
	Status     int
	Size       int
	Title      string
	BaseHref   string
	HTML       string
	SrcDoc     string
	Text       string
	Extraction *extractor.Outcome
	Digest     string
	Excerpt    string
}

// Previewer fetches pages with a fresh collector per request.
type Previewer struct {
	cfg      Config
	policy   *bluemonday.Policy
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPreviewer creates a Previewer, filling unset config values with defaults.
func NewPreviewer(cfg Config, logger zerolog.Logger) *Previewer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Previewer{
		cfg:      cfg,
		policy:   NewSanitizePolicy(),
		validate: validator.New(),
		logger:   logger.With().Str("component", "Previewer").Logger(),
	}
}

// NewSanitizePolicy drops scripts, styles, event handlers, javascript: URLs
// and base elements while keeping id and class so selectors can be tried
// against the result.
func NewSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class").Globally()
	p.SkipElementsContent("title")
	return p
}

// Preview fetches req.URL. Non-2xx answers and bodies over the size limit
// are errors.
func (p *Previewer) Preview(ctx context.Context, req Request) (*Result, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, errorwrapper.NewValidationError("url", req.URL, err.Error())
	}

	body, status, contentType, err := p.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, errorwrapper.NewHTTPErrorWithURL(status, "could not fetch page", req.URL)
	}
	if len(body) > p.cfg.MaxBytes {
		return nil, errorwrapper.NewHTTPErrorWithURL(http.StatusRequestEntityTooLarge, "response exceeds preview size limit", req.URL)
	}

	raw := decode(body, contentType)
	res := &Result{
		URL:    req.URL,
		Status: status,
		Size:   len(body),
		HTML:   p.policy.Sanitize(raw),
	}
	res.BaseHref = BaseHref(req.URL)
	res.SrcDoc = BuildSrcDoc(res.HTML, res.BaseHref)
	res.Title, res.Text = summarize(raw)

	if req.Site != nil {
		outcome := extractor.Extract(*req.Site, raw)
		res.Extraction = &outcome
		if outcome.OK {
			res.Digest = security.SHA256Hex([]byte(outcome.Content))
			res.Excerpt = extractor.Excerpt(outcome.Content)
		} else {
			res.Excerpt = extractor.Excerpt(raw)
		}
	}

	p.logger.Info().
		Str("url", req.URL).
		Int("status", status).
		Int("size", res.Size).
		Str("title", res.Title).
		Msg("Preview fetched")
	return res, nil
}

func (p *Previewer) fetch(ctx context.Context, req Request) ([]byte, int, string, error) {
	c := colly.NewCollector(
		colly.UserAgent(p.cfg.UserAgent),
		colly.MaxBodySize(p.cfg.MaxBytes+1),
		colly.ParseHTTPErrorResponse(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(p.cfg.Timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range req.Headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		body        []byte
		status      int
		contentType string
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
	})

	if err := c.Visit(req.URL); err != nil {
		p.logger.Warn().Err(err).Str("url", req.URL).Msg("Preview fetch failed")
		return nil, 0, "", errorwrapper.NewNetworkError(req.URL, "preview fetch failed", err)
	}
	if status == 0 {
		return nil, 0, "", errorwrapper.NewNetworkError(req.URL, "no response received", nil)
	}
	return body, status, contentType, nil
}

// decode converts body to UTF-8 using a <meta> charset when the response
// header did not declare one. Header charsets are already handled by colly.
func decode(body []byte, contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "charset") {
		return string(body)
	}
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func summarize(raw string) (title, text string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(raw)))
	if err != nil {
		return "", ""
	}
	doc.Find("script, style, noscript").Remove()
	title = strings.TrimSpace(doc.Find("title").First().Text())
	text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return title, text
}

// BaseHref returns the directory of rawURL, used to resolve relative links
// in the preview document.
func BaseHref(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	dir := u.Path
	if i := strings.LastIndexByte(dir, '/'); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	return u.Scheme + "://" + u.Host + dir
}

// BuildSrcDoc wraps sanitized markup in a standalone document.
func BuildSrcDoc(body, baseHref string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8" /><base href="` + html.EscapeString(baseHref) +
		`" /><style>body{margin:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif}</style></head><body>` +
		body + `</body></html>`
}
