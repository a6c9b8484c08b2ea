package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
)

const maxPostingBytes = 10 << 20

var (
	jobPageSignals = []string{
		"jobs-guest-frontend",
		"d_jobs_guest_details",
		"mx-details-container-padding",
		"description__text",
		"decorated-job-posting__details",
	}
	authwallSignals = []string{
		"authwall",
		"checkpoint/challenge",
		"/uas/login",
		"session_redirect",
		"fromsignin=true",
	}
)

// JobPostingFetcher downloads the HTML of a public job posting.
type JobPostingFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type linkedInFetcher struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

func NewLinkedInFetcher(timeout time.Duration, userAgent string, log *zap.Logger) JobPostingFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return &linkedInFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       logger.OrNop(log),
	}
}

func (f *linkedInFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPostingBytes))
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Cause: err}
	}

	f.log.Debug("fetched job posting", zap.String("url", url), zap.Int("bytes", len(body)))
	return string(body), nil
}

// LooksLikeAuthwall reports whether page is a login wall instead of a job
// posting. Any job posting marker wins over authwall markers.
func LooksLikeAuthwall(page string) bool {
	h := strings.ToLower(page)
	for _, s := range jobPageSignals {
		if strings.Contains(h, s) {
			return false
		}
	}
	for _, s := range authwallSignals {
		if strings.Contains(h, s) {
			return true
		}
	}
	return false
}

// ExtractJobText returns the description of a public LinkedIn job page,
// falling back to wider containers when the expected markup is missing.
func ExtractJobText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse job posting: %w", err)
	}

	main := firstMatch(doc.Selection, "main#main-content")
	details := firstMatch(main, "div.details.mx-details-container-padding", ".details.mx-details-container-padding")
	target := firstMatch(details, ".description__text")

	lines := make([]string, 0)
	for _, line := range strings.Split(strings.Join(textChunks(target), "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "show more", "show less":
			continue
		}
		lines = append(lines, line)
	}

	return SanitizeWhitespace(strings.Join(lines, "\n")), nil
}

// ExtractJobTitle returns the posting's heading, or "" when the page has none.
func ExtractJobTitle(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse job posting: %w", err)
	}

	h1 := doc.Find("h1.top-card-layout__title").First()
	if h1.Length() == 0 {
		h1 = doc.Find("h1").First()
	}
	if h1.Length() == 0 {
		return "", nil
	}
	return SanitizeWhitespace(strings.Join(textChunks(h1), " ")), nil
}

// firstMatch returns the first element under sel matching one of the
// selectors in order, or sel itself.
func firstMatch(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s).First(); found.Length() > 0 {
			return found
		}
	}
	return sel
}

// textChunks collects the trimmed, non-empty text nodes under sel in
// document order.
func textChunks(sel *goquery.Selection) []string {
	var out []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					out = append(out, t)
				}
			case "script", "style", "noscript", "template", "#comment":
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return out
}
