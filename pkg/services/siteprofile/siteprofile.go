package siteprofile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	maxPageSize    = 2 * 1024 * 1024
	maxHeadings    = 5
	defaultTimeout = 10 * time.Second
	userAgent      = "growth-agent/1.0 (+site profile)"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Profile is the landing-page summary fed into growth prompts
type Profile struct {
	URL         string
	Title       string
	Description string
	Keywords    []string
	Headings    []string
	Language    string
}

// Summary renders the profile as prompt context. Empty profiles render "".
func (p Profile) Summary() string {
	var lines []string
	if p.Title != "" {
		lines = append(lines, "Title: "+p.Title)
	}
	if p.Description != "" {
		lines = append(lines, "Description: "+p.Description)
	}
	if len(p.Keywords) > 0 {
		lines = append(lines, "Keywords: "+strings.Join(p.Keywords, ", "))
	}
	if len(p.Headings) > 0 {
		lines = append(lines, "Headings: "+strings.Join(p.Headings, " | "))
	}
	return strings.Join(lines, "\n")
}

type Profiler interface {
	Profile(ctx context.Context, url string) (Profile, error)
}

type httpProfiler struct {
	client *http.Client
}

func NewProfiler(client *http.Client) Profiler {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &httpProfiler{client: client}
}

func (p *httpProfiler) Profile(ctx context.Context, rawURL string) (Profile, error) {
	target := rawURL
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Profile{}, fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}

	profile, err := Parse(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return Profile{}, err
	}
	profile.URL = target
	return profile, nil
}

// Parse extracts the profile from an HTML document in any declared charset
func Parse(r io.Reader, contentType string) (Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Profile{}, fmt.Errorf("read page: %w", err)
	}

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return Profile{}, fmt.Errorf("decode page: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return Profile{}, fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script,noscript,style").Remove()

	profile := Profile{
		Title:       clean(doc.Find("title").First().Text()),
		Description: clean(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		Language:    strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
	}
	if profile.Description == "" {
		profile.Description = clean(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if profile.Title == "" {
		profile.Title = clean(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	if kw := doc.Find(`meta[name="keywords"]`).AttrOr("content", ""); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				profile.Keywords = append(profile.Keywords, k)
			}
		}
	}

	doc.Find("h1,h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := clean(s.Text()); t != "" {
			profile.Headings = append(profile.Headings, t)
		}
		return len(profile.Headings) < maxHeadings
	})

	return profile, nil
}

func clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
