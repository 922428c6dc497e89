package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

// ExtractLinks pulls article URLs from a source index page using the
// configured link selector. Relative links resolve against the index URL;
// duplicates and offsite fragments are dropped, in document order.
func ExtractLinks(doc *goquery.Document, source *common.SourceConfig) ([]string, error) {
	base, err := url.Parse(source.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid index URL %q: %v", models.ErrConfiguration, source.IndexURL, err)
	}

	var links []string
	seen := make(map[string]struct{})

	doc.Find(source.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	if source.MaxArticles > 0 && len(links) > source.MaxArticles {
		links = links[:source.MaxArticles]
	}
	return links, nil
}

// publishedAtFormats are tried in order against meta tag values.
var publishedAtFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ExtractPublishedAt reads the publication time from standard meta tags.
// Returns the zero time when no tag parses; the caller falls back to the
// scrape date so article identity stays stable within a day.
func ExtractPublishedAt(doc *goquery.Document) time.Time {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[name="publish-date"]`,
		`meta[name="date"]`,
		`time[datetime]`,
	}

	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		value, ok := sel.Attr("content")
		if !ok {
			value, ok = sel.Attr("datetime")
		}
		if !ok {
			continue
		}
		for _, format := range publishedAtFormats {
			if t, err := time.Parse(format, strings.TrimSpace(value)); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// ExtractArticle pulls the title and body from an article page and converts
// the body HTML to markdown. Pages missing a title or body fail as data
// quality errors so the caller can count and skip them.
func ExtractArticle(doc *goquery.Document, pageURL string, source *common.SourceConfig) (title, markdown string, err error) {
	title = strings.TrimSpace(doc.Find(source.TitleSelector).First().Text())
	if title == "" {
		return "", "", fmt.Errorf("%w: no title at %s using selector %q", models.ErrDataQuality, pageURL, source.TitleSelector)
	}

	body := doc.Find(source.BodySelector).First()
	if body.Length() == 0 {
		return "", "", fmt.Errorf("%w: no body at %s using selector %q", models.ErrDataQuality, pageURL, source.BodySelector)
	}

	html, err := goquery.OuterHtml(body)
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize body html: %w", err)
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err = converter.ConvertString(html)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert body to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if common.NormalizeWhitespace(common.MarkdownToPlainText(markdown)) == "" {
		return "", "", fmt.Errorf("%w: body at %s reduced to empty text", models.ErrDataQuality, pageURL)
	}
	return title, markdown, nil
}
