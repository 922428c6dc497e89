package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Service fetches configured news sources and stores raw articles. Saves
// are idempotent on article identity: a re-scrape of unchanged content is a
// skip, and changed content updates the stored record in place, which later
// triggers re-enrichment through the content hash.
type Service struct {
	config  *common.ScraperConfig
	storage interfaces.ArticleStorage
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewService creates a scraper service.
func NewService(config *common.ScraperConfig, storage interfaces.ArticleStorage, logger arbor.ILogger) *Service {
	every := rate.Every(config.RequestDelay)
	if config.RequestDelay <= 0 {
		every = rate.Inf
	}

	return &Service{
		config:  config,
		storage: storage,
		client:  &http.Client{Timeout: config.RequestTimeout},
		limiter: rate.NewLimiter(every, 1),
		logger:  logger,
	}
}

// Run scrapes every configured source. A source that fails entirely is
// logged and skipped; the stage result reflects what was saved from the
// sources that worked.
func (s *Service) Run(ctx context.Context) (*models.ScrapeStats, error) {
	start := time.Now()
	stats := &models.ScrapeStats{}

	for i := range s.config.Sources {
		source := &s.config.Sources[i]
		if err := s.scrapeSource(ctx, source, stats); err != nil {
			s.logger.Warn().Err(err).Str("source", source.Name).Msg("Source scrape failed")
		}
	}

	s.logger.Info().
		Int("fetched", stats.Fetched).
		Int("saved", stats.Saved).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("duration", time.Since(start)).
		Msg("Scrape complete")

	return stats, nil
}

func (s *Service) scrapeSource(ctx context.Context, source *common.SourceConfig, stats *models.ScrapeStats) error {
	indexDoc, err := s.fetchDocument(ctx, source.IndexURL)
	if err != nil {
		return fmt.Errorf("failed to fetch index page: %w", err)
	}

	links, err := ExtractLinks(indexDoc, source)
	if err != nil {
		return err
	}

	s.logger.Debug().Str("source", source.Name).Int("links", len(links)).Msg("Index page extracted")

	for _, link := range links {
		stats.Fetched++
		if err := s.scrapeArticle(ctx, source, link, stats); err != nil {
			stats.Failed++
			s.logger.Warn().Err(err).Str("url", link).Msg("Article scrape failed")
		}
	}
	return nil
}

func (s *Service) scrapeArticle(ctx context.Context, source *common.SourceConfig, link string, stats *models.ScrapeStats) error {
	doc, err := s.fetchDocument(ctx, link)
	if err != nil {
		return err
	}

	title, markdown, err := ExtractArticle(doc, link, source)
	if err != nil {
		return err
	}

	publishedAt := ExtractPublishedAt(doc)
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC().Truncate(24 * time.Hour)
	}
	article := &models.Article{
		ID:              models.NewArticleID(link, publishedAt),
		Source:          source.Name,
		Section:         source.Section,
		Title:           title,
		URL:             link,
		ContentMarkdown: markdown,
		ContentHash:     models.HashContent(title, markdown),
		PublishedAt:     publishedAt,
	}

	existing, err := s.storage.GetArticle(ctx, article.ID)
	if err == nil && existing != nil && existing.ContentHash == article.ContentHash {
		stats.Skipped++
		return nil
	}
	if existing != nil {
		// Content changed; keep the original scrape time and enrichment so
		// the enricher sees the hash mismatch on its next pass.
		article.ScrapedAt = existing.ScrapedAt
		article.Enrichment = existing.Enrichment
	}

	if err := s.storage.SaveArticle(ctx, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	stats.Saved++
	return nil
}

// fetchDocument GETs a URL with rate limiting and bounded retries on
// transient failures, and parses the response as HTML.
func (s *Service) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		doc, err := s.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !errors.Is(err, models.ErrTransientIO) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (s *Service) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %w", models.ErrTransientIO, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned status %d", models.ErrTransientIO, url, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if s.config.MaxBodySize > 0 {
		body = io.LimitReader(resp.Body, int64(s.config.MaxBodySize))
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		s.logger.Debug().Str("url", url).Str("content_type", resp.Header.Get("Content-Type")).Msg("Non-HTML content type")
	}
	return doc, nil
}
