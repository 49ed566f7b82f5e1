package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ohoucrawl/pkg/errors"
	"ohoucrawl/pkg/extract"
	"ohoucrawl/pkg/logger"
	"ohoucrawl/pkg/ohou"
)

// Options controls a crawl run
type Options struct {
	Category ohou.Category
	// Limit caps the number of items per query. nil means all items.
	Limit *int
	// ContinueOnError keeps crawling later queries after one fails.
	ContinueOnError bool
}

// QueryError reports which query of a run failed
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Crawler runs queries against one category and assembles result records
type Crawler struct {
	fetcher   Fetcher
	paginator *Paginator
	logger    logger.Logger
}

// New creates a crawler. baseURL selects the upstream host; empty means
// ohou.BaseURL.
func New(fetcher Fetcher, baseURL string, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Crawler{
		fetcher:   fetcher,
		paginator: NewPaginator(fetcher, baseURL, log),
		logger:    log,
	}
}

// Paginator returns the paginator the crawler lists with
func (c *Crawler) Paginator() *Paginator {
	return c.paginator
}

// Run crawls each query in order and returns the concatenated records.
//
// By default the first failing query stops the run: the records of every
// earlier query are returned together with a *QueryError. With
// ContinueOnError set, failing queries contribute no records, later queries
// still run, and the returned error joins every *QueryError. Cancellation of
// ctx always stops the run.
func (c *Crawler) Run(ctx context.Context, queries []string, opts Options) ([]Record, error) {
	if !opts.Category.Valid() {
		return nil, fmt.Errorf("invalid category %s", opts.Category)
	}
	if opts.Limit != nil && *opts.Limit < 0 {
		return nil, fmt.Errorf("negative item limit %d", *opts.Limit)
	}

	log := c.logger.WithFields(map[string]interface{}{
		"run_id":   uuid.NewString(),
		"category": opts.Category.String(),
	})
	log.InfoWithFields("Starting crawl", map[string]interface{}{
		"queries":           len(queries),
		"continue_on_error": opts.ContinueOnError,
	})

	start := time.Now()
	var results []Record
	var failures []error

	for _, query := range queries {
		records, err := c.crawlQuery(ctx, log, query, opts)
		if err != nil {
			qerr := &QueryError{Query: query, Err: err}
			log.WithError(err).WithField("query", query).Error("Query failed")
			if ctx.Err() != nil || !opts.ContinueOnError {
				return results, qerr
			}
			failures = append(failures, qerr)
			continue
		}
		results = append(results, records...)
	}

	log.InfoWithFields("Crawl finished", map[string]interface{}{
		"records":  len(results),
		"failed":   len(failures),
		"duration": time.Since(start),
	})

	if len(failures) > 0 {
		return results, stderrors.Join(failures...)
	}
	return results, nil
}

// CrawlQuery crawls a single query. Either every record for the query is
// returned or none is.
func (c *Crawler) CrawlQuery(ctx context.Context, query string, opts Options) ([]Record, error) {
	if !opts.Category.Valid() {
		return nil, fmt.Errorf("invalid category %s", opts.Category)
	}
	return c.crawlQuery(ctx, c.logger, query, opts)
}

func (c *Crawler) crawlQuery(ctx context.Context, log logger.Logger, query string, opts Options) ([]Record, error) {
	log = log.WithField("query", query)
	start := time.Now()

	if !opts.Category.NeedsDetail() {
		records, err := c.paginator.FeedRecords(ctx, query, opts.Limit)
		if err != nil {
			return nil, err
		}
		log.InfoWithFields("Query complete", map[string]interface{}{
			"records":  len(records),
			"duration": time.Since(start),
		})
		return records, nil
	}

	urls, timestamps, err := c.paginator.ListingURLs(ctx, query, opts.Category, opts.Limit)
	if err != nil {
		return nil, err
	}
	log.DebugWithFields("Collected detail URLs", map[string]interface{}{
		"urls":       len(urls),
		"timestamps": len(timestamps),
	})

	records := make([]Record, 0, len(urls))
	for i, u := range urls {
		detail, err := c.FetchDetail(ctx, u)
		if err != nil {
			return nil, err
		}

		detailURL := u
		timestamp := timestamps[i]
		records = append(records, Record{
			Query:     query,
			Type:      opts.Category,
			URL:       &detailURL,
			Text:      detail.Text,
			Keywords:  detail.Keywords,
			Timestamp: &timestamp,
		})
		logger.LogCrawlProgress(log, query, i+1, len(urls))
	}

	log.InfoWithFields("Query complete", map[string]interface{}{
		"records":  len(records),
		"duration": time.Since(start),
	})
	return records, nil
}

// FetchDetail downloads one detail page and extracts its text and keywords.
// A page that cannot be extracted is reported as a fetch error for its URL.
func (c *Crawler) FetchDetail(ctx context.Context, rawURL string) (extract.Detail, error) {
	body, err := c.fetcher.Fetch(ctx, rawURL, nil)
	if err != nil {
		return extract.Detail{}, err
	}

	detail, err := extract.Extract(body)
	if err != nil {
		return extract.Detail{}, errors.NewFetchError(rawURL, 0, "unusable detail page", err)
	}
	return detail, nil
}
