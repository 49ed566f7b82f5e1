package crawler

import (
	"context"
	"fmt"

	"ohoucrawl/pkg/errors"
	"ohoucrawl/pkg/logger"
	"ohoucrawl/pkg/ohou"
)

// Paginator turns a query and an optional item cap into a sequence of
// listing requests and collects what they return.
type Paginator struct {
	fetcher  Fetcher
	baseURL  string
	pageSize int
	logger   logger.Logger
}

// NewPaginator creates a paginator that requests pages of ohou.PageSize items
func NewPaginator(fetcher Fetcher, baseURL string, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if baseURL == "" {
		baseURL = ohou.BaseURL
	}
	return &Paginator{
		fetcher:  fetcher,
		baseURL:  baseURL,
		pageSize: ohou.PageSize,
		logger:   log,
	}
}

// PageSizes splits count into count/pageSize full pages followed by one page
// holding the remainder. No zero-size page is ever produced, so a count that
// divides evenly yields only full pages and a count of 0 yields none.
func PageSizes(count, pageSize int) []int {
	if count <= 0 || pageSize <= 0 {
		return nil
	}
	full := count / pageSize
	remainder := count % pageSize

	sizes := make([]int, 0, full+1)
	for i := 0; i < full; i++ {
		sizes = append(sizes, pageSize)
	}
	if remainder > 0 {
		sizes = append(sizes, remainder)
	}
	return sizes
}

// TotalCount asks the listing endpoint for a single item and returns the
// total it reports for query.
func (p *Paginator) TotalCount(ctx context.Context, query string, c ohou.Category) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("invalid category %s", c)
	}

	listURL := ohou.GetListingURL(p.baseURL, c)
	body, err := p.fetcher.Fetch(ctx, listURL, ohou.ListingParams(query, 1, 1))
	if err != nil {
		return 0, err
	}

	total, err := ohou.DecodeTotalCount(body, listURL)
	if err != nil {
		return 0, err
	}

	p.logger.DebugWithFields("Listing total", map[string]interface{}{
		"query":       query,
		"category":    c.String(),
		"total_count": total,
	})
	return total, nil
}

// ListingURLs returns the detail-page URL and creation timestamp of every
// item up to limit (all items when limit is nil), in listing order.
func (p *Paginator) ListingURLs(ctx context.Context, query string, c ohou.Category, limit *int) ([]string, []string, error) {
	var urls, timestamps []string
	err := p.walk(ctx, query, c, limit, func(sourceURL string, items []ohou.Item) error {
		for _, item := range items {
			if item.CreatedAt == nil {
				return errors.NewUpstreamError(sourceURL, fmt.Sprintf("item %s has no created_at", item.ID), nil)
			}
			urls = append(urls, ohou.GetDetailURL(p.baseURL, c, string(item.ID)))
			timestamps = append(timestamps, *item.CreatedAt)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return urls, timestamps, nil
}

// FeedRecords pages through the feed listing and builds records directly from
// the cards. No detail page is fetched.
func (p *Paginator) FeedRecords(ctx context.Context, query string, limit *int) ([]Record, error) {
	var records []Record
	err := p.walk(ctx, query, ohou.Feeds, limit, func(_ string, items []ohou.Item) error {
		for _, item := range items {
			records = append(records, feedRecord(query, item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// walk resolves the effective item count, then fetches each planned page in
// order and hands its items to fn.
func (p *Paginator) walk(ctx context.Context, query string, c ohou.Category, limit *int, fn func(sourceURL string, items []ohou.Item) error) error {
	if limit != nil && *limit < 0 {
		return fmt.Errorf("negative item limit %d", *limit)
	}

	total, err := p.TotalCount(ctx, query, c)
	if err != nil {
		return err
	}

	count := total
	if limit != nil && *limit < total {
		count = *limit
	}

	sizes := PageSizes(count, p.pageSize)
	p.logger.InfoWithFields("Planned listing pages", map[string]interface{}{
		"query":       query,
		"category":    c.String(),
		"total_count": total,
		"count":       count,
		"pages":       len(sizes),
	})

	listURL := ohou.GetListingURL(p.baseURL, c)
	for i, size := range sizes {
		page := i + 1
		body, err := p.fetcher.Fetch(ctx, listURL, ohou.ListingParams(query, page, size))
		if err != nil {
			return err
		}

		decoded, err := ohou.DecodeListingPage(body, c, listURL)
		if err != nil {
			return err
		}

		items := decoded.Items
		if len(items) > size {
			p.logger.WarnWithFields("Listing page returned more items than requested", map[string]interface{}{
				"query":     query,
				"page":      page,
				"requested": size,
				"received":  len(items),
			})
			items = items[:size]
		}

		if err := fn(listURL, items); err != nil {
			return err
		}
	}
	return nil
}
