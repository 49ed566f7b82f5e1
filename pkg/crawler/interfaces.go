package crawler

import (
	"context"
	"net/url"
)

// Fetcher issues a single GET and returns the response body. params, when
// non-empty, are encoded into the query string. *ohou.Client satisfies it;
// tests substitute an in-memory fake.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}
