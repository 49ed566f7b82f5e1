package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

const testBaseURL = "https://ohou.test"

type fetchCall struct {
	URL    string
	Params url.Values
}

// fakeSite serves synthetic listing and detail responses. Item ids on page n
// start at n*1000 so every page's ids are distinct.
type fakeSite struct {
	mu sync.Mutex

	totals       map[string]int
	failQuery    map[string]error
	failDetail   map[string]error
	detailBody   map[string]string
	noTimestamps bool
	extraItems   int
	calls        []fetchCall
}

func newFakeSite(totals map[string]int) *fakeSite {
	return &fakeSite{
		totals:     totals,
		failQuery:  map[string]error{},
		failDetail: map[string]error{},
		detailBody: map[string]string{},
	}
}

func (f *fakeSite) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{URL: rawURL, Params: params})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(u.Path, ".json") {
		return f.listing(u.Path, params)
	}

	if err, ok := f.failDetail[rawURL]; ok {
		return nil, err
	}
	if body, ok := f.detailBody[rawURL]; ok {
		return []byte(body), nil
	}
	return []byte(detailPage(u.Path)), nil
}

func (f *fakeSite) listing(path string, params url.Values) ([]byte, error) {
	query := params.Get("query")
	if err, ok := f.failQuery[query]; ok {
		return nil, err
	}

	page, _ := strconv.Atoi(params.Get("page"))
	per, _ := strconv.Atoi(params.Get("per"))

	key := map[string]string{
		"/advices.json":    "advices",
		"/projects.json":   "projects",
		"/cards/feed.json": "cards",
	}[path]

	items := make([]map[string]interface{}, 0, per)
	for j := 0; j < per+f.extraItems; j++ {
		item := map[string]interface{}{"id": page*1000 + j}
		if !f.noTimestamps {
			item["created_at"] = fmt.Sprintf("2022-12-%02dT10:00:00.000+09:00", page)
		}
		if key == "cards" {
			item["description"] = fmt.Sprintf("card %d", page*1000+j)
			item["keywords"] = []string{query}
		}
		items = append(items, item)
	}

	return json.Marshal(map[string]interface{}{
		"total_count": f.totals[query],
		key:           items,
	})
}

// listingCalls returns every listing request, total-count requests included
func (f *fakeSite) listingCalls() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []fetchCall
	for _, c := range f.calls {
		if !strings.HasSuffix(c.URL, ".json") {
			continue
		}
		calls = append(calls, c)
	}
	return calls
}

func (f *fakeSite) detailCalls() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []fetchCall
	for _, c := range f.calls {
		if strings.HasSuffix(c.URL, ".json") {
			continue
		}
		calls = append(calls, c)
	}
	return calls
}

func detailPage(path string) string {
	return `<html><body>
<div class="bpd-view bpd-view-text">body of ` + path + `</div>
<ul class="content-keyword-list">
<li class="content-keyword-list__item">#</li>
<li class="content-keyword-list__item">interior</li>
</ul>
</body></html>`
}

// pageSizesRequested returns per for every listing call of a single-query
// run, skipping the leading total-count request.
func pageSizesRequested(calls []fetchCall) []int {
	if len(calls) == 0 {
		return nil
	}
	var sizes []int
	for _, c := range calls[1:] {
		per, _ := strconv.Atoi(c.Params.Get("per"))
		sizes = append(sizes, per)
	}
	return sizes
}

func intPtr(v int) *int {
	return &v
}
