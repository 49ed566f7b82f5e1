package ohou

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ohoucrawl/pkg/errors"
)

// ItemID is a listing item id. The API serves ids as JSON numbers, but
// strings are accepted too.
type ItemID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// Item is one entry of a listing page. Description and Keywords are only
// populated for feed cards.
type Item struct {
	ID          ItemID   `json:"id"`
	CreatedAt   *string  `json:"created_at"`
	Description *string  `json:"description"`
	Keywords    []string `json:"keywords"`
}

// ListingPage is one decoded listing response
type ListingPage struct {
	// TotalCount is nil when the response omitted total_count.
	TotalCount *int
	Items      []Item
}

// DecodeListingPage decodes a listing response body for category c.
// A body that is not a JSON object, or that lacks the category's item array,
// yields an upstream error. Items without an id are rejected the same way.
func DecodeListingPage(body []byte, c Category, sourceURL string) (*ListingPage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewUpstreamError(sourceURL, "listing response is not a JSON object", err)
	}

	page := &ListingPage{}

	if tc, ok := raw["total_count"]; ok && !isNull(tc) {
		var total int
		if err := json.Unmarshal(tc, &total); err != nil {
			return nil, errors.NewUpstreamError(sourceURL, "total_count is not an integer", err)
		}
		page.TotalCount = &total
	}

	arr, ok := raw[c.ArrayKey()]
	if !ok || isNull(arr) {
		return nil, errors.NewUpstreamError(sourceURL, fmt.Sprintf("listing response has no %q array", c.ArrayKey()), nil)
	}
	if err := json.Unmarshal(arr, &page.Items); err != nil {
		return nil, errors.NewUpstreamError(sourceURL, fmt.Sprintf("malformed %q array", c.ArrayKey()), err)
	}

	for i, item := range page.Items {
		if strings.TrimSpace(string(item.ID)) == "" {
			return nil, errors.NewUpstreamError(sourceURL, fmt.Sprintf("item %d has no id", i), nil)
		}
	}

	return page, nil
}

// DecodeTotalCount reads only total_count from a listing response
func DecodeTotalCount(body []byte, sourceURL string) (int, error) {
	var resp struct {
		TotalCount *int `json:"total_count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, errors.NewUpstreamError(sourceURL, "listing response is not valid JSON", err)
	}
	if resp.TotalCount == nil {
		return 0, errors.NewUpstreamError(sourceURL, "listing response has no total_count", nil)
	}
	if *resp.TotalCount < 0 {
		return 0, errors.NewUpstreamError(sourceURL, fmt.Sprintf("negative total_count %d", *resp.TotalCount), nil)
	}
	return *resp.TotalCount, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
