package ohou

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the default upstream host
	BaseURL = "https://ohou.se"

	// PageSize is the largest page the listing endpoints are asked for
	PageSize = 100

	// InputSource is sent with every listing request regardless of category
	InputSource = "advices"

	// APIVersion is the listing API version parameter
	APIVersion = 5
)

// Category is one of the three content types the site lists.
type Category int

const (
	Advices Category = iota + 1
	Projects
	Feeds
)

type categorySpec struct {
	name       string
	listPath   string
	detailPath string
	arrayKey   string
	detail     bool
}

var categorySpecs = map[Category]categorySpec{
	Advices: {
		name:       "advices",
		listPath:   "/advices.json",
		detailPath: "/advices/",
		arrayKey:   "advices",
		detail:     true,
	},
	Projects: {
		name:       "projects",
		listPath:   "/projects.json",
		detailPath: "/projects/",
		arrayKey:   "projects",
		detail:     true,
	},
	Feeds: {
		name:       "feeds",
		listPath:   "/cards/feed.json",
		detailPath: "/cards/feed/",
		arrayKey:   "cards",
		detail:     false,
	},
}

// Categories returns every category in declaration order
func Categories() []Category {
	return []Category{Advices, Projects, Feeds}
}

// ParseCategory maps a category name ("advices", "projects", "feeds") to its value
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories() {
		if categorySpecs[c].name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// Valid reports whether c is one of the declared categories
func (c Category) Valid() bool {
	_, ok := categorySpecs[c]
	return ok
}

func (c Category) String() string {
	if spec, ok := categorySpecs[c]; ok {
		return spec.name
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// ArrayKey is the name of the item array in the category's listing JSON
func (c Category) ArrayKey() string {
	return categorySpecs[c].arrayKey
}

// NeedsDetail reports whether items of this category require a detail-page
// fetch. Feed cards carry their text and keywords inline.
func (c Category) NeedsDetail() bool {
	return categorySpecs[c].detail
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// GetListingURL constructs the listing endpoint for a category
func GetListingURL(baseURL string, c Category) string {
	return strings.TrimRight(baseURL, "/") + categorySpecs[c].listPath
}

// GetDetailURL constructs the detail page URL for an item
func GetDetailURL(baseURL string, c Category, id string) string {
	return strings.TrimRight(baseURL, "/") + categorySpecs[c].detailPath + id
}

// ListingParams builds the query parameters for one listing page.
// page is 1-based.
func ListingParams(query string, page, per int) url.Values {
	params := url.Values{}
	params.Set("query", query)
	params.Set("input_source", InputSource)
	params.Set("page", strconv.Itoa(page))
	params.Set("per", strconv.Itoa(per))
	params.Set("v", strconv.Itoa(APIVersion))
	return params
}
