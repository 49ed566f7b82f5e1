package extract

import (
	"bytes"
	stderrors "errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ohoucrawl/pkg/errors"
)

const (
	// TextSelector matches every element whose class attribute contains
	// bpd-view-text anywhere in it.
	TextSelector = `[class*="bpd-view-text"]`

	// KeywordSelector matches keyword list items by their exact class attribute.
	KeywordSelector = `li[class="content-keyword-list__item"]`

	// TagMarker is the hash fragment rendered in front of every keyword.
	TagMarker = "#"
)

// ErrEmptyDocument is returned for a body with no content at all
var ErrEmptyDocument = stderrors.New("empty document")

// Detail is what one detail page yields. Keywords is nil when the page has
// no keyword tags; an empty non-nil slice never comes out of Extract.
type Detail struct {
	Text     string
	Keywords []string
}

// Extract parses body once and applies both the text and keyword rules
func Extract(body []byte) (Detail, error) {
	doc, err := parse(body)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Text:     textFrom(doc),
		Keywords: keywordsFrom(doc),
	}, nil
}

// ExtractText returns the text of every bpd-view-text region joined by
// newlines. A page without such regions yields "".
func ExtractText(body []byte) (string, error) {
	doc, err := parse(body)
	if err != nil {
		return "", err
	}
	return textFrom(doc), nil
}

// ExtractKeywords returns the page's keyword tags without their "#" markers,
// or nil when there are none.
func ExtractKeywords(body []byte) ([]string, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return keywordsFrom(doc), nil
}

func parse(body []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &errors.Error{Type: errors.ErrorTypeParsing, Message: "detail page body is empty", Err: ErrEmptyDocument}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &errors.Error{Type: errors.ErrorTypeParsing, Message: "failed to parse detail page", Err: err}
	}
	return doc, nil
}

func textFrom(doc *goquery.Document) string {
	var fragments []string
	doc.Find(TextSelector).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			fragments = appendTextNodes(fragments, n)
		}
	})
	for i, f := range fragments {
		fragments[i] = stripCR(f)
	}
	return strings.Join(fragments, "\n")
}

func keywordsFrom(doc *goquery.Document) []string {
	var keywords []string
	doc.Find(KeywordSelector).Each(func(_ int, s *goquery.Selection) {
		var fragments []string
		for _, n := range s.Nodes {
			fragments = appendTextNodes(fragments, n)
		}
		for _, f := range fragments {
			if f == TagMarker {
				continue
			}
			keywords = append(keywords, stripCR(f))
		}
	})
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

// appendTextNodes walks n's subtree in document order and appends the data
// of each text node.
func appendTextNodes(dst []string, n *html.Node) []string {
	if n.Type == html.TextNode {
		return append(dst, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dst = appendTextNodes(dst, c)
	}
	return dst
}

func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}
