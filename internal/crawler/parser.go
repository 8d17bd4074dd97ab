package crawler

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultTitleElementID is the id of the article heading on encyclopedia pages.
const DefaultTitleElementID = "firstHeading"

// Parser extracts the article heading, body text and outbound links from HTML.
//
// The document is parsed with golang.org/x/net/html, which tolerates the
// malformed markup common on the web, and queried through goquery.
type Parser struct {
	// rules filters and absolutizes href values.
	rules LinkRules

	// titleElementID is the id attribute of the heading element.
	titleElementID string
}

// ParseResult contains the information extracted from one page.
type ParseResult struct {
	// Title is the text of the heading element.
	Title string

	// HasTitle is false when the document has no heading element.
	HasTitle bool

	// Body is the text of every <p> element concatenated in document order
	// with nothing in between.
	Body string

	// Links are the kept href values in document order, duplicates included.
	// Nil unless links were requested.
	Links []string
}

// NewParser creates a Parser with the given link rules and heading id.
func NewParser(rules LinkRules, titleElementID string) *Parser {
	return &Parser{
		rules:          rules,
		titleElementID: titleElementID,
	}
}

// Parse parses HTML content. Links are extracted only when withLinks is true.
func (p *Parser) Parse(content io.Reader, withLinks bool) (*ParseResult, error) {
	root, err := html.Parse(content)
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &ParseResult{}

	if withLinks {
		result.Links = p.extractLinks(doc)
	}

	if heading := p.findByID(doc, p.titleElementID); heading.Length() > 0 {
		result.Title = heading.Text()
		result.HasTitle = true
	}

	result.Body = extractBody(doc)

	return result, nil
}

// extractLinks collects the kept href of every anchor.
// Anchors without an href attribute are ignored.
func (p *Parser) extractLinks(doc *goquery.Document) []string {
	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if link, keep := p.rules.Normalize(href); keep {
			links = append(links, link)
		}
	})
	return links
}

// findByID returns the first element whose id attribute equals id.
// Matching on the attribute value avoids escaping id for a CSS selector.
func (p *Parser) findByID(doc *goquery.Document, id string) *goquery.Selection {
	return doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
}

// extractBody concatenates the text of every paragraph.
func extractBody(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		sb.WriteString(s.Text())
	})
	return sb.String()
}
