// Package extract isolates the readable body of a chapter's HTML by:
//  1. Parsing the fragment (or full XHTML document) with x/net/html
//  2. Removing noise elements (scripts, styles, embedded objects, form controls)
//  3. Returning the inner HTML of <body> through goquery
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noise lists the elements removed before normalization.
// Images are dropped because their sources point inside the e-book container.
var noise = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Link: true, atom.Meta: true,
	atom.Img: true, atom.Picture: true, atom.Svg: true, atom.Canvas: true,
	atom.Iframe: true, atom.Object: true, atom.Embed: true, atom.Video: true, atom.Audio: true,
	atom.Form: true, atom.Button: true, atom.Input: true, atom.Select: true, atom.Textarea: true,
}

// HTMLExtractor strips noise from chapter HTML and returns the body fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses src and returns the cleaned inner HTML of its body.
// Fragments without <html>/<body> are wrapped by the parser, so both full
// XHTML chapter files and bare fragments are accepted.
func (e *HTMLExtractor) Extract(src string) (string, error) {
	doc, err := parse(src)
	if err != nil {
		return "", err
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", fmt.Errorf("no body found in HTML")
	}

	result, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return strings.TrimSpace(result), nil
}

// Text returns the visible text of src with whitespace collapsed per line.
// It never fails; unparseable input is returned with tags left in place.
func (e *HTMLExtractor) Text(src string) string {
	doc, err := parse(src)
	if err != nil {
		return strings.TrimSpace(src)
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n\n")
}

// parse builds a document from src with the noise elements removed.
func parse(src string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	prune(root)
	return goquery.NewDocumentFromNode(root), nil
}

// prune removes every noise element below n.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && noise[c.DataAtom] {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

// FirstHeading returns the text of the first <h1>..<h6> in src, or "".
func (e *HTMLExtractor) FirstHeading(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return ""
	}
	h := doc.Find("h1, h2, h3, h4, h5, h6").First()
	return strings.Join(strings.Fields(h.Text()), " ")
}
