package epub

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// heading is one heading element found in a content unit.
type heading struct {
	text  string
	id    string
	depth int // 1 for h1, 2 for h2, ...
}

var headingDepth = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// scanHeadings returns the headings of the given depths, in document order.
func scanHeadings(data []byte, depths []int) ([]heading, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	wanted := make(map[int]bool, len(depths))
	for _, d := range depths {
		wanted[d] = true
	}

	var headings []heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if depth, ok := headingDepth[n.Data]; ok && wanted[depth] {
				text := strings.TrimSpace(nodeText(n))
				if text != "" {
					headings = append(headings, heading{
						text:  text,
						id:    attr(n, "id"),
						depth: depth,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return headings, nil
}

// documentTitle extracts a display title from a content unit: the <title>
// element first, else the first h1, else the first h2. Returns "" when
// nothing usable is found.
func documentTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	if t := findElement(doc, "title"); t != nil {
		if text := strings.TrimSpace(nodeText(t)); text != "" {
			return text
		}
	}
	for _, tag := range []string{"h1", "h2"} {
		if h := findElement(doc, tag); h != nil {
			if text := strings.TrimSpace(nodeText(h)); text != "" {
				return text
			}
		}
	}
	return ""
}

// extractFragment parses a content unit, locates the element with the
// given anchor id and splices it into a fresh minimal document shell. When
// the anchor cannot be found the entire unit is returned unmodified.
func extractFragment(data []byte, anchorID string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	target := findByID(doc, anchorID)
	if target == nil {
		return data, nil
	}

	shell, err := html.Parse(strings.NewReader("<html><head></head><body></body></html>"))
	if err != nil {
		return nil, fmt.Errorf("failed to build document shell: %w", err)
	}
	body := findElement(shell, "body")
	if body == nil {
		return nil, fmt.Errorf("document shell has no body")
	}

	if target.Parent != nil {
		target.Parent.RemoveChild(target)
	}
	body.AppendChild(target)

	var buf bytes.Buffer
	if err := html.Render(&buf, shell); err != nil {
		return nil, fmt.Errorf("failed to render extracted section: %w", err)
	}
	return buf.Bytes(), nil
}

// plainText converts a content unit to text for paginated rendering,
// falling back to a lossy tag strip when parsing fails.
func plainText(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return stripTags(string(data))
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "li":
				out.WriteString("\n")
			}
		}
	}
	walk(doc)
	return strings.TrimSpace(out.String())
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// stripTags is the lossy fallback decode used when structured parsing fails.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// nodeText concatenates the text content beneath a node.
func nodeText(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(out.String()), " ")
}

// findElement returns the first element with the given tag name, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findByID returns the first element with the given id attribute.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
