package epub

import (
	"bytes"
	"regexp"

	"golang.org/x/net/html"
)

// Resource is one archive item (stylesheet, image, font) needed by an
// extracted chapter. Data is the caller's own copy of the item content.
type Resource struct {
	Href      string
	MediaType string
	Data      []byte
}

var cssURLRe = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)

// Resources discovers every resource a content unit references
// (stylesheet links, image sources and url(...) references inside inline
// style blocks) and resolves each against the manifest: direct lookup
// first, then relative to the unit's directory. Unresolvable references
// are dropped with a warning; the set is deduplicated by archive path so
// a resource referenced from multiple contexts is embedded once.
func (s *Source) Resources(unitHref string, content []byte) []Resource {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		s.log.Warn("skipping resource scan of unparsable unit", "unit", unitHref, "error", err)
		return nil
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				if attr(n, "rel") == "stylesheet" {
					if href := attr(n, "href"); href != "" {
						refs = append(refs, href)
					}
				}
			case "img", "image":
				if src := attr(n, "src"); src != "" {
					refs = append(refs, src)
				}
				if href := attr(n, "href"); href != "" {
					refs = append(refs, href)
				}
			case "style":
				for _, m := range cssURLRe.FindAllStringSubmatch(nodeText(n), -1) {
					refs = append(refs, m[1])
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	seen := make(map[string]bool)
	var resources []Resource
	for _, ref := range refs {
		item := s.Item(ref, unitHref)
		if item == nil {
			s.log.Warn("dropping unresolvable resource reference", "unit", unitHref, "ref", ref)
			continue
		}
		if seen[item.HREF] {
			continue
		}
		seen[item.HREF] = true

		data, err := s.readItem(item)
		if err != nil {
			s.log.Warn("dropping unreadable resource", "href", item.HREF, "error", err)
			continue
		}
		resources = append(resources, Resource{
			Href:      item.HREF,
			MediaType: item.MediaType,
			Data:      data,
		})
	}
	return resources
}
