package epub

import (
	"fmt"
	"strings"
	"time"
)

// generatePackage creates the content.opf package document.
func (b *Builder) generatePackage() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)

	// Dublin Core metadata
	sb.WriteString(fmt.Sprintf("    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", escapeXML(b.identifier())))
	sb.WriteString(fmt.Sprintf("    <dc:title>%s</dc:title>\n", escapeXML(b.meta.Title)))
	if b.meta.Creator != "" {
		sb.WriteString(fmt.Sprintf("    <dc:creator>%s</dc:creator>\n", escapeXML(b.meta.Creator)))
	}

	lang := b.meta.Language
	if lang == "" {
		lang = "en"
	}
	sb.WriteString(fmt.Sprintf("    <dc:language>%s</dc:language>\n", lang))

	if b.meta.Publisher != "" {
		sb.WriteString(fmt.Sprintf("    <dc:publisher>%s</dc:publisher>\n", escapeXML(b.meta.Publisher)))
	}
	if b.meta.Description != "" {
		sb.WriteString(fmt.Sprintf("    <dc:description>%s</dc:description>\n", escapeXML(b.meta.Description)))
	}
	if b.meta.Rights != "" {
		sb.WriteString(fmt.Sprintf("    <dc:rights>%s</dc:rights>\n", escapeXML(b.meta.Rights)))
	}

	// Modified timestamp (required for ePub 3)
	sb.WriteString(fmt.Sprintf("    <meta property=\"dcterms:modified\">%s</meta>\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z")))

	sb.WriteString("  </metadata>\n\n")

	// Manifest
	sb.WriteString("  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	sb.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")

	for i, doc := range b.docs {
		sb.WriteString(fmt.Sprintf("    <item id=\"doc-%d\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n",
			i+1, escapeXML(doc.Href)))
	}
	for i, res := range b.resources {
		mediaType := res.MediaType
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		sb.WriteString(fmt.Sprintf("    <item id=\"res-%d\" href=\"%s\" media-type=\"%s\"/>\n",
			i+1, escapeXML(res.Href), mediaType))
	}

	sb.WriteString("  </manifest>\n\n")

	// Spine (reading order)
	sb.WriteString("  <spine toc=\"ncx\">\n")
	for i := range b.docs {
		sb.WriteString(fmt.Sprintf("    <itemref idref=\"doc-%d\"/>\n", i+1))
	}
	sb.WriteString("  </spine>\n")

	sb.WriteString("</package>\n")

	return sb.String()
}
