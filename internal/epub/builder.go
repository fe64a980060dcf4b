package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Metadata contains the package metadata carried into a rebuilt container.
type Metadata struct {
	Title       string
	Creator     string
	Language    string // ISO 639-1 code (e.g., "en")
	Identifier  string
	Publisher   string
	Description string
	Rights      string
}

// Document is one content unit of a rebuilt container.
type Document struct {
	Href  string // path within the container, relative to the package root
	Title string
	Data  []byte
}

// Builder assembles a minimal valid EPUB: one or more content documents,
// their resolved resources, navigation and reading order.
type Builder struct {
	meta      Metadata
	docs      []Document
	resources []Resource
}

// NewBuilder creates a builder carrying the given package metadata.
func NewBuilder(meta Metadata) *Builder {
	return &Builder{meta: meta}
}

// AddDocument appends a content document to the reading order.
func (b *Builder) AddDocument(doc Document) {
	b.docs = append(b.docs, doc)
}

// AddResource adds a supporting resource (stylesheet, image, font).
// Duplicates by container path are ignored.
func (b *Builder) AddResource(res Resource) {
	for _, existing := range b.resources {
		if existing.Href == res.Href {
			return
		}
	}
	b.resources = append(b.resources, res)
}

// Build generates the epub and writes it to the specified path.
func (b *Builder) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return b.WriteTo(f)
}

// WriteTo writes the epub to a writer.
func (b *Builder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	// 1. Write mimetype (must be first, uncompressed)
	if err := b.writeMimetype(zw); err != nil {
		return err
	}

	// 2. Write META-INF/container.xml
	if err := b.writeContainer(zw); err != nil {
		return err
	}

	// 3. Write OEBPS/content.opf (package document)
	if err := b.writeFile(zw, "OEBPS/content.opf", b.generatePackage()); err != nil {
		return err
	}

	// 4. Write OEBPS/nav.xhtml (navigation)
	if err := b.writeFile(zw, "OEBPS/nav.xhtml", b.generateNavigation()); err != nil {
		return err
	}

	// 5. Write OEBPS/toc.ncx (NCX for ePub 2 compatibility)
	if err := b.writeFile(zw, "OEBPS/toc.ncx", b.generateNCX()); err != nil {
		return err
	}

	// 6. Write content documents
	for _, doc := range b.docs {
		if err := b.writeFile(zw, "OEBPS/"+doc.Href, string(doc.Data)); err != nil {
			return fmt.Errorf("failed to write content document %s: %w", doc.Href, err)
		}
	}

	// 7. Write resources
	for _, res := range b.resources {
		if err := b.writeFile(zw, "OEBPS/"+res.Href, string(res.Data)); err != nil {
			return fmt.Errorf("failed to write resource %s: %w", res.Href, err)
		}
	}

	return nil
}

// writeMimetype writes the mimetype file (must be first and uncompressed).
func (b *Builder) writeMimetype(zw *zip.Writer) error {
	// Create with Store method (no compression) as required by ePub spec
	header := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create mimetype: %w", err)
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

// writeContainer writes META-INF/container.xml.
func (b *Builder) writeContainer(zw *zip.Writer) error {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	return b.writeFile(zw, "META-INF/container.xml", content)
}

func (b *Builder) writeFile(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	_, err = w.Write([]byte(content))
	return err
}

// identifier returns the package identifier, minting a urn:uuid when the
// source carried none.
func (b *Builder) identifier() string {
	if b.meta.Identifier != "" {
		return b.meta.Identifier
	}
	return "urn:uuid:" + uuid.New().String()
}

// escapeXML escapes the five XML special characters.
func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}
