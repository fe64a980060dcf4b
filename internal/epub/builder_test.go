package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func buildTestEPUB(t *testing.T, b *Builder) map[string]string {
	t.Helper()

	var buf bytes.Buffer
	if err := b.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}

	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatal("mimetype must be the first archive entry")
	}
	if zr.File[0].Method != zip.Store {
		t.Error("mimetype must be stored uncompressed")
	}

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuilderWriteTo(t *testing.T) {
	b := NewBuilder(Metadata{
		Title:      "Chapter 1",
		Creator:    "Test Author",
		Language:   "en",
		Identifier: "urn:uuid:test-0001",
	})
	b.AddDocument(Document{Href: "ch1.xhtml", Title: "Chapter 1", Data: []byte("<html><body><h1>Chapter 1</h1></body></html>")})
	b.AddResource(Resource{Href: "style.css", MediaType: "text/css", Data: []byte("body {}")})

	entries := buildTestEPUB(t, b)

	if entries["mimetype"] != "application/epub+zip" {
		t.Errorf("mimetype = %q", entries["mimetype"])
	}
	if !strings.Contains(entries["META-INF/container.xml"], "OEBPS/content.opf") {
		t.Error("container.xml should point at the package document")
	}

	opf := entries["OEBPS/content.opf"]
	for _, want := range []string{
		"<dc:title>Chapter 1</dc:title>",
		"<dc:creator>Test Author</dc:creator>",
		"urn:uuid:test-0001",
		`href="ch1.xhtml"`,
		`href="style.css"`,
		`media-type="text/css"`,
	} {
		if !strings.Contains(opf, want) {
			t.Errorf("package document missing %q", want)
		}
	}

	if !strings.Contains(entries["OEBPS/nav.xhtml"], `href="ch1.xhtml"`) {
		t.Error("navigation should reference the content document")
	}
	if !strings.Contains(entries["OEBPS/toc.ncx"], "Chapter 1") {
		t.Error("NCX should carry the chapter title")
	}
	if !strings.Contains(entries["OEBPS/ch1.xhtml"], "<h1>Chapter 1</h1>") {
		t.Error("content document should be written verbatim")
	}
	if entries["OEBPS/style.css"] != "body {}" {
		t.Error("resource should be written verbatim")
	}
}

func TestBuilderMintsIdentifier(t *testing.T) {
	b := NewBuilder(Metadata{Title: "Untitled"})
	b.AddDocument(Document{Href: "ch1.xhtml", Data: []byte("<html/>")})

	entries := buildTestEPUB(t, b)
	if !strings.Contains(entries["OEBPS/content.opf"], "urn:uuid:") {
		t.Error("a missing identifier should be minted as urn:uuid")
	}
}

func TestBuilderDeduplicatesResources(t *testing.T) {
	b := NewBuilder(Metadata{Title: "T"})
	b.AddDocument(Document{Href: "a.xhtml", Data: []byte("<html/>")})
	b.AddResource(Resource{Href: "style.css", MediaType: "text/css", Data: []byte("x")})
	b.AddResource(Resource{Href: "style.css", MediaType: "text/css", Data: []byte("x")})

	entries := buildTestEPUB(t, b)
	if strings.Count(entries["OEBPS/content.opf"], `href="style.css"`) != 1 {
		t.Error("duplicate resources should appear once in the manifest")
	}
}

func TestEscapeXML(t *testing.T) {
	got := escapeXML(`a & b < c > "d" 'e'`)
	want := "a &amp; b &lt; c &gt; &quot;d&quot; &apos;e&apos;"
	if got != want {
		t.Errorf("escapeXML = %q, want %q", got, want)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	// A built chapter container must reopen cleanly as a Source.
	b := NewBuilder(Metadata{Title: "Chapter 1", Language: "en"})
	b.AddDocument(Document{Href: "ch1.xhtml", Title: "Chapter 1", Data: []byte(fixtureCh1)})
	b.AddResource(Resource{Href: "style.css", MediaType: "text/css", Data: []byte("body {}")})
	b.AddResource(Resource{Href: "images/cover.png", MediaType: "image/png", Data: []byte("png")})

	path := t.TempDir() + "/chapter.epub"
	if err := b.Build(path); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src, err := Open(path, nil)
	if err != nil {
		t.Fatalf("built container failed to reopen: %v", err)
	}
	defer src.Close()

	if src.TotalUnits() != 1 {
		t.Errorf("TotalUnits() = %d, want 1", src.TotalUnits())
	}
	if src.Metadata().Title != "Chapter 1" {
		t.Errorf("Title = %q", src.Metadata().Title)
	}
	if _, err := src.ReadUnit("ch1.xhtml"); err != nil {
		t.Errorf("ReadUnit failed on rebuilt container: %v", err)
	}
}
