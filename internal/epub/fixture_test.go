package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const fixtureContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const fixtureOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" unique-identifier="uid" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Fixture Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:uuid:fixture-0001</dc:identifier>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch3" href="ch3.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
    <item id="cover" href="images/cover.png" media-type="image/png"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
    <itemref idref="ch3"/>
  </spine>
</package>`

const fixtureNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head><meta name="dtb:uid" content="urn:uuid:fixture-0001"/></head>
  <docTitle><text>Fixture Book</text></docTitle>
  <navMap>
    <navPoint id="np-1" playOrder="1">
      <navLabel><text>Chapter 1</text></navLabel>
      <content src="ch1.xhtml"/>
    </navPoint>
    <navPoint id="np-2" playOrder="2">
      <navLabel><text>Chapter 2</text></navLabel>
      <content src="ch2.xhtml"/>
      <navPoint id="np-3" playOrder="3">
        <navLabel><text>Section 2.1</text></navLabel>
        <content src="ch2.xhtml#s21"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`

const fixtureCh1 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>Chapter 1</title>
  <link rel="stylesheet" href="style.css"/>
</head>
<body>
  <h1 id="c1">Chapter 1</h1>
  <p>It was a dark and stormy night.</p>
  <img src="images/cover.png" alt="cover"/>
</body>
</html>`

const fixtureCh2 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <link rel="stylesheet" href="style.css"/>
</head>
<body>
  <h1>Chapter 2</h1>
  <p>The plot thickens.</p>
  <h2 id="s21">Section 2.1</h2>
  <p>A closer look.</p>
</body>
</html>`

const fixtureCh3 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Notes</title></head>
<body>
  <p>Closing notes without any headings.</p>
</body>
</html>`

// writeEPUB assembles an EPUB container from the given entries. The
// mimetype is always written first and uncompressed.
func writeEPUB(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to create mimetype: %v", err)
	}
	if _, err := w.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("failed to write mimetype: %v", err)
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize fixture: %v", err)
	}
	return path
}

// fixtureEntries is the default three-chapter book with NCX navigation,
// a stylesheet and an image.
func fixtureEntries() map[string]string {
	return map[string]string{
		"META-INF/container.xml": fixtureContainer,
		"OEBPS/content.opf":      fixtureOPF,
		"OEBPS/toc.ncx":          fixtureNCX,
		"OEBPS/ch1.xhtml":        fixtureCh1,
		"OEBPS/ch2.xhtml":        fixtureCh2,
		"OEBPS/ch3.xhtml":        fixtureCh3,
		"OEBPS/style.css":        "body { font-family: serif; }",
		"OEBPS/images/cover.png": "not really a png",
	}
}

func openFixture(t *testing.T) *Source {
	t.Helper()

	src, err := Open(writeEPUB(t, fixtureEntries()), nil)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}
