package epub

import (
	"testing"

	"chapterize/internal/types"
)

func TestOutline(t *testing.T) {
	src := openFixture(t)

	t.Run("all levels", func(t *testing.T) {
		chapters, ok, err := src.Outline(0)
		if err != nil {
			t.Fatalf("Outline failed: %v", err)
		}
		if !ok {
			t.Fatal("expected an outline")
		}
		if len(chapters) != 3 {
			t.Fatalf("expected 3 entries, got %d: %+v", len(chapters), chapters)
		}

		want := []struct {
			title    string
			file     string
			fragment string
			level    int
		}{
			{"Chapter 1", "ch1.xhtml", "", 1},
			{"Chapter 2", "ch2.xhtml", "", 1},
			{"Section 2.1", "ch2.xhtml", "s21", 2},
		}
		for i, w := range want {
			ch := chapters[i]
			if ch.Title != w.title || ch.Position.File != w.file ||
				ch.Position.Fragment != w.fragment || ch.Level != w.level {
				t.Errorf("entry %d = %+v, want %+v", i, ch, w)
			}
			if ch.Method != types.MethodNative || ch.Confidence != 1.0 {
				t.Errorf("entry %d should be native with confidence 1.0, got %+v", i, ch)
			}
		}

		if chapters[2].Position.SpineIndex != 1 {
			t.Errorf("Section 2.1 should sit at spine index 1, got %d", chapters[2].Position.SpineIndex)
		}
	})

	t.Run("level filter keeps top level only", func(t *testing.T) {
		chapters, ok, err := src.Outline(1)
		if err != nil || !ok {
			t.Fatalf("Outline failed: ok=%v err=%v", ok, err)
		}
		if len(chapters) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(chapters))
		}
		for _, ch := range chapters {
			if ch.Level != 1 {
				t.Errorf("unexpected level %d", ch.Level)
			}
		}
	})
}

func TestOutlineMissingNCX(t *testing.T) {
	entries := fixtureEntries()
	delete(entries, "OEBPS/toc.ncx")
	src, err := Open(writeEPUB(t, entries), nil)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer src.Close()

	chapters, ok, err := src.Outline(0)
	if err != nil {
		t.Fatalf("Outline should not error on a missing NCX: %v", err)
	}
	if ok || chapters != nil {
		t.Errorf("expected no outline, got ok=%v chapters=%+v", ok, chapters)
	}
}

func TestSplitHref(t *testing.T) {
	tests := []struct {
		in     string
		file   string
		anchor string
	}{
		{"ch1.xhtml", "ch1.xhtml", ""},
		{"ch2.xhtml#s21", "ch2.xhtml", "s21"},
		{"#local", "", "local"},
	}
	for _, tt := range tests {
		file, anchor := splitHref(tt.in)
		if file != tt.file || anchor != tt.anchor {
			t.Errorf("splitHref(%q) = (%q, %q), want (%q, %q)", tt.in, file, anchor, tt.file, tt.anchor)
		}
	}
}
