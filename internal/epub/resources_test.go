package epub

import "testing"

func TestResources(t *testing.T) {
	src := openFixture(t)

	t.Run("stylesheet and image resolved", func(t *testing.T) {
		data, err := src.ReadUnit("ch1.xhtml")
		if err != nil {
			t.Fatalf("ReadUnit failed: %v", err)
		}

		resources := src.Resources("ch1.xhtml", data)
		if len(resources) != 2 {
			t.Fatalf("expected 2 resources, got %+v", resources)
		}

		byHref := make(map[string]Resource)
		for _, r := range resources {
			byHref[r.Href] = r
		}
		if css, ok := byHref["style.css"]; !ok || css.MediaType != "text/css" {
			t.Errorf("missing or mistyped stylesheet: %+v", byHref)
		}
		if img, ok := byHref["images/cover.png"]; !ok || img.MediaType != "image/png" {
			t.Errorf("missing or mistyped image: %+v", byHref)
		}
		if string(byHref["style.css"].Data) != "body { font-family: serif; }" {
			t.Error("resource data should match archive content")
		}
	})

	t.Run("duplicate references embedded once", func(t *testing.T) {
		content := []byte(`<html><head>
			<link rel="stylesheet" href="style.css"/>
			<link rel="stylesheet" href="style.css"/>
			<style>div { background: url("style.css"); }</style>
		</head><body/></html>`)

		resources := src.Resources("ch1.xhtml", content)
		if len(resources) != 1 {
			t.Errorf("expected 1 deduplicated resource, got %+v", resources)
		}
	})

	t.Run("unresolvable references dropped", func(t *testing.T) {
		content := []byte(`<html><body><img src="missing.png"/></body></html>`)
		if resources := src.Resources("ch1.xhtml", content); len(resources) != 0 {
			t.Errorf("expected no resources, got %+v", resources)
		}
	})
}
