package frontend

import (
	"strings"
	"testing"

	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

func configured() settings.Options {
	return settings.Options{
		ReadKey:     "sc_read_public",
		IngestKey:   "sc_ingest_secret",
		EndpointURL: "https://example.searchcraft.io",
		IndexID:     "posts",
	}.WithDefaults()
}

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("https://cdn.example.com/sdk/searchcraft.js")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRenderNotConfigured(t *testing.T) {
	out, err := mustRenderer(t).RenderString(settings.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestRenderFull(t *testing.T) {
	out, err := mustRenderer(t).RenderString(configured())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<script src="https://cdn.example.com/sdk/searchcraft.js" defer></script>`,
		`href="https://cdn.example.com/sdk/searchcraft.css"`,
		`id="searchcraft-results-container"`,
		`"readKey":"sc_read_public"`,
		`"indexName":"posts"`,
		`"searchResultsPerPage":10`,
		`searchcraft--full`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "sc_ingest_secret") {
		t.Error("ingest key leaked into front-end output")
	}
}

func TestStylesheetFor(t *testing.T) {
	tests := []struct {
		name      string
		scriptURL string
		want      string
	}{
		{name: "plain", scriptURL: "https://cdn.example.com/sdk/searchcraft.js", want: "https://cdn.example.com/sdk/searchcraft.css"},
		{name: "query", scriptURL: "https://cdn.example.com/sdk/searchcraft.js?v=1.2", want: "https://cdn.example.com/sdk/searchcraft.css?v=1.2"},
		{name: "fragment", scriptURL: "https://cdn.example.com/sdk/searchcraft.js#main", want: "https://cdn.example.com/sdk/searchcraft.css#main"},
		{name: "relative", scriptURL: "/static/searchcraft.js?v=3", want: "/static/searchcraft.css?v=3"},
		{name: "query mentions js", scriptURL: "https://cdn.example.com/sdk/bundle.js?file=x.js", want: "https://cdn.example.com/sdk/bundle.css?file=x.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stylesheetFor(tt.scriptURL)
			if err != nil {
				t.Fatalf("stylesheetFor: %v", err)
			}
			if got != tt.want {
				t.Errorf("stylesheetFor(%q) = %q, want %q", tt.scriptURL, got, tt.want)
			}
		})
	}
}

func TestRenderStylesheetKeepsQuery(t *testing.T) {
	r, err := NewRenderer("https://cdn.example.com/sdk/searchcraft.js?v=1.2")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := r.RenderString(configured())
	if err != nil {
		t.Fatal(err)
	}
	if want := `href="https://cdn.example.com/sdk/searchcraft.css?v=1.2"`; !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestNewRendererRejectsBadURL(t *testing.T) {
	if _, err := NewRenderer("://no-scheme"); err == nil {
		t.Fatal("expected error for unparsable script URL")
	}
}

func TestRenderPopoverWithoutStylesheet(t *testing.T) {
	opts := configured()
	opts.Layout.Experience = settings.ExperiencePopover
	opts.Layout.IncludeStylesheet = false

	out, err := mustRenderer(t).RenderString(opts)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out, "searchcraft-results-container") {
		t.Error("popover should not render a results container")
	}
	if strings.Contains(out, "<link") {
		t.Error("stylesheet should be omitted")
	}
	if !strings.Contains(out, "searchcraft--popover") {
		t.Errorf("missing popover class:\n%s", out)
	}
}

func TestRenderEscapesConfig(t *testing.T) {
	opts := configured()
	opts.Layout.Placeholder = `</script><script>alert(1)</script>`

	out, err := mustRenderer(t).RenderString(opts)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out, "<script>alert(1)") {
		t.Errorf("placeholder was not escaped:\n%s", out)
	}
}
