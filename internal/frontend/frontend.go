// Package frontend renders the HTML fragment injected into site pages: the
// search containers, the SDK script and its configuration.
package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

const fragment = `{{if .IncludeStylesheet}}<link rel="stylesheet" href="{{.StylesheetURL}}">
{{end}}<div id="searchcraft-root" class="searchcraft searchcraft--{{.Experience}}">
  <div id="searchcraft-input-container" data-placeholder="{{.Config.Placeholder}}"></div>
{{- if eq .Experience "full"}}
  <div id="searchcraft-results-container"></div>
  <div id="searchcraft-pagination-container"></div>
{{- end}}
</div>
<script type="application/json" id="searchcraft-config">{{.Config}}</script>
<script src="{{.ScriptURL}}" defer></script>
`

// SDKConfig is the configuration handed to the browser SDK. It only ever
// carries the read key.
type SDKConfig struct {
	EndpointURL    string `json:"endpointURL"`
	IndexName      string `json:"indexName"`
	ReadKey        string `json:"readKey"`
	CortexURL      string `json:"cortexURL,omitempty"`
	ResultsPerPage int    `json:"searchResultsPerPage"`
	Placeholder    string `json:"placeholder"`
	Experience     string `json:"experience"`
}

type view struct {
	Config            SDKConfig
	Experience        string
	IncludeStylesheet bool
	ScriptURL         string
	StylesheetURL     string
}

// Renderer renders the front-end fragment.
type Renderer struct {
	tmpl          *template.Template
	scriptURL     string
	stylesheetURL string
}

// NewRenderer creates a Renderer loading the SDK from scriptURL. The
// stylesheet is expected next to it with a .css extension.
func NewRenderer(scriptURL string) (*Renderer, error) {
	tmpl, err := template.New("searchcraft").Parse(fragment)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment template: %w", err)
	}

	stylesheetURL, err := stylesheetFor(scriptURL)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		tmpl:          tmpl,
		scriptURL:     scriptURL,
		stylesheetURL: stylesheetURL,
	}, nil
}

// stylesheetFor swaps the .js extension of the script path for .css and
// keeps any query or fragment.
func stylesheetFor(scriptURL string) (string, error) {
	u, err := url.Parse(scriptURL)
	if err != nil {
		return "", fmt.Errorf("parsing script URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, ".js") + ".css"
	u.RawPath = ""
	return u.String(), nil
}

// Render writes the fragment for opts. Nothing is written when opts is not
// configured.
func (r *Renderer) Render(w io.Writer, opts settings.Options) error {
	if !opts.Configured() {
		return nil
	}

	v := view{
		Config:            NewSDKConfig(opts),
		Experience:        string(opts.Layout.Experience),
		IncludeStylesheet: opts.Layout.IncludeStylesheet,
		ScriptURL:         r.scriptURL,
		StylesheetURL:     r.stylesheetURL,
	}

	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("rendering fragment: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(opts settings.Options) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewSDKConfig builds the browser configuration from opts.
func NewSDKConfig(opts settings.Options) SDKConfig {
	return SDKConfig{
		EndpointURL:    opts.EndpointURL,
		IndexName:      opts.IndexID,
		ReadKey:        opts.ReadKey,
		CortexURL:      opts.CortexURL,
		ResultsPerPage: opts.Layout.ResultsPerPage,
		Placeholder:    opts.Layout.Placeholder,
		Experience:     string(opts.Layout.Experience),
	}
}
