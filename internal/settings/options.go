// Package settings persists the connector's options: Searchcraft credentials,
// the target index and front-end layout. API keys are encrypted at rest.
package settings

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// OptionName is the option-store key the settings are kept under.
const OptionName = "searchcraft_options"

// Experience selects how the search UI is presented on the site.
type Experience string

// Supported experiences.
const (
	ExperienceFull    Experience = "full"
	ExperiencePopover Experience = "popover"
)

const (
	defaultResultsPerPage = 10
	maxResultsPerPage     = 100
	defaultPlaceholder    = "Search..."
	maxPlaceholderLen     = 200
)

var indexIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Layout controls the injected search UI.
type Layout struct {
	Experience        Experience `json:"experience"`
	ResultsPerPage    int        `json:"results_per_page"`
	Placeholder       string     `json:"placeholder"`
	IncludeStylesheet bool       `json:"include_stylesheet"`
}

// Options is the full persisted configuration.
type Options struct {
	ReadKey     string `json:"read_key"`
	IngestKey   string `json:"ingest_key"`
	EndpointURL string `json:"endpoint_url"`
	IndexID     string `json:"index_id"`
	CortexURL   string `json:"cortex_url"`
	Layout      Layout `json:"layout"`
}

// Defaults returns the options used before anything has been saved.
func Defaults() Options {
	return Options{
		Layout: Layout{
			Experience:        ExperienceFull,
			ResultsPerPage:    defaultResultsPerPage,
			Placeholder:       defaultPlaceholder,
			IncludeStylesheet: true,
		},
	}
}

// WithDefaults returns o with zero-valued layout fields filled from Defaults.
// IncludeStylesheet is a plain bool and is kept as given.
func (o Options) WithDefaults() Options {
	d := Defaults()
	if o.Layout.Experience == "" {
		o.Layout.Experience = d.Layout.Experience
	}
	if o.Layout.ResultsPerPage == 0 {
		o.Layout.ResultsPerPage = d.Layout.ResultsPerPage
	}
	if o.Layout.Placeholder == "" {
		o.Layout.Placeholder = d.Layout.Placeholder
	}
	o.EndpointURL = strings.TrimRight(strings.TrimSpace(o.EndpointURL), "/")
	o.CortexURL = strings.TrimRight(strings.TrimSpace(o.CortexURL), "/")
	o.IndexID = strings.TrimSpace(o.IndexID)
	o.ReadKey = strings.TrimSpace(o.ReadKey)
	o.IngestKey = strings.TrimSpace(o.IngestKey)
	return o
}

// Configured reports whether the front end can be rendered: an endpoint, an
// index and a read key are all present.
func (o Options) Configured() bool {
	return o.EndpointURL != "" && o.IndexID != "" && o.ReadKey != ""
}

// CanIngest reports whether content can be pushed to the index.
func (o Options) CanIngest() bool {
	return o.EndpointURL != "" && o.IndexID != "" && o.IngestKey != ""
}

// Redacted returns a copy safe to display, with keys masked.
func (o Options) Redacted() Options {
	o.ReadKey = mask(o.ReadKey)
	o.IngestKey = mask(o.IngestKey)
	return o
}

func mask(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "********"
	default:
		return "********" + key[len(key)-4:]
	}
}

// ValidationError reports an invalid option value.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings: %s: %s", e.Field, e.Message)
}

// Validate checks option values. Empty URLs and index id are allowed: the
// connector is simply not configured yet.
func (o Options) Validate() error {
	if err := validateURL("endpoint_url", o.EndpointURL); err != nil {
		return err
	}
	if err := validateURL("cortex_url", o.CortexURL); err != nil {
		return err
	}
	if o.IndexID != "" && !indexIDPattern.MatchString(o.IndexID) {
		return &ValidationError{Field: "index_id", Message: "must be 1-64 letters, digits, '-' or '_'"}
	}

	switch o.Layout.Experience {
	case ExperienceFull, ExperiencePopover:
	default:
		return &ValidationError{Field: "layout.experience", Message: fmt.Sprintf("must be %q or %q", ExperienceFull, ExperiencePopover)}
	}
	if o.Layout.ResultsPerPage < 1 || o.Layout.ResultsPerPage > maxResultsPerPage {
		return &ValidationError{Field: "layout.results_per_page", Message: fmt.Sprintf("must be between 1 and %d", maxResultsPerPage)}
	}
	if len(o.Layout.Placeholder) > maxPlaceholderLen {
		return &ValidationError{Field: "layout.placeholder", Message: fmt.Sprintf("must be at most %d characters", maxPlaceholderLen)}
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: field, Message: "must be an absolute http(s) URL"}
	}
	return nil
}

// Update is a partial change submitted from the admin form. Nil fields are
// left alone; an empty key keeps the stored key so the form never has to echo
// secrets back.
type Update struct {
	ReadKey     string  `json:"read_key"`
	IngestKey   string  `json:"ingest_key"`
	EndpointURL *string `json:"endpoint_url"`
	IndexID     *string `json:"index_id"`
	CortexURL   *string `json:"cortex_url"`
	Layout      *Layout `json:"layout"`
}

// Apply returns current with u merged in.
func (u Update) Apply(current Options) Options {
	if k := strings.TrimSpace(u.ReadKey); k != "" {
		current.ReadKey = k
	}
	if k := strings.TrimSpace(u.IngestKey); k != "" {
		current.IngestKey = k
	}
	if u.EndpointURL != nil {
		current.EndpointURL = *u.EndpointURL
	}
	if u.IndexID != nil {
		current.IndexID = *u.IndexID
	}
	if u.CortexURL != nil {
		current.CortexURL = *u.CortexURL
	}
	if u.Layout != nil {
		current.Layout = *u.Layout
	}
	return current
}
