package youversion

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PandaWhoCodes/youversion/internal/platform/httpclient"
)

// ClientVersion is reported in the default User-Agent.
const ClientVersion = "0.3.0"

// DefaultBaseURL and DefaultTimeout apply when no option overrides them.
const (
	DefaultBaseURL = httpclient.DefaultBaseURL
	DefaultTimeout = httpclient.DefaultTimeout
)

// Option configures a Client or AsyncClient.
type Option func(*settings)

type settings struct {
	baseURL   string
	timeout   time.Duration
	logger    *slog.Logger
	transport http.RoundTripper
	userAgent string
}

func newSettings(opts []Option) settings {
	s := settings{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
		userAgent: "youversion-go/" + ClientVersion,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func (s settings) httpOptions() []httpclient.Option {
	return []httpclient.Option{
		httpclient.WithBaseURL(s.baseURL),
		httpclient.WithTimeout(s.timeout),
		httpclient.WithLogger(s.logger),
		httpclient.WithTransport(s.transport),
		httpclient.WithUserAgent(s.userAgent),
	}
}

// WithBaseURL points the client at another API root, e.g. a staging host.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithTimeout bounds each request end to end (connect plus read). On expiry
// the call fails with *apierr.ConnectionError.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger for request and decode diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPTransport replaces the pooled transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// PageSize is the page_size parameter: a number between 1 and 100, or
// PageSizeAll when at most three fields are requested. The server
// enforces the limits.
type PageSize string

// PageSizeAll asks for every item in one page.
const PageSizeAll PageSize = "*"

// Size returns a numeric PageSize.
func Size(n int) PageSize { return PageSize(strconv.Itoa(n)) }

// PageOptions selects a page and narrows the returned fields.
type PageOptions struct {
	PageSize  PageSize
	PageToken string
	Fields    []string
}

func (o *PageOptions) apply(q url.Values) {
	if o == nil {
		return
	}
	if o.PageSize != "" {
		q.Set("page_size", string(o.PageSize))
	}
	if o.PageToken != "" {
		q.Set("page_token", o.PageToken)
	}
	for _, f := range o.Fields {
		q.Add("fields[]", f)
	}
}

// ListVersionsOptions are the optional inputs of ListVersions.
type ListVersionsOptions struct {
	PageOptions
	LicenseID string
}

// ListBooksOptions are the optional inputs of ListBooks.
type ListBooksOptions struct {
	PageOptions
	Canon Canon
}

// PassageOptions are the optional inputs of GetPassage. A nil value means
// plain text without headings or notes.
type PassageOptions struct {
	Format          PassageFormat
	IncludeHeadings bool
	IncludeNotes    bool
}

// ListLanguagesOptions are the optional inputs of ListLanguages.
type ListLanguagesOptions struct {
	PageOptions
	Country string
}

// ListLicensesOptions are the optional inputs of ListLicenses.
type ListLicensesOptions struct {
	AllAvailable bool
}

// OrganizationOptions localize organization responses.
type OrganizationOptions struct {
	// AcceptLanguage is sent as the Accept-Language header.
	AcceptLanguage string
}

func (o *OrganizationOptions) header() http.Header {
	if o == nil || o.AcceptLanguage == "" {
		return nil
	}
	return http.Header{"Accept-Language": []string{o.AcceptLanguage}}
}

// splitRanges turns "en, de" into ["en" "de"].
func splitRanges(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		// Let the server report the empty range.
		out = []string{s}
	}
	return out
}
