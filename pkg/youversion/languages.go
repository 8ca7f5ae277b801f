package youversion

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// ListLanguages lists languages, optionally those spoken in one country.
func (c *Client) ListLanguages(ctx context.Context, opts *ListLanguagesOptions) (result.Result[Page[Language]], error) {
	q := url.Values{}
	if opts != nil {
		if opts.Country != "" {
			q.Set("country", opts.Country)
		}
		opts.PageOptions.apply(q)
	}
	return fetch[Page[Language]](ctx, c, call{path: "/v1/languages", query: q})
}

// GetLanguage fetches one language by its BCP-47 tag.
func (c *Client) GetLanguage(ctx context.Context, id string) (result.Result[Language], error) {
	return fetch[Language](ctx, c, call{
		path:   "/v1/languages/" + url.PathEscape(id),
		domain: notFoundOn(apierr.ResourceLanguage, id, fmt.Sprintf("Language %s not found", id)),
	})
}
