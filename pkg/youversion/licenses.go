package youversion

import (
	"context"
	"net/url"
	"strconv"

	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// ListLicenses lists the licenses covering a version for one developer.
func (c *Client) ListLicenses(ctx context.Context, versionID int, developerID string, opts *ListLicensesOptions) (result.Result[Page[License]], error) {
	q := url.Values{
		"bible_id":     {strconv.Itoa(versionID)},
		"developer_id": {developerID},
	}
	if opts != nil && opts.AllAvailable {
		q.Set("all_available", "true")
	}
	return fetch[Page[License]](ctx, c, call{path: "/v1/licenses", query: q})
}
