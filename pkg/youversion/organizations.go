package youversion

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// ListOrganizations lists the publishers of a version.
func (c *Client) ListOrganizations(ctx context.Context, versionID int, opts *OrganizationOptions) (result.Result[Page[Organization]], error) {
	return fetch[Page[Organization]](ctx, c, call{
		path:   "/v1/organizations",
		query:  url.Values{"bible_id": {strconv.Itoa(versionID)}},
		header: opts.header(),
	})
}

// GetOrganization fetches one organization. id is sent as given, so a
// malformed UUID is for the server to reject.
func (c *Client) GetOrganization(ctx context.Context, id string, opts *OrganizationOptions) (result.Result[Organization], error) {
	return fetch[Organization](ctx, c, call{
		path:   "/v1/organizations/" + url.PathEscape(id),
		header: opts.header(),
		domain: notFoundOn(apierr.ResourceOrganization, id, fmt.Sprintf("Organization %s not found", id)),
	})
}

// ListOrganizationVersions lists the versions published by an organization.
func (c *Client) ListOrganizationVersions(ctx context.Context, id string, opts *PageOptions) (result.Result[Page[Version]], error) {
	q := url.Values{}
	opts.apply(q)
	return fetch[Page[Version]](ctx, c, call{
		path:   "/v1/organizations/" + url.PathEscape(id) + "/bibles",
		query:  q,
		domain: notFoundOn(apierr.ResourceOrganization, id, fmt.Sprintf("Organization %s not found", id)),
	})
}
