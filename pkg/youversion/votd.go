package youversion

import (
	"context"
	"strconv"

	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// ListDailySelections lists the verse of the day for every day of the year.
func (c *Client) ListDailySelections(ctx context.Context) (result.Result[Page[DailySelection]], error) {
	return fetch[Page[DailySelection]](ctx, c, call{path: "/v1/verse_of_the_days"})
}

// GetDailySelection fetches the verse of the day for day of year 1..366.
// The range is checked by the server, which answers ValidationError on
// "day"; day 366 is always sent.
func (c *Client) GetDailySelection(ctx context.Context, day int) (result.Result[DailySelection], error) {
	return fetch[DailySelection](ctx, c, call{
		path:   "/v1/verse_of_the_days/" + strconv.Itoa(day),
		domain: invalidOn("day", "Day must be between 1 and 366"),
	})
}
