package youversion

// Page is one page of a collection. Data keeps server order. The client
// never follows NextPageToken on its own; pass it back through the options
// of the same call to get the next page.
type Page[T any] struct {
	Data          []T     `json:"data" validate:"required,dive"`
	NextPageToken *string `json:"next_page_token,omitempty"`
	TotalCount    *int    `json:"total_count,omitempty"`
}

// HasNext reports whether the server announced another page.
func (p Page[T]) HasNext() bool {
	return p.NextPageToken != nil && *p.NextPageToken != ""
}

// NextToken returns the continuation token or "".
func (p Page[T]) NextToken() string {
	if p.NextPageToken == nil {
		return ""
	}
	return *p.NextPageToken
}

// Len returns the number of items on this page.
func (p Page[T]) Len() int { return len(p.Data) }
