package youversion

import (
	"context"

	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// AsyncClient is the non-blocking counterpart of Client. It has the same
// methods with the same parameters; each starts the call on its own
// goroutine and returns a Future. Await yields exactly what the matching
// Client method would have returned.
//
//	fv := ac.GetVersion(ctx, 111)
//	fp := ac.GetPassage(ctx, 111, "JHN.3.16", nil)
//	v, err := fv.Await(ctx)
//	p, err := fp.Await(ctx)
//
// Calls complete in no particular order.
type AsyncClient struct {
	c *Client
}

// NewAsync creates an AsyncClient with its own connection pool.
func NewAsync(token string, opts ...Option) (*AsyncClient, error) {
	c, err := New(token, opts...)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{c: c}, nil
}

// Close releases pooled connections. Calling it more than once is a no-op.
// Calls still in flight finish with apierr.ErrClosed or their own outcome.
func (a *AsyncClient) Close() error {
	return a.c.Close()
}

// ListVersions is the non-blocking form of Client.ListVersions.
func (a *AsyncClient) ListVersions(ctx context.Context, languageRanges string, opts *ListVersionsOptions) *Future[result.Result[Page[Version]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Version]], error) {
		return a.c.ListVersions(ctx, languageRanges, opts)
	})
}

// GetVersion is the non-blocking form of Client.GetVersion.
func (a *AsyncClient) GetVersion(ctx context.Context, id int) *Future[result.Result[Version]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Version], error) {
		return a.c.GetVersion(ctx, id)
	})
}

// ListBooks is the non-blocking form of Client.ListBooks.
func (a *AsyncClient) ListBooks(ctx context.Context, versionID int, opts *ListBooksOptions) *Future[result.Result[Page[Book]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Book]], error) {
		return a.c.ListBooks(ctx, versionID, opts)
	})
}

// GetBook is the non-blocking form of Client.GetBook.
func (a *AsyncClient) GetBook(ctx context.Context, versionID int, book string) *Future[result.Result[Book]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Book], error) {
		return a.c.GetBook(ctx, versionID, book)
	})
}

// ListChapters is the non-blocking form of Client.ListChapters.
func (a *AsyncClient) ListChapters(ctx context.Context, versionID int, book string) *Future[result.Result[Page[Chapter]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Chapter]], error) {
		return a.c.ListChapters(ctx, versionID, book)
	})
}

// GetChapter is the non-blocking form of Client.GetChapter.
func (a *AsyncClient) GetChapter(ctx context.Context, versionID int, book string, chapter int) *Future[result.Result[Chapter]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Chapter], error) {
		return a.c.GetChapter(ctx, versionID, book, chapter)
	})
}

// ListVerses is the non-blocking form of Client.ListVerses.
func (a *AsyncClient) ListVerses(ctx context.Context, versionID int, book string, chapter int) *Future[result.Result[Page[Verse]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Verse]], error) {
		return a.c.ListVerses(ctx, versionID, book, chapter)
	})
}

// GetVerse is the non-blocking form of Client.GetVerse.
func (a *AsyncClient) GetVerse(ctx context.Context, versionID int, book string, chapter, verse int) *Future[result.Result[Verse]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Verse], error) {
		return a.c.GetVerse(ctx, versionID, book, chapter, verse)
	})
}

// GetPassage is the non-blocking form of Client.GetPassage.
func (a *AsyncClient) GetPassage(ctx context.Context, versionID int, locator string, opts *PassageOptions) *Future[result.Result[Passage]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Passage], error) {
		return a.c.GetPassage(ctx, versionID, locator, opts)
	})
}

// ListLanguages is the non-blocking form of Client.ListLanguages.
func (a *AsyncClient) ListLanguages(ctx context.Context, opts *ListLanguagesOptions) *Future[result.Result[Page[Language]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Language]], error) {
		return a.c.ListLanguages(ctx, opts)
	})
}

// GetLanguage is the non-blocking form of Client.GetLanguage.
func (a *AsyncClient) GetLanguage(ctx context.Context, id string) *Future[result.Result[Language]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Language], error) {
		return a.c.GetLanguage(ctx, id)
	})
}

// ListLicenses is the non-blocking form of Client.ListLicenses.
func (a *AsyncClient) ListLicenses(ctx context.Context, versionID int, developerID string, opts *ListLicensesOptions) *Future[result.Result[Page[License]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[License]], error) {
		return a.c.ListLicenses(ctx, versionID, developerID, opts)
	})
}

// ListOrganizations is the non-blocking form of Client.ListOrganizations.
func (a *AsyncClient) ListOrganizations(ctx context.Context, versionID int, opts *OrganizationOptions) *Future[result.Result[Page[Organization]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Organization]], error) {
		return a.c.ListOrganizations(ctx, versionID, opts)
	})
}

// GetOrganization is the non-blocking form of Client.GetOrganization.
func (a *AsyncClient) GetOrganization(ctx context.Context, id string, opts *OrganizationOptions) *Future[result.Result[Organization]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Organization], error) {
		return a.c.GetOrganization(ctx, id, opts)
	})
}

// ListOrganizationVersions is the non-blocking form of Client.ListOrganizationVersions.
func (a *AsyncClient) ListOrganizationVersions(ctx context.Context, id string, opts *PageOptions) *Future[result.Result[Page[Version]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[Version]], error) {
		return a.c.ListOrganizationVersions(ctx, id, opts)
	})
}

// ListDailySelections is the non-blocking form of Client.ListDailySelections.
func (a *AsyncClient) ListDailySelections(ctx context.Context) *Future[result.Result[Page[DailySelection]]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[Page[DailySelection]], error) {
		return a.c.ListDailySelections(ctx)
	})
}

// GetDailySelection is the non-blocking form of Client.GetDailySelection.
func (a *AsyncClient) GetDailySelection(ctx context.Context, day int) *Future[result.Result[DailySelection]] {
	return spawn(ctx, func(ctx context.Context) (result.Result[DailySelection], error) {
		return a.c.GetDailySelection(ctx, day)
	})
}
