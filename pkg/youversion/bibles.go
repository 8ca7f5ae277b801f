package youversion

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// ListVersions lists the versions available for languageRanges, a BCP-47
// language range such as "en" or "en-*". Several ranges may be given
// separated by commas. A malformed range yields ValidationError on
// "language_ranges".
func (c *Client) ListVersions(ctx context.Context, languageRanges string, opts *ListVersionsOptions) (result.Result[Page[Version]], error) {
	q := url.Values{"language_ranges[]": splitRanges(languageRanges)}
	if opts != nil {
		if opts.LicenseID != "" {
			q.Set("license_id", opts.LicenseID)
		}
		opts.PageOptions.apply(q)
	}
	return fetch[Page[Version]](ctx, c, call{
		path:   "/v1/bibles",
		query:  q,
		domain: invalidOn("language_ranges", "Invalid language range format"),
	})
}

// GetVersion fetches one version.
func (c *Client) GetVersion(ctx context.Context, id int) (result.Result[Version], error) {
	sid := strconv.Itoa(id)
	return fetch[Version](ctx, c, call{
		path:   versionPath(id),
		domain: notFoundOn(apierr.ResourceVersion, sid, fmt.Sprintf("Bible version %d not found", id)),
	})
}

// ListBooks lists the books of a version, optionally restricted to one canon.
func (c *Client) ListBooks(ctx context.Context, versionID int, opts *ListBooksOptions) (result.Result[Page[Book]], error) {
	q := url.Values{}
	if opts != nil {
		if opts.Canon != "" {
			q.Set("canon", string(opts.Canon))
		}
		opts.PageOptions.apply(q)
	}
	return fetch[Page[Book]](ctx, c, call{
		path:   versionPath(versionID) + "/books",
		query:  q,
		domain: notFoundOn(apierr.ResourceVersion, strconv.Itoa(versionID), fmt.Sprintf("Bible version %d not found", versionID)),
	})
}

// GetBook fetches one book by its USFM code, e.g. "GEN".
func (c *Client) GetBook(ctx context.Context, versionID int, book string) (result.Result[Book], error) {
	return fetch[Book](ctx, c, call{
		path:   bookPath(versionID, book),
		domain: notFoundOn(apierr.ResourceBook, book, fmt.Sprintf("Book %s not found in version %d", book, versionID)),
	})
}

// ListChapters lists the chapters of a book.
func (c *Client) ListChapters(ctx context.Context, versionID int, book string) (result.Result[Page[Chapter]], error) {
	return fetch[Page[Chapter]](ctx, c, call{
		path:   bookPath(versionID, book) + "/chapters",
		domain: notFoundOn(apierr.ResourceBook, book, fmt.Sprintf("Book %s not found", book)),
	})
}

// GetChapter fetches one chapter. A miss is reported as NotFound on
// "chapter" with identifier "BOOK.N".
func (c *Client) GetChapter(ctx context.Context, versionID int, book string, chapter int) (result.Result[Chapter], error) {
	return fetch[Chapter](ctx, c, call{
		path:   chapterPath(versionID, book, chapter),
		domain: notFoundOn(apierr.ResourceChapter, ChapterLocator(book, chapter), fmt.Sprintf("Chapter %s %d not found", book, chapter)),
	})
}

// ListVerses lists the verses of a chapter.
func (c *Client) ListVerses(ctx context.Context, versionID int, book string, chapter int) (result.Result[Page[Verse]], error) {
	return fetch[Page[Verse]](ctx, c, call{
		path:   chapterPath(versionID, book, chapter) + "/verses",
		domain: notFoundOn(apierr.ResourceChapter, ChapterLocator(book, chapter), fmt.Sprintf("Chapter %s %d not found", book, chapter)),
	})
}

// GetVerse fetches the metadata of one verse. A miss is reported as
// NotFound on "verse" with identifier "BOOK.C.V".
func (c *Client) GetVerse(ctx context.Context, versionID int, book string, chapter, verse int) (result.Result[Verse], error) {
	return fetch[Verse](ctx, c, call{
		path:   fmt.Sprintf("%s/verses/%d", chapterPath(versionID, book, chapter), verse),
		domain: notFoundOn(apierr.ResourceVerse, VerseLocator(book, chapter, verse), fmt.Sprintf("Verse %s %d:%d not found", book, chapter, verse)),
	})
}

// GetPassage fetches rendered content for locator, e.g. "JHN.3.16" or
// "GEN.1.1-3". The locator is sent as given; the server decides whether it
// is valid and answers ValidationError on "usfm" when it is not.
func (c *Client) GetPassage(ctx context.Context, versionID int, locator string, opts *PassageOptions) (result.Result[Passage], error) {
	format, headings, notes := FormatText, false, false
	if opts != nil {
		if opts.Format != "" {
			format = opts.Format
		}
		headings, notes = opts.IncludeHeadings, opts.IncludeNotes
	}
	q := url.Values{
		"format":           {string(format)},
		"include_headings": {strconv.FormatBool(headings)},
		"include_notes":    {strconv.FormatBool(notes)},
	}
	return fetch[Passage](ctx, c, call{
		path:  fmt.Sprintf("%s/passages/%s", versionPath(versionID), url.PathEscape(locator)),
		query: q,
		domain: firstOf(
			notFoundOn(apierr.ResourcePassage, locator, fmt.Sprintf("Passage %s not found", locator)),
			invalidOn("usfm", "Invalid USFM format"),
		),
	})
}

func versionPath(id int) string {
	return "/v1/bibles/" + strconv.Itoa(id)
}

func bookPath(versionID int, book string) string {
	return versionPath(versionID) + "/books/" + url.PathEscape(book)
}

func chapterPath(versionID int, book string, chapter int) string {
	return fmt.Sprintf("%s/chapters/%d", bookPath(versionID, book), chapter)
}
