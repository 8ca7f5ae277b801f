package youversion

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PandaWhoCodes/youversion/internal/fakeapi"
	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(testKey, WithBaseURL("not a url"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "youversion: new client")
}

func TestClient_RequestHeaders(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.GetVersion(context.Background(), 111)
	require.NoError(t, err)

	last, ok := fake.Last()
	require.True(t, ok)
	assert.Equal(t, testKey, last.Header.Get(fakeapi.AppKeyHeader))
	assert.Equal(t, "youversion-go/"+ClientVersion, last.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", last.Header.Get("Accept"))
}

func TestClient_GetVersion(t *testing.T) {
	c, _ := newTestClient(t)

	res, err := c.GetVersion(context.Background(), 111)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	v := res.Value()
	assert.Equal(t, "NIV", v.Abbreviation)
	assert.Equal(t, "en", v.LanguageTag)
	require.NotNil(t, v.CopyrightShort)
}

func TestClient_GetVersion_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	res, err := c.GetVersion(context.Background(), 999999999)
	require.NoError(t, err, "a missing version is not an infrastructure failure")
	require.True(t, res.IsFailure())

	var nf apierr.NotFoundError
	require.True(t, errors.As(res.Err(), &nf))
	assert.Equal(t, apierr.ResourceVersion, nf.Resource)
	assert.Equal(t, "999999999", nf.Identifier)
	assert.Equal(t, "Bible version 999999999 not found", nf.Error())
	assert.True(t, apierr.IsNotFound(res.Err()))
}

func TestClient_GetVerse_MatchesListing(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	verses, err := c.ListVerses(ctx, 111, "JHN", 3)
	require.NoError(t, err)
	require.True(t, verses.IsSuccess())
	require.NotZero(t, verses.Value().Len())

	for _, v := range verses.Value().Data {
		n, err := ParseLocator(v.PassageID)
		require.NoError(t, err)

		res, err := c.GetVerse(ctx, 111, n.Book, n.Chapter, n.Verse)
		require.NoError(t, err)
		require.True(t, res.IsSuccess(), "verse %s", v.PassageID)
		assert.Equal(t, VerseLocator(n.Book, n.Chapter, n.Verse), res.Value().PassageID)
	}
}

func TestClient_GetVerse_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	res, err := c.GetVerse(context.Background(), 111, "JHN", 3, 99)
	require.NoError(t, err)
	var nf apierr.NotFoundError
	require.True(t, errors.As(res.Err(), &nf))
	assert.Equal(t, apierr.ResourceVerse, nf.Resource)
	assert.Equal(t, "JHN.3.99", nf.Identifier)
}

func TestClient_GetChapter_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	res, err := c.GetChapter(context.Background(), 111, "GEN", 50)
	require.NoError(t, err)
	var nf apierr.NotFoundError
	require.True(t, errors.As(res.Err(), &nf))
	assert.Equal(t, apierr.ResourceChapter, nf.Resource)
	assert.Equal(t, "GEN.50", nf.Identifier)
}

func TestClient_GetBook(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.GetBook(ctx, 111, "GEN")
	require.NoError(t, err)
	b := res.Value()
	assert.Equal(t, CanonOldTestament, b.Canon)
	require.NotNil(t, b.Intro)
	assert.Equal(t, "GEN.INTRO1", b.Intro.PassageID)
	assert.Len(t, b.Chapters, 3)

	res, err = c.GetBook(ctx, 111, "XYZ")
	require.NoError(t, err)
	var nf apierr.NotFoundError
	require.True(t, errors.As(res.Err(), &nf))
	assert.Equal(t, apierr.ResourceBook, nf.Resource)
	assert.Equal(t, "XYZ", nf.Identifier)
}

func TestClient_ListBooks_Canon(t *testing.T) {
	c, fake := newTestClient(t)

	res, err := c.ListBooks(context.Background(), 111, &ListBooksOptions{Canon: CanonDeuterocanon})
	require.NoError(t, err)
	require.Equal(t, 1, res.Value().Len())
	assert.Equal(t, "TOB", res.Value().Data[0].ID)

	last, _ := fake.Last()
	assert.Equal(t, "deuterocanon", last.Query.Get("canon"))
}

func TestClient_DailySelection(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.GetDailySelection(ctx, 999)
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	var ve apierr.ValidationError
	require.True(t, errors.As(res.Err(), &ve))
	assert.Equal(t, "day", ve.Field)
	assert.NotEmpty(t, ve.Reason)

	res, err = c.GetDailySelection(ctx, 1)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, 1, res.Value().Day)
	assert.True(t, IsLocator(res.Value().PassageID))

	all, err := c.ListDailySelections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 366, all.Value().Len())
	assert.Nil(t, all.Value().NextPageToken)
}

func TestClient_GetPassage_RangePassthrough(t *testing.T) {
	c, fake := newTestClient(t)

	res, err := c.GetPassage(context.Background(), 111, "GEN.1.1-3", nil)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "GEN.1.1-3", res.Value().ID)

	last, _ := fake.Last()
	assert.Equal(t, "/v1/bibles/111/passages/GEN.1.1-3", last.Path)
	assert.Equal(t, "text", last.Query.Get("format"))
	assert.Equal(t, "false", last.Query.Get("include_headings"))
	assert.Equal(t, "false", last.Query.Get("include_notes"))
}

func TestClient_GetPassage_Options(t *testing.T) {
	c, fake := newTestClient(t)

	res, err := c.GetPassage(context.Background(), 111, "JHN.3.16", &PassageOptions{Format: FormatHTML, IncludeHeadings: true})
	require.NoError(t, err)
	assert.Contains(t, res.Value().Content, "<")

	last, _ := fake.Last()
	assert.Equal(t, "html", last.Query.Get("format"))
	assert.Equal(t, "true", last.Query.Get("include_headings"))
}

func TestClient_GetPassage_InvalidLocator(t *testing.T) {
	c, _ := newTestClient(t)

	res, err := c.GetPassage(context.Background(), 111, "john 3:16", nil)
	require.NoError(t, err)
	var ve apierr.ValidationError
	require.True(t, errors.As(res.Err(), &ve))
	assert.Equal(t, "usfm", ve.Field)
}

func TestClient_ListVersions(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	res, err := c.ListVersions(ctx, "en, de", nil)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, 4, res.Value().Len())
	assert.Nil(t, res.Value().NextPageToken)

	last, _ := fake.Last()
	assert.Equal(t, []string{"en", "de"}, last.Query["language_ranges[]"])

	res, err = c.ListVersions(ctx, "en_!!", nil)
	require.NoError(t, err)
	var ve apierr.ValidationError
	require.True(t, errors.As(res.Err(), &ve))
	assert.Equal(t, "language_ranges", ve.Field)
}

func TestClient_ListVersions_Pages(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	opts := &ListVersionsOptions{PageOptions: PageOptions{PageSize: Size(2)}}
	var ids []int
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10)
		res, err := c.ListVersions(ctx, "*", opts)
		require.NoError(t, err)
		page := res.Value()
		require.NotNil(t, page.TotalCount)
		assert.Equal(t, 5, *page.TotalCount)
		for _, v := range page.Data {
			ids = append(ids, v.ID)
		}
		if !page.HasNext() {
			break
		}
		opts.PageToken = page.NextToken()
	}
	assert.Equal(t, []int{111, 1, 206, 51, 380}, ids)
}

func TestClient_ListVersions_Fields(t *testing.T) {
	c, fake := newTestClient(t)

	res, err := c.ListVersions(context.Background(), "en", &ListVersionsOptions{
		PageOptions: PageOptions{PageSize: PageSizeAll, Fields: []string{"abbreviation"}},
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	for _, v := range res.Value().Data {
		assert.NotZero(t, v.ID)
		assert.NotEmpty(t, v.Abbreviation)
		assert.Empty(t, v.Title)
	}

	last, _ := fake.Last()
	assert.Equal(t, "*", last.Query.Get("page_size"))
	assert.Equal(t, []string{"abbreviation"}, last.Query["fields[]"])
}

func TestClient_Languages(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.ListLanguages(ctx, &ListLanguagesOptions{Country: "DE"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Value().Len())
	assert.Equal(t, "de", res.Value().Data[0].ID)

	lang, err := c.GetLanguage(ctx, "he")
	require.NoError(t, err)
	assert.Equal(t, RightToLeft, lang.Value().TextDirection)

	lang, err = c.GetLanguage(ctx, "xx")
	require.NoError(t, err)
	assert.True(t, apierr.IsNotFound(lang.Err()))
}

func TestClient_ListLicenses(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	res, err := c.ListLicenses(ctx, 111, "dev-42", nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Value().Len())
	lic := res.Value().Data[0]
	assert.Equal(t, biblicaID, lic.OrganizationID.String())
	require.NotNil(t, lic.AgreedAt)
	assert.Equal(t, 2025, lic.AgreedAt.Year())

	res, err = c.ListLicenses(ctx, 51, "dev-42", &ListLicensesOptions{AllAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value().Len())
	last, _ := fake.Last()
	assert.Equal(t, "true", last.Query.Get("all_available"))
}

func TestClient_Organizations(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	res, err := c.ListOrganizations(ctx, 111, &OrganizationOptions{AcceptLanguage: "de"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Value().Len())
	assert.Equal(t, "Biblica übersetzt und veröffentlicht die Bibel.", res.Value().Data[0].Description)
	last, _ := fake.Last()
	assert.Equal(t, "de", last.Header.Get("Accept-Language"))

	org, err := c.GetOrganization(ctx, ebibleID, nil)
	require.NoError(t, err)
	require.NotNil(t, org.Value().ParentOrganizationID)
	assert.Equal(t, biblicaID, org.Value().ParentOrganizationID.String())

	versions, err := c.ListOrganizationVersions(ctx, ebibleID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, versions.Value().Len())

	missing, err := c.GetOrganization(ctx, "00000000-0000-0000-0000-000000000000", nil)
	require.NoError(t, err)
	var nf apierr.NotFoundError
	require.True(t, errors.As(missing.Err(), &nf))
	assert.Equal(t, apierr.ResourceOrganization, nf.Resource)
}

// Every status either fills the Result or returns an error, never both.
// outcome reduces a call to its tag, domain error and infrastructure error.
type outcome struct {
	tag  result.Tag
	derr apierr.DomainError
	err  error
}

func outcomeOf[T any](res result.Result[T], err error) outcome {
	o := outcome{tag: res.Tag(), err: err}
	if res.IsFailure() {
		o.derr = res.Err()
	}
	return o
}

func TestClient_StatusClassification(t *testing.T) {
	const orgID = "05a9aa40-5a4d-4e4b-a5c2-1a8b3f1c5e21"

	endpoints := []struct {
		name string
		path string
		call func(context.Context, *Client) outcome
		// domain maps the statuses this endpoint interprets.
		domain map[int]apierr.Kind
	}{
		{
			name: "GetPassage",
			path: "/v1/bibles/111/passages/JHN.3.16",
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.GetPassage(ctx, 111, "JHN.3.16", nil))
			},
			domain: map[int]apierr.Kind{http.StatusBadRequest: apierr.KindInvalidInput, http.StatusNotFound: apierr.KindNotFound},
		},
		{
			name: "GetVersion",
			path: "/v1/bibles/111",
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.GetVersion(ctx, 111))
			},
			domain: map[int]apierr.Kind{http.StatusNotFound: apierr.KindNotFound},
		},
		{
			name: "ListVersions",
			path: "/v1/bibles",
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.ListVersions(ctx, "en", nil))
			},
			domain: map[int]apierr.Kind{http.StatusBadRequest: apierr.KindInvalidInput},
		},
		{
			name: "GetDailySelection",
			path: "/v1/verse_of_the_days/1",
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.GetDailySelection(ctx, 1))
			},
			domain: map[int]apierr.Kind{http.StatusBadRequest: apierr.KindInvalidInput},
		},
		{
			name: "ListLicenses",
			path: "/v1/licenses",
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.ListLicenses(ctx, 111, "dev", nil))
			},
		},
		{
			name: "GetOrganization",
			path: "/v1/organizations/" + orgID,
			call: func(ctx context.Context, c *Client) outcome {
				return outcomeOf(c.GetOrganization(ctx, orgID, nil))
			},
			domain: map[int]apierr.Kind{http.StatusNotFound: apierr.KindNotFound},
		},
	}
	statuses := []struct {
		status int
		header map[string]string
		infra  apierr.Kind
	}{
		{status: http.StatusBadRequest},
		{status: http.StatusUnauthorized, infra: apierr.KindAuth},
		{status: http.StatusNotFound},
		{status: http.StatusTooManyRequests, header: map[string]string{"Retry-After": "2.5"}, infra: apierr.KindRateLimited},
		{status: http.StatusInternalServerError, infra: apierr.KindServer},
		{status: http.StatusBadGateway, infra: apierr.KindServer},
		{status: http.StatusServiceUnavailable, infra: apierr.KindServer},
	}

	for _, ep := range endpoints {
		for _, st := range statuses {
			t.Run(ep.name+"/"+strconv.Itoa(st.status), func(t *testing.T) {
				c, fake := newTestClient(t)
				fake.Fail(ep.path, fakeapi.Failure{Status: st.status, Body: `{"message":"forced"}`, Header: st.header})

				got := ep.call(context.Background(), c)

				if kind, ok := ep.domain[st.status]; ok {
					require.NoError(t, got.err)
					require.Equal(t, result.TagFailure, got.tag)
					assert.Equal(t, kind, got.derr.Kind())
					assert.Equal(t, kind, apierr.KindOf(got.derr))
					return
				}

				require.Error(t, got.err)
				assert.Equal(t, result.TagNone, got.tag, "result must be empty when an error is returned")
				assert.False(t, apierr.IsDomain(got.err))
				if st.infra != apierr.KindUnknown {
					assert.Equal(t, st.infra, apierr.KindOf(got.err))
					return
				}
				var se *apierr.StatusError
				require.ErrorAs(t, got.err, &se)
				assert.Equal(t, st.status, se.StatusCode)
				assert.Equal(t, "forced", se.Message)
				assert.Equal(t, apierr.KindUnexpectedStatus, apierr.KindOf(got.err))
			})
		}
	}
}

func TestClient_RateLimitRetryAfter(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Fail("/v1/bibles/111", fakeapi.Failure{Status: 429, Header: map[string]string{"Retry-After": "2.5"}})

	_, err := c.GetVersion(context.Background(), 111)
	var rl *apierr.RateLimitError
	require.ErrorAs(t, err, &rl)
	d, ok := rl.RetryAfterDuration()
	require.True(t, ok)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestClient_UnhandledStatus(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Fail("/v1/bibles/111", fakeapi.Failure{Status: http.StatusConflict, Body: `{"message":"busy"}`})

	res, err := c.GetVersion(context.Background(), 111)
	var se *apierr.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "busy", se.Message)
	assert.Equal(t, result.TagNone, res.Tag())
}

func TestClient_AuthFailure(t *testing.T) {
	_, url := startFake(t)
	c, err := New("wrong-key", testOptions(url)...)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetVersion(context.Background(), 111)
	assert.True(t, apierr.IsAuth(err))
	assert.True(t, apierr.IsInfrastructure(err))
}

func TestClient_Timeout(t *testing.T) {
	_, url := startFake(t, fakeapi.WithLatency(500*time.Millisecond))
	c, err := New(testKey, testOptions(url, WithTimeout(50*time.Millisecond))...)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetVersion(context.Background(), 111)
	var ce *apierr.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Timeout())
}

func TestClient_ConnectionRefused(t *testing.T) {
	c, err := New(testKey, testOptions("http://127.0.0.1:1")...)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetVersion(context.Background(), 111)
	assert.True(t, apierr.IsConnection(err))
}

func TestClient_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetVersion(ctx, 111)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apierr.KindCanceled, apierr.KindOf(err))
}

func TestClient_Close(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.GetVersion(context.Background(), 111)
	assert.ErrorIs(t, err, apierr.ErrClosed)
}

func TestClient_DecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong type", `{"id":"one hundred"}`},
		{"fails validation", `{"id":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestClient(t)
			fake.Fail("/v1/bibles/111", fakeapi.Failure{Status: 200, Body: tt.body})

			res, err := c.GetVersion(context.Background(), 111)
			var de *apierr.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "Version", de.Target)
			assert.True(t, apierr.IsDecode(err))
			assert.Equal(t, result.TagNone, res.Tag())
		})
	}
}
