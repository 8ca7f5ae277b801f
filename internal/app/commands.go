package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PandaWhoCodes/youversion/pkg/result"
	"github.com/PandaWhoCodes/youversion/pkg/youversion"
)

func init() {
	register(command{name: "versions", usage: "[-lang en,de] [-license id] [page flags]", summary: "list Bible versions", run: runVersions})
	register(command{name: "version", usage: "ID", summary: "show one version", run: runVersion})
	register(command{name: "books", usage: "[-version id] [-canon c] [page flags]", summary: "list books of a version", run: runBooks})
	register(command{name: "book", usage: "[-version id] BOOK", summary: "show one book with its chapters", run: runBook})
	register(command{name: "chapters", usage: "[-version id] BOOK", summary: "list chapters of a book", run: runChapters})
	register(command{name: "chapter", usage: "[-version id] BOOK CHAPTER", summary: "show one chapter with its verses", run: runChapter})
	register(command{name: "verses", usage: "[-version id] BOOK CHAPTER", summary: "list verses of a chapter", run: runVerses})
	register(command{name: "verse", usage: "[-version id] BOOK CHAPTER VERSE", summary: "show one verse", run: runVerse})
	register(command{name: "passage", usage: "[-version id] [-format text|html] [-headings] [-notes] LOCATOR", summary: "print scripture text", run: runPassage})
	register(command{name: "languages", usage: "[-country CC] [page flags]", summary: "list languages", run: runLanguages})
	register(command{name: "language", usage: "ID", summary: "show one language", run: runLanguage})
	register(command{name: "licenses", usage: "[-version id] [-all] DEVELOPER_ID", summary: "list licenses for a version", run: runLicenses})
	register(command{name: "orgs", usage: "[-version id] [-lang tag]", summary: "list publishers of a version", run: runOrganizations})
	register(command{name: "org", usage: "[-lang tag] ID", summary: "show one publisher", run: runOrganization})
	register(command{name: "org-versions", usage: "[page flags] ID", summary: "list versions of a publisher", run: runOrganizationVersions})
	register(command{name: "votd", usage: "[-all] [DAY]", summary: "show the verse of the day", run: runDailySelection})
}

type pageFlags struct {
	size   string
	token  string
	fields string
}

func (p *pageFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&p.size, "size", "", "page size, 1-100 or * with at most three fields")
	fs.StringVar(&p.token, "token", "", "page token from a previous page")
	fs.StringVar(&p.fields, "fields", "", "comma separated fields to return")
}

func (p *pageFlags) options() youversion.PageOptions {
	o := youversion.PageOptions{PageSize: youversion.PageSize(p.size), PageToken: p.token}
	for _, f := range strings.Split(p.fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			o.Fields = append(o.Fields, f)
		}
	}
	return o
}

func intArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrUsage, name, s)
	}
	return n, nil
}

func intArgs(names []string, vals []string) ([]int, error) {
	out := make([]int, len(vals))
	for i, v := range vals {
		n, err := intArg(names[i], v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// run executes call with a fresh client and prints the value with print.
func run[T any](ctx context.Context, a *App, call func(context.Context, *youversion.Client) (result.Result[T], error), print func(T) error) error {
	return a.withClient(ctx, func(ctx context.Context, c *youversion.Client) error {
		v, err := fetch(ctx, a, func(ctx context.Context) (result.Result[T], error) {
			return call(ctx, c)
		})
		if err != nil {
			return err
		}
		return print(v)
	})
}

func (a *App) versionFlag(fs *flag.FlagSet) *int {
	return fs.Int("version", a.cfg.Defaults.VersionID, "Bible version id")
}

func runVersions(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("versions")
	lang := fs.String("lang", a.cfg.Defaults.Language, "comma separated language ranges, e.g. en,de or en-*")
	license := fs.String("license", "", "only versions covered by this license")
	var page pageFlags
	page.bind(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	opts := &youversion.ListVersionsOptions{PageOptions: page.options(), LicenseID: *license}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Version]], error) {
		return c.ListVersions(ctx, *lang, opts)
	}, func(p youversion.Page[youversion.Version]) error {
		return emitPage(a, p, versionHeader, versionRow)
	})
}

func runVersion(ctx context.Context, a *App, args []string) error {
	pos, err := parse(newFlagSet("version"), args, 1)
	if err != nil {
		return err
	}
	id, err := intArg("ID", pos[0])
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Version], error) {
		return c.GetVersion(ctx, id)
	}, func(v youversion.Version) error {
		return emitOne(a, v, versionHeader, versionRow)
	})
}

func runBooks(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("books")
	version := a.versionFlag(fs)
	canon := fs.String("canon", "", "old_testament, new_testament or deuterocanon")
	var page pageFlags
	page.bind(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	opts := &youversion.ListBooksOptions{PageOptions: page.options(), Canon: youversion.Canon(*canon)}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Book]], error) {
		return c.ListBooks(ctx, *version, opts)
	}, func(p youversion.Page[youversion.Book]) error {
		return emitPage(a, p, bookHeader, bookRow)
	})
}

func runBook(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("book")
	version := a.versionFlag(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Book], error) {
		return c.GetBook(ctx, *version, strings.ToUpper(pos[0]))
	}, func(b youversion.Book) error {
		return emitOne(a, b, bookHeader, bookRow)
	})
}

func runChapters(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("chapters")
	version := a.versionFlag(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Chapter]], error) {
		return c.ListChapters(ctx, *version, strings.ToUpper(pos[0]))
	}, func(p youversion.Page[youversion.Chapter]) error {
		return emitPage(a, p, chapterHeader, chapterRow)
	})
}

func runChapter(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("chapter")
	version := a.versionFlag(fs)
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	chapter, err := intArg("CHAPTER", pos[1])
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Chapter], error) {
		return c.GetChapter(ctx, *version, strings.ToUpper(pos[0]), chapter)
	}, func(ch youversion.Chapter) error {
		return emitOne(a, ch, chapterHeader, chapterRow)
	})
}

func runVerses(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("verses")
	version := a.versionFlag(fs)
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	chapter, err := intArg("CHAPTER", pos[1])
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Verse]], error) {
		return c.ListVerses(ctx, *version, strings.ToUpper(pos[0]), chapter)
	}, func(p youversion.Page[youversion.Verse]) error {
		return emitPage(a, p, chapterHeader, verseRow)
	})
}

func runVerse(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("verse")
	version := a.versionFlag(fs)
	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}
	n, err := intArgs([]string{"CHAPTER", "VERSE"}, pos[1:])
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Verse], error) {
		return c.GetVerse(ctx, *version, strings.ToUpper(pos[0]), n[0], n[1])
	}, func(v youversion.Verse) error {
		return emitOne(a, v, chapterHeader, verseRow)
	})
}

func (a *App) passageFlags(fs *flag.FlagSet) func() *youversion.PassageOptions {
	format := fs.String("format", a.cfg.Defaults.Format, "text or html")
	headings := fs.Bool("headings", false, "include section headings")
	notes := fs.Bool("notes", false, "include footnotes")
	return func() *youversion.PassageOptions {
		return &youversion.PassageOptions{
			Format:          youversion.PassageFormat(*format),
			IncludeHeadings: *headings,
			IncludeNotes:    *notes,
		}
	}
}

func runPassage(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("passage")
	version := a.versionFlag(fs)
	opts := a.passageFlags(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Passage], error) {
		return c.GetPassage(ctx, *version, pos[0], opts())
	}, a.emitPassage)
}

func runLanguages(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("languages")
	country := fs.String("country", "", "ISO 3166 country code")
	var page pageFlags
	page.bind(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	opts := &youversion.ListLanguagesOptions{PageOptions: page.options(), Country: *country}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Language]], error) {
		return c.ListLanguages(ctx, opts)
	}, func(p youversion.Page[youversion.Language]) error {
		return emitPage(a, p, languageHeader, languageRow)
	})
}

func runLanguage(ctx context.Context, a *App, args []string) error {
	pos, err := parse(newFlagSet("language"), args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Language], error) {
		return c.GetLanguage(ctx, pos[0])
	}, func(l youversion.Language) error {
		return emitOne(a, l, languageHeader, languageRow)
	})
}

func runLicenses(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("licenses")
	version := a.versionFlag(fs)
	all := fs.Bool("all", false, "include licenses not yet agreed to")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.License]], error) {
		return c.ListLicenses(ctx, *version, pos[0], &youversion.ListLicensesOptions{AllAvailable: *all})
	}, func(p youversion.Page[youversion.License]) error {
		return emitPage(a, p, licenseHeader, licenseRow)
	})
}

func runOrganizations(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("orgs")
	version := a.versionFlag(fs)
	lang := fs.String("lang", "", "Accept-Language for localized descriptions")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Organization]], error) {
		return c.ListOrganizations(ctx, *version, &youversion.OrganizationOptions{AcceptLanguage: *lang})
	}, func(p youversion.Page[youversion.Organization]) error {
		return emitPage(a, p, organizationHeader, organizationRow)
	})
}

func runOrganization(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("org")
	lang := fs.String("lang", "", "Accept-Language for localized descriptions")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Organization], error) {
		return c.GetOrganization(ctx, pos[0], &youversion.OrganizationOptions{AcceptLanguage: *lang})
	}, func(o youversion.Organization) error {
		return a.emit(o, func(w io.Writer) {
			fmt.Fprintln(w, organizationHeader)
			fmt.Fprintln(w, organizationRow(o))
			if o.Description != "" {
				fmt.Fprintf(w, "\n%s\n", o.Description)
			}
		})
	})
}

func runOrganizationVersions(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("org-versions")
	var page pageFlags
	page.bind(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	opts := page.options()
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.Version]], error) {
		return c.ListOrganizationVersions(ctx, pos[0], &opts)
	}, func(p youversion.Page[youversion.Version]) error {
		return emitPage(a, p, versionHeader, versionRow)
	})
}

func runDailySelection(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("votd")
	all := fs.Bool("all", false, "list every day of the year")
	pos, err := parse(fs, args, -1)
	if err != nil {
		return err
	}
	if len(pos) > 1 {
		return fmt.Errorf("%w: votd takes at most one DAY", ErrUsage)
	}

	if *all {
		return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.Page[youversion.DailySelection]], error) {
			return c.ListDailySelections(ctx)
		}, func(p youversion.Page[youversion.DailySelection]) error {
			return emitPage(a, p, dailyHeader, dailyRow)
		})
	}

	day := a.now().YearDay()
	if len(pos) == 1 {
		if day, err = intArg("DAY", pos[0]); err != nil {
			return err
		}
	}
	return run(ctx, a, func(ctx context.Context, c *youversion.Client) (result.Result[youversion.DailySelection], error) {
		return c.GetDailySelection(ctx, day)
	}, func(d youversion.DailySelection) error {
		return emitOne(a, d, dailyHeader, dailyRow)
	})
}
