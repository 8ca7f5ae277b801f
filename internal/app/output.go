package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/PandaWhoCodes/youversion/pkg/youversion"
)

// emit prints v as indented JSON, or as the table drawn by rows.
func (a *App) emit(v any, rows func(w io.Writer)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	rows(tw)
	return tw.Flush()
}

func emitOne[T any](a *App, v T, header string, row func(T) string) error {
	return a.emit(v, func(w io.Writer) {
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, row(v))
	})
}

func emitPage[T any](a *App, p youversion.Page[T], header string, row func(T) string) error {
	return a.emit(p, func(w io.Writer) {
		fmt.Fprintln(w, header)
		for _, v := range p.Data {
			fmt.Fprintln(w, row(v))
		}
		if p.TotalCount != nil {
			fmt.Fprintf(w, "\n%d of %d", p.Len(), *p.TotalCount)
			if p.HasNext() {
				fmt.Fprintf(w, ", next page: -token %s", p.NextToken())
			}
			fmt.Fprintln(w)
		} else if p.HasNext() {
			fmt.Fprintf(w, "\nnext page: -token %s\n", p.NextToken())
		}
	})
}

func cols(vs ...string) string { return strings.Join(vs, "\t") }

func opt[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

const (
	versionHeader      = "ID\tABBR\tTITLE\tLANGUAGE"
	bookHeader         = "ID\tTITLE\tCANON\tCHAPTERS"
	chapterHeader      = "ID\tPASSAGE\tTITLE"
	languageHeader     = "ID\tLANGUAGE\tDIRECTION\tCOUNTRIES\tDEFAULT BIBLE"
	licenseHeader      = "ID\tNAME\tVERSION\tBIBLES"
	organizationHeader = "ID\tNAME\tLANGUAGE\tWEBSITE"
	dailyHeader        = "DAY\tPASSAGE"
)

func versionRow(v youversion.Version) string {
	return cols(strconv.Itoa(v.ID), v.Abbreviation, v.Title, v.LanguageTag)
}

func bookRow(b youversion.Book) string {
	chapters := "-"
	if len(b.Chapters) > 0 {
		chapters = strconv.Itoa(len(b.Chapters))
	}
	return cols(b.ID, b.Title, string(b.Canon), chapters)
}

func chapterRow(c youversion.Chapter) string { return cols(c.ID, c.PassageID, c.Title) }

func verseRow(v youversion.Verse) string { return cols(v.ID, v.PassageID, v.Title) }

func languageRow(l youversion.Language) string {
	return cols(l.ID, l.Language, string(l.TextDirection), strings.Join(l.Countries, ","), opt(l.DefaultBibleID))
}

func licenseRow(l youversion.License) string {
	ids := make([]string, len(l.BibleIDs))
	for i, id := range l.BibleIDs {
		ids[i] = strconv.Itoa(id)
	}
	return cols(strconv.Itoa(l.ID), l.Name, strconv.Itoa(l.Version), strings.Join(ids, ","))
}

func organizationRow(o youversion.Organization) string {
	return cols(o.ID.String(), o.Name, o.PrimaryLanguage, o.WebsiteURL)
}

func dailyRow(d youversion.DailySelection) string {
	return cols(strconv.Itoa(d.Day), d.PassageID)
}

// writePassage prints a passage as its reference followed by the content.
func writePassage(w io.Writer, p youversion.Passage) {
	fmt.Fprintln(w, p.Reference)
	fmt.Fprintln(w, p.Content)
}

func (a *App) emitPassage(p youversion.Passage) error {
	return a.emit(p, func(w io.Writer) { writePassage(w, p) })
}
