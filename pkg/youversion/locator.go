package youversion

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// bookCodes is the set of USFM book codes the API uses: the 66 books of the
// protestant canon followed by the deuterocanonical books.
var bookCodes = map[string]Canon{}

func init() {
	for _, b := range []string{
		"GEN", "EXO", "LEV", "NUM", "DEU", "JOS", "JDG", "RUT", "1SA", "2SA",
		"1KI", "2KI", "1CH", "2CH", "EZR", "NEH", "EST", "JOB", "PSA", "PRO",
		"ECC", "SNG", "ISA", "JER", "LAM", "EZK", "DAN", "HOS", "JOL", "AMO",
		"OBA", "JON", "MIC", "NAM", "HAB", "ZEP", "HAG", "ZEC", "MAL",
	} {
		bookCodes[b] = CanonOldTestament
	}
	for _, b := range []string{
		"MAT", "MRK", "LUK", "JHN", "ACT", "ROM", "1CO", "2CO", "GAL", "EPH",
		"PHP", "COL", "1TH", "2TH", "1TI", "2TI", "TIT", "PHM", "HEB", "JAS",
		"1PE", "2PE", "1JN", "2JN", "3JN", "JUD", "REV",
	} {
		bookCodes[b] = CanonNewTestament
	}
	for _, b := range []string{
		"TOB", "JDT", "ESG", "WIS", "SIR", "BAR", "LJE", "S3Y", "SUS", "BEL",
		"1MA", "2MA", "3MA", "4MA",
	} {
		bookCodes[b] = CanonDeuterocanon
	}
}

// IsBookCode reports whether code is a known USFM book code.
func IsBookCode(code string) bool {
	_, ok := bookCodes[code]
	return ok
}

// CanonOf returns the canon a book code belongs to.
func CanonOf(code string) (Canon, bool) {
	c, ok := bookCodes[code]
	return c, ok
}

// ErrInvalidLocator is returned by ParseLocator.
var ErrInvalidLocator = errors.New("invalid passage locator")

var locatorRe = regexp.MustCompile(`^([0-9A-Z]{3})\.([0-9]+)(?:\.([0-9]+)(?:-([0-9]+))?)?$`)

// Locator is a parsed passage locator of the form BOOK.CHAPTER[.VERSE[-VERSE]].
// Verse and EndVerse are zero when absent.
type Locator struct {
	Book     string
	Chapter  int
	Verse    int
	EndVerse int
}

// ParseLocator parses s. The client itself never rejects locators locally;
// this is for callers that want to check input before a call.
func ParseLocator(s string) (Locator, error) {
	m := locatorRe.FindStringSubmatch(s)
	if m == nil {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalidLocator, s)
	}
	if !IsBookCode(m[1]) {
		return Locator{}, fmt.Errorf("%w: unknown book %q", ErrInvalidLocator, m[1])
	}

	l := Locator{Book: m[1]}
	var err error
	if l.Chapter, err = positive(m[2]); err != nil {
		return Locator{}, fmt.Errorf("%w: chapter: %v", ErrInvalidLocator, err)
	}
	if m[3] != "" {
		if l.Verse, err = positive(m[3]); err != nil {
			return Locator{}, fmt.Errorf("%w: verse: %v", ErrInvalidLocator, err)
		}
	}
	if m[4] != "" {
		if l.EndVerse, err = positive(m[4]); err != nil {
			return Locator{}, fmt.Errorf("%w: end verse: %v", ErrInvalidLocator, err)
		}
		if l.EndVerse < l.Verse {
			return Locator{}, fmt.Errorf("%w: range %d-%d is reversed", ErrInvalidLocator, l.Verse, l.EndVerse)
		}
	}
	return l, nil
}

// IsLocator reports whether s is a well-formed passage locator.
func IsLocator(s string) bool {
	_, err := ParseLocator(s)
	return err == nil
}

func (l Locator) String() string {
	switch {
	case l.Verse == 0:
		return fmt.Sprintf("%s.%d", l.Book, l.Chapter)
	case l.EndVerse == 0:
		return fmt.Sprintf("%s.%d.%d", l.Book, l.Chapter, l.Verse)
	default:
		return fmt.Sprintf("%s.%d.%d-%d", l.Book, l.Chapter, l.Verse, l.EndVerse)
	}
}

// ChapterLocator builds "BOOK.N".
func ChapterLocator(book string, chapter int) string {
	return Locator{Book: book, Chapter: chapter}.String()
}

// VerseLocator builds "BOOK.C.V".
func VerseLocator(book string, chapter, verse int) string {
	return Locator{Book: book, Chapter: chapter, Verse: verse}.String()
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
