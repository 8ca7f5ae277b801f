package fakeapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var locatorRe = regexp.MustCompile(`^[0-9A-Z]{3}\.[0-9]+(\.[0-9]+(-[0-9]+)?)?$`)

const daysInYear = 366

func (s *Server) listVersions(c *gin.Context) {
	ranges := c.QueryArray("language_ranges[]")
	if len(ranges) == 0 {
		badRequest(c, "language_ranges[] is required")
		return
	}
	for _, r := range ranges {
		if !languageRangeRe.MatchString(r) {
			badRequest(c, "Invalid language range format")
			return
		}
	}
	p, ok := parsePage(c)
	if !ok {
		return
	}

	var licensed []int
	if id := c.Query("license_id"); id != "" {
		for _, l := range s.data.licenses {
			if lid, _ := l.Fields["id"].(float64); strconv.Itoa(int(lid)) == id {
				licensed = append(licensed, l.BibleIDs...)
			}
		}
		if licensed == nil {
			licensed = []int{}
		}
	}

	var out []version
	for _, v := range s.data.versions {
		if licensed != nil && !slices.Contains(licensed, v.ID) {
			continue
		}
		if slices.ContainsFunc(ranges, func(r string) bool { return matchesRange(v.LanguageTag, r) }) {
			out = append(out, v)
		}
	}
	writePage(c, p, out, toMap[version])
}

// versionParam resolves :id or answers 404.
func (s *Server) versionParam(c *gin.Context) (version, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err == nil {
		if v, ok := s.data.version(id); ok {
			return v, true
		}
	}
	notFound(c, "Bible version %s not found", raw)
	return version{}, false
}

// bookParam resolves :id and :book or answers 404.
func (s *Server) bookParam(c *gin.Context) (book, bool) {
	v, ok := s.versionParam(c)
	if !ok {
		return book{}, false
	}
	b, ok := s.data.book(c.Param("book"))
	if !ok {
		notFound(c, "Book %s not found in version %d", c.Param("book"), v.ID)
		return book{}, false
	}
	return b, true
}

// chapterParam resolves the chapter number against the book's verse counts.
func (s *Server) chapterParam(c *gin.Context) (book, int, bool) {
	b, ok := s.bookParam(c)
	if !ok {
		return book{}, 0, false
	}
	n, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || n < 1 || n > len(b.VerseCounts) {
		notFound(c, "Chapter %s %s not found", b.ID, c.Param("chapter"))
		return book{}, 0, false
	}
	return b, n, true
}

func (s *Server) getVersion(c *gin.Context) {
	if v, ok := s.versionParam(c); ok {
		c.JSON(http.StatusOK, v)
	}
}

func (s *Server) listBooks(c *gin.Context) {
	if _, ok := s.versionParam(c); !ok {
		return
	}
	p, ok := parsePage(c)
	if !ok {
		return
	}
	canon := c.Query("canon")
	var out []book
	for _, b := range s.data.books {
		if canon == "" || b.Canon == canon {
			out = append(out, b)
		}
	}
	writePage(c, p, out, func(b book) any { return bookJSON(b, false) })
}

func (s *Server) getBook(c *gin.Context) {
	if b, ok := s.bookParam(c); ok {
		c.JSON(http.StatusOK, bookJSON(b, true))
	}
}

func (s *Server) listChapters(c *gin.Context) {
	b, ok := s.bookParam(c)
	if !ok {
		return
	}
	writeList(c, seq(len(b.VerseCounts)), func(n int) any { return chapterJSON(b, n, false) })
}

func (s *Server) getChapter(c *gin.Context) {
	if b, n, ok := s.chapterParam(c); ok {
		c.JSON(http.StatusOK, chapterJSON(b, n, true))
	}
}

func (s *Server) listVerses(c *gin.Context) {
	b, n, ok := s.chapterParam(c)
	if !ok {
		return
	}
	writeList(c, seq(b.VerseCounts[n-1]), func(v int) any { return verseJSON(b.ID, n, v) })
}

func (s *Server) getVerse(c *gin.Context) {
	b, n, ok := s.chapterParam(c)
	if !ok {
		return
	}
	v, err := strconv.Atoi(c.Param("verse"))
	if err != nil || v < 1 || v > b.VerseCounts[n-1] {
		notFound(c, "Verse %s %d:%s not found", b.ID, n, c.Param("verse"))
		return
	}
	c.JSON(http.StatusOK, verseJSON(b.ID, n, v))
}

func (s *Server) getPassage(c *gin.Context) {
	if _, ok := s.versionParam(c); !ok {
		return
	}
	loc := c.Param("locator")
	if !locatorRe.MatchString(loc) {
		badRequest(c, "Invalid USFM format: %s", loc)
		return
	}
	p, ok := s.data.passages[loc]
	if !ok {
		notFound(c, "Passage %s not found", loc)
		return
	}

	content := p.Text
	switch c.DefaultQuery("format", "text") {
	case "text":
	case "html":
		content = p.HTML
	default:
		badRequest(c, "format must be text or html")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID, "reference": p.Reference, "content": content})
}

func (s *Server) listLanguages(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}
	country := strings.ToUpper(c.Query("country"))
	var out []map[string]any
	for _, l := range s.data.languages {
		if country == "" || slices.Contains(stringList(l["countries"]), country) {
			out = append(out, l)
		}
	}
	writePage(c, p, out, identity[map[string]any])
}

func (s *Server) getLanguage(c *gin.Context) {
	i := slices.Index(s.data.languageIDs, c.Param("id"))
	if i < 0 {
		notFound(c, "Language %s not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, s.data.languages[i])
}

func (s *Server) listLicenses(c *gin.Context) {
	bibleID, err := strconv.Atoi(c.Query("bible_id"))
	if err != nil {
		badRequest(c, "bible_id is required")
		return
	}
	dev := c.Query("developer_id")
	if dev == "" {
		badRequest(c, "developer_id is required")
		return
	}
	all := c.Query("all_available") == "true"

	var out []license
	for _, l := range s.data.licenses {
		if slices.Contains(l.BibleIDs, bibleID) && (all || l.YVPUserID == dev) {
			out = append(out, l)
		}
	}
	writeList(c, out, func(l license) any { return l.Fields })
}

func (s *Server) listOrganizations(c *gin.Context) {
	bibleID, err := strconv.Atoi(c.Query("bible_id"))
	if err != nil {
		badRequest(c, "bible_id is required")
		return
	}
	lang := c.GetHeader("Accept-Language")
	var out []organization
	for _, o := range s.data.orgs {
		if slices.Contains(o.BibleIDs, bibleID) {
			out = append(out, o)
		}
	}
	writeList(c, out, func(o organization) any { return localized(o, lang) })
}

func (s *Server) orgParam(c *gin.Context) (organization, bool) {
	o, ok := s.data.org(c.Param("id"))
	if !ok {
		notFound(c, "Organization %s not found", c.Param("id"))
	}
	return o, ok
}

func (s *Server) getOrganization(c *gin.Context) {
	if o, ok := s.orgParam(c); ok {
		c.JSON(http.StatusOK, localized(o, c.GetHeader("Accept-Language")))
	}
}

func (s *Server) listOrganizationVersions(c *gin.Context) {
	o, ok := s.orgParam(c)
	if !ok {
		return
	}
	p, ok := parsePage(c)
	if !ok {
		return
	}
	var out []version
	for _, v := range s.data.versions {
		if slices.Contains(o.BibleIDs, v.ID) {
			out = append(out, v)
		}
	}
	writePage(c, p, out, toMap[version])
}

func (s *Server) listDailySelections(c *gin.Context) {
	writeList(c, seq(daysInYear), func(day int) any {
		return gin.H{"day": day, "passage_id": s.data.dailyLocator(day)}
	})
}

func (s *Server) getDailySelection(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > daysInYear {
		badRequest(c, "Day must be between 1 and %d", daysInYear)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "passage_id": s.data.dailyLocator(day)})
}

func bookJSON(b book, withChapters bool) map[string]any {
	m := gin.H{
		"id":           b.ID,
		"title":        b.Title,
		"abbreviation": b.Abbreviation,
		"canon":        b.Canon,
	}
	if b.FullTitle != nil {
		m["full_title"] = *b.FullTitle
	}
	if b.Intro != nil {
		m["intro"] = b.Intro
	}
	if withChapters {
		chapters := make([]any, 0, len(b.VerseCounts))
		for _, n := range seq(len(b.VerseCounts)) {
			chapters = append(chapters, chapterJSON(b, n, false))
		}
		m["chapters"] = chapters
	}
	return m
}

func chapterJSON(b book, n int, withVerses bool) map[string]any {
	m := gin.H{
		"id":         strconv.Itoa(n),
		"passage_id": b.ID + "." + strconv.Itoa(n),
		"title":      strconv.Itoa(n),
	}
	if withVerses {
		verses := make([]any, 0, b.VerseCounts[n-1])
		for v := 1; v <= b.VerseCounts[n-1]; v++ {
			verses = append(verses, verseJSON(b.ID, n, v))
		}
		m["verses"] = verses
	}
	return m
}

func verseJSON(bookID string, chapter, verse int) map[string]any {
	return gin.H{
		"id":         strconv.Itoa(verse),
		"passage_id": bookID + "." + strconv.Itoa(chapter) + "." + strconv.Itoa(verse),
		"title":      strconv.Itoa(verse),
	}
}

// localized copies o's fields, swapping in the German description when asked.
func localized(o organization, acceptLanguage string) map[string]any {
	m := make(map[string]any, len(o.Fields))
	for k, v := range o.Fields {
		m[k] = v
	}
	if strings.HasPrefix(strings.ToLower(acceptLanguage), "de") && o.DescriptionDE != "" {
		m["description"] = o.DescriptionDE
	}
	return m
}

// seq returns 1..n.
func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// toMap renders v as a generic JSON object so fields[] can narrow it.
func toMap[T any](v T) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return v
	}
	return m
}

func stringList(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, x := range raw {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
