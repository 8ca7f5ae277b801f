package fakeapi

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

type version struct {
	ID             int     `json:"id"`
	Abbreviation   string  `json:"abbreviation"`
	Title          string  `json:"title"`
	LanguageTag    string  `json:"language_tag"`
	CopyrightShort *string `json:"copyright_short,omitempty"`
	CopyrightLong  *string `json:"copyright_long,omitempty"`
}

type intro struct {
	ID        string `json:"id"`
	PassageID string `json:"passage_id"`
	Title     string `json:"title"`
}

type book struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	FullTitle    *string `json:"full_title,omitempty"`
	Abbreviation string  `json:"abbreviation"`
	Canon        string  `json:"canon"`
	Intro        *intro  `json:"intro,omitempty"`
	VerseCounts  []int   `json:"verse_counts"`
}

type passage struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
}

type organization struct {
	Fields        map[string]any
	ID            string
	BibleIDs      []int
	DescriptionDE string
}

type license struct {
	Fields    map[string]any
	BibleIDs  []int
	YVPUserID string
}

type dataset struct {
	versions      []version
	books         []book
	passages      map[string]passage
	dailyLocators []string
	languages     []map[string]any
	languageIDs   []string
	orgs          []organization
	licenses      []license
}

func loadDataset() (*dataset, error) {
	var bibles struct {
		Versions      []version `json:"versions"`
		Books         []book    `json:"books"`
		Passages      []passage `json:"passages"`
		DailyLocators []string  `json:"daily_locators"`
	}
	if err := readFixture("bibles.json", &bibles); err != nil {
		return nil, err
	}

	d := &dataset{
		versions:      bibles.Versions,
		books:         bibles.Books,
		passages:      make(map[string]passage, len(bibles.Passages)),
		dailyLocators: bibles.DailyLocators,
	}
	for _, p := range bibles.Passages {
		d.passages[p.ID] = p
	}

	if err := readFixture("languages.json", &d.languages); err != nil {
		return nil, err
	}
	for _, l := range d.languages {
		id, _ := l["id"].(string)
		d.languageIDs = append(d.languageIDs, id)
	}

	var orgs []map[string]any
	if err := readFixture("organizations.json", &orgs); err != nil {
		return nil, err
	}
	for _, o := range orgs {
		org := organization{Fields: o, BibleIDs: intList(o["bible_ids"])}
		org.ID, _ = o["id"].(string)
		org.DescriptionDE, _ = o["description_de"].(string)
		delete(o, "bible_ids")
		delete(o, "description_de")
		d.orgs = append(d.orgs, org)
	}

	var lics []map[string]any
	if err := readFixture("licenses.json", &lics); err != nil {
		return nil, err
	}
	for _, l := range lics {
		lic := license{Fields: l, BibleIDs: intList(l["bible_ids"])}
		lic.YVPUserID, _ = l["yvp_user_id"].(string)
		d.licenses = append(d.licenses, lic)
	}
	return d, nil
}

func readFixture(name string, v any) error {
	b, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}

func intList(v any) []int {
	raw, _ := v.([]any)
	out := make([]int, 0, len(raw))
	for _, x := range raw {
		if f, ok := x.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func (d *dataset) version(id int) (version, bool) {
	for _, v := range d.versions {
		if v.ID == id {
			return v, true
		}
	}
	return version{}, false
}

func (d *dataset) book(code string) (book, bool) {
	for _, b := range d.books {
		if b.ID == code {
			return b, true
		}
	}
	return book{}, false
}

func (d *dataset) org(id string) (organization, bool) {
	for _, o := range d.orgs {
		if o.ID == id {
			return o, true
		}
	}
	return organization{}, false
}

// dailyLocator returns the passage for day of year d, cycling the fixture list.
func (d *dataset) dailyLocator(day int) string {
	return d.dailyLocators[(day-1)%len(d.dailyLocators)]
}
