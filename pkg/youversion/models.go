package youversion

import (
	"time"

	"github.com/google/uuid"
)

// Canon classifies a book.
type Canon string

// Canon values.
const (
	CanonOldTestament Canon = "old_testament"
	CanonNewTestament Canon = "new_testament"
	CanonDeuterocanon Canon = "deuterocanon"
)

// Valid reports whether c is one of the three known canons.
func (c Canon) Valid() bool {
	switch c {
	case CanonOldTestament, CanonNewTestament, CanonDeuterocanon:
		return true
	}
	return false
}

// TextDirection is the writing direction of a language.
type TextDirection string

// TextDirection values.
const (
	LeftToRight TextDirection = "ltr"
	RightToLeft TextDirection = "rtl"
)

// PassageFormat selects how passage content is rendered.
type PassageFormat string

// PassageFormat values.
const (
	FormatText PassageFormat = "text"
	FormatHTML PassageFormat = "html"
)

// Models are decoded from response bodies and validated before they are
// returned. List endpoints accept fields[] to narrow the response, so only
// identifiers are required; enumerations and ranges are checked whenever
// the field is present.

// Version is one Bible translation.
type Version struct {
	ID             int     `json:"id" validate:"gt=0"`
	Abbreviation   string  `json:"abbreviation"`
	Title          string  `json:"title"`
	LanguageTag    string  `json:"language_tag"`
	CopyrightShort *string `json:"copyright_short,omitempty"`
	CopyrightLong  *string `json:"copyright_long,omitempty"`
}

// BookIntro is the introductory material of a book.
type BookIntro struct {
	ID        string `json:"id" validate:"required"`
	PassageID string `json:"passage_id" validate:"required"`
	Title     string `json:"title"`
}

// Book is one book within a version.
type Book struct {
	ID           string     `json:"id" validate:"len=3"`
	Title        string     `json:"title"`
	FullTitle    *string    `json:"full_title,omitempty"`
	Abbreviation string     `json:"abbreviation"`
	Canon        Canon      `json:"canon" validate:"omitempty,oneof=old_testament new_testament deuterocanon"`
	Chapters     []Chapter  `json:"chapters,omitempty" validate:"omitempty,dive"`
	Intro        *BookIntro `json:"intro,omitempty"`
}

// Chapter is one chapter of a book.
type Chapter struct {
	ID        string  `json:"id" validate:"required"`
	PassageID string  `json:"passage_id" validate:"locator"`
	Title     string  `json:"title"`
	Verses    []Verse `json:"verses,omitempty" validate:"omitempty,dive"`
}

// Verse is verse metadata. It carries no text; use GetPassage for content.
type Verse struct {
	ID        string `json:"id" validate:"required"`
	PassageID string `json:"passage_id" validate:"locator"`
	Title     string `json:"title"`
}

// Passage is rendered scripture content.
type Passage struct {
	ID        string `json:"id" validate:"locator"`
	Content   string `json:"content"`
	Reference string `json:"reference"`
}

// Language describes a language known to the API.
type Language struct {
	ID                 string            `json:"id" validate:"required"`
	Language           string            `json:"language"`
	Script             *string           `json:"script,omitempty"`
	ScriptName         *string           `json:"script_name,omitempty"`
	Aliases            []string          `json:"aliases"`
	DisplayNames       map[string]string `json:"display_names"`
	Scripts            []string          `json:"scripts"`
	Variants           []string          `json:"variants"`
	Countries          []string          `json:"countries"`
	TextDirection      TextDirection     `json:"text_direction" validate:"omitempty,oneof=ltr rtl"`
	WritingPopulation  int64             `json:"writing_population" validate:"gte=0"`
	SpeakingPopulation int64             `json:"speaking_population" validate:"gte=0"`
	DefaultBibleID     *int              `json:"default_bible_id,omitempty"`
}

// License is a publisher license covering one or more versions.
type License struct {
	ID             int        `json:"id" validate:"gt=0"`
	Name           string     `json:"name"`
	Version        int        `json:"version"`
	OrganizationID uuid.UUID  `json:"organization_id" validate:"required"`
	HTML           string     `json:"html"`
	BibleIDs       []int      `json:"bible_ids"`
	URI            *string    `json:"uri,omitempty"`
	AgreedAt       *time.Time `json:"agreed_dt,omitempty"`
	YVPUserID      string     `json:"yvp_user_id"`
}

// Address is the postal address of an organization.
type Address struct {
	FormattedAddress         string  `json:"formatted_address"`
	PlaceID                  string  `json:"place_id"`
	Latitude                 float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude                float64 `json:"longitude" validate:"gte=-180,lte=180"`
	AdministrativeAreaLevel1 string  `json:"administrative_area_level_1"`
	Locality                 string  `json:"locality"`
	Country                  string  `json:"country"`
}

// Organization is a Bible publisher.
type Organization struct {
	ID                   uuid.UUID  `json:"id" validate:"required"`
	ParentOrganizationID *uuid.UUID `json:"parent_organization_id,omitempty"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Email                *string    `json:"email,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	PrimaryLanguage      string     `json:"primary_language"`
	WebsiteURL           string     `json:"website_url"`
	Address              Address    `json:"address"`
}

// DailySelection is the verse of the day for one day of the year.
type DailySelection struct {
	Day       int    `json:"day" validate:"min=1,max=366"`
	PassageID string `json:"passage_id" validate:"locator"`
}
