// Package translations holds the user facing strings in every supported
// language.
package translations

import (
	"github.com/rubiojr/fueldetour/internal/detour"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Translations contains all text strings for the application
type Translations struct {
	Tag language.Tag

	// Validation messages
	InvalidValue   string
	MustBePositive string
	MustBeLower    string

	// Collaborator status messages
	PermissionDenied string
	Timeout          string
	Unsupported      string
	ParseFailure     string
	GenericFailure   string

	// Field labels
	PriceOnRoad    string
	PriceOffRoad   string
	LitersToRefuel string
	ConsumptionKmL string

	// Result labels
	Savings         string
	CostPerKm       string
	ExtraKms        string
	MaxOneWay       string
	BreakEven       string
	NetGain         string
	TotalDistance   string
	FixErrors       string
	OutOfRange      string
	Province        string
	Sources         string
	StationsWithin  string
	NoStationsFound string

	// Advice
	AdviceNoSavings  string
	AdviceSavings    string
	AdviceRange      string
	AdviceShortTrip  string
	AdviceLongTrip   string
	AdviceReportName string
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) Translations {
	switch GetLanguage(lang) {
	case "en":
		return GetEnglishTranslations()
	default:
		return GetSpanishTranslations()
	}
}

// GetLanguage normalizes a language name, defaults to Spanish
func GetLanguage(lang string) string {
	switch lang {
	case "en", "english":
		return "en"
	default:
		return "es"
	}
}

// Printer formats numbers the way the language writes them, e.g. 2,50
// in Spanish.
func (t Translations) Printer() *message.Printer {
	return message.NewPrinter(t.Tag)
}

// Issue returns the message for a validation issue, empty when valid.
func (t Translations) Issue(issue detour.Issue) string {
	switch issue {
	case detour.IssueInvalid:
		return t.InvalidValue
	case detour.IssueNotPositive:
		return t.MustBePositive
	case detour.IssueNotLower:
		return t.MustBeLower
	}
	return ""
}

// Failure returns the status message shown for a failed collaborator.
func (t Translations) Failure(kind detour.FailureKind) string {
	switch kind {
	case detour.FailurePermissionDenied:
		return t.PermissionDenied
	case detour.FailureTimeout:
		return t.Timeout
	case detour.FailureUnsupported:
		return t.Unsupported
	case detour.FailureParse:
		return t.ParseFailure
	}
	return t.GenericFailure
}

// Field returns the label of an input field.
func (t Translations) Field(f detour.Field) string {
	switch f {
	case detour.PriceOnRoad:
		return t.PriceOnRoad
	case detour.PriceOffRoad:
		return t.PriceOffRoad
	case detour.LitersToRefuel:
		return t.LitersToRefuel
	case detour.ConsumptionKmL:
		return t.ConsumptionKmL
	}
	return string(f)
}

// Messages renders validation issues as field → message, leaving out
// valid fields.
func (t Translations) Messages(errs detour.Errors) map[detour.Field]string {
	out := make(map[detour.Field]string)
	for field, issue := range errs {
		if msg := t.Issue(issue); msg != "" {
			out[field] = msg
		}
	}
	return out
}
