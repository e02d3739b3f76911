package translations

import "golang.org/x/text/language"

// GetEnglishTranslations returns all English text strings
func GetEnglishTranslations() Translations {
	return Translations{
		Tag: language.English,

		// Validation messages
		InvalidValue:   "Invalid value",
		MustBePositive: "Must be greater than 0",
		MustBeLower:    "Must be lower than price A",

		// Collaborator status messages
		PermissionDenied: "Location permission denied.",
		Timeout:          "The request timed out.",
		Unsupported:      "Geolocation not supported.",
		ParseFailure:     "The response could not be read.",
		GenericFailure:   "An unknown error occurred.",

		// Field labels
		PriceOnRoad:    "Price A (on route) €/l",
		PriceOffRoad:   "Price B (detour) €/l",
		LitersToRefuel: "Liters to refuel",
		ConsumptionKmL: "Consumption km/l",

		// Result labels
		Savings:         "Savings",
		CostPerKm:       "Cost per km",
		ExtraKms:        "Break-even distance (round trip)",
		MaxOneWay:       "Maximum one-way detour",
		BreakEven:       "Break-even",
		NetGain:         "Net gain (km)",
		TotalDistance:   "Total detour distance (km)",
		FixErrors:       "Fix the highlighted fields to see the result.",
		OutOfRange:      "These values give a result too large to show.",
		Province:        "Province",
		Sources:         "Sources",
		StationsWithin:  "stations within",
		NoStationsFound: "No fuel stations found within",

		// Advice
		AdviceNoSavings:  "Station B is not cheaper than station A: stay on your route.",
		AdviceSavings:    "Refuelling %.0f l at station B saves %.2f €.",
		AdviceRange:      "The detour pays off while station B is at most %.2f km away (%.2f km there and back).",
		AdviceShortTrip:  "With so little margin, only refuel at B if it is practically on your way.",
		AdviceLongTrip:   "The margin is wide: a short detour to B is clearly worth it.",
		AdviceReportName: "Fuel detour report",
	}
}
