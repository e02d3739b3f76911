package translations

import "golang.org/x/text/language"

// GetSpanishTranslations returns all Spanish text strings
func GetSpanishTranslations() Translations {
	return Translations{
		Tag: language.Spanish,

		// Validation messages
		InvalidValue:   "Valor no válido",
		MustBePositive: "Debe ser mayor que 0",
		MustBeLower:    "Debe ser inferior al precio A",

		// Collaborator status messages
		PermissionDenied: "Permiso de ubicación denegado.",
		Timeout:          "La solicitud ha caducado.",
		Unsupported:      "Geolocalización no soportada.",
		ParseFailure:     "No se pudo interpretar la respuesta.",
		GenericFailure:   "Ocurrió un error desconocido.",

		// Field labels
		PriceOnRoad:    "Precio A (en ruta) €/l",
		PriceOffRoad:   "Precio B (desvío) €/l",
		LitersToRefuel: "Litros a repostar",
		ConsumptionKmL: "Consumo km/l",

		// Result labels
		Savings:         "Ahorro",
		CostPerKm:       "Coste por km",
		ExtraKms:        "Distancia de equilibrio (ida y vuelta)",
		MaxOneWay:       "Desvío máximo (solo ida)",
		BreakEven:       "Equilibrio",
		NetGain:         "Ganancia neta (km)",
		TotalDistance:   "Distancia total del desvío (km)",
		FixErrors:       "Corrige los campos marcados para ver el resultado.",
		OutOfRange:      "Con estos valores el resultado es demasiado grande para mostrarlo.",
		Province:        "Provincia",
		Sources:         "Fuentes",
		StationsWithin:  "estaciones en un radio de",
		NoStationsFound: "No se encontraron gasolineras en un radio de",

		// Advice
		AdviceNoSavings:  "La estación B no es más barata que la A: sigue tu ruta.",
		AdviceSavings:    "Repostar %.0f l en la estación B ahorra %.2f €.",
		AdviceRange:      "El desvío compensa si la estación B está a %.2f km como máximo (%.2f km ida y vuelta).",
		AdviceShortTrip:  "Con tan poco margen, reposta en B solo si está prácticamente de camino.",
		AdviceLongTrip:   "El margen es amplio: un desvío corto a B compensa claramente.",
		AdviceReportName: "Informe de desvío de repostaje",
	}
}
