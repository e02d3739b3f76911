package api

import (
	"strconv"
	"strings"
)

// FuelType identifies one of the products priced by the official feed.
type FuelType string

const (
	Gasolina95        FuelType = "gasolina95"
	Gasolina95E10     FuelType = "gasolina95e10"
	Gasolina95Premium FuelType = "gasolina95premium"
	Gasolina98        FuelType = "gasolina98"
	Gasolina98E10     FuelType = "gasolina98e10"
	GasoleoA          FuelType = "gasoleoA"
	GasoleoB          FuelType = "gasoleoB"
	GasoleoPremium    FuelType = "gasoleoPremium"
	Biodiesel         FuelType = "biodiesel"
	Bioetanol         FuelType = "bioetanol"
	GLP               FuelType = "glp"
	GNC               FuelType = "gnc"
	GNL               FuelType = "gnl"
	Hidrogeno         FuelType = "hidrogeno"
)

// FuelTypes lists every product in the order they are usually shown.
var FuelTypes = []FuelType{
	Gasolina95, Gasolina95E10, Gasolina95Premium, Gasolina98, Gasolina98E10,
	GasoleoA, GasoleoB, GasoleoPremium, Biodiesel, Bioetanol,
	GLP, GNC, GNL, Hidrogeno,
}

// ParseFuelType maps user input, including the aliases accepted by the
// search form, to a FuelType. Unknown names map to Gasolina95.
func ParseFuelType(s string) FuelType {
	switch strings.ToLower(s) {
	case "gasolina95", "gasolina95e5":
		return Gasolina95
	case "gasolina95e10":
		return Gasolina95E10
	case "gasolina98", "gasolina98e5":
		return Gasolina98
	case "gasolina98e10":
		return Gasolina98E10
	case "gasolina95premium":
		return Gasolina95Premium
	case "gasoleo", "gasoleoa", "diesel":
		return GasoleoA
	case "gasoleob":
		return GasoleoB
	case "gasoleopremium":
		return GasoleoPremium
	case "biodiesel":
		return Biodiesel
	case "bioetanol":
		return Bioetanol
	case "glp", "gaseslicuados":
		return GLP
	case "gnc", "gasnatural":
		return GNC
	case "gnl", "gasnaturallicuado":
		return GNL
	case "hidrogeno":
		return Hidrogeno
	}
	return Gasolina95
}

// RawPrice returns the price text the feed carries for fuelType.
func (s *GasStation) RawPrice(fuelType FuelType) string {
	switch fuelType {
	case Gasolina95E10:
		return s.PrecioGasolina95E10
	case Gasolina95Premium:
		return s.PrecioGasolina95E5Prem
	case Gasolina98:
		return s.PrecioGasolina98E5
	case Gasolina98E10:
		return s.PrecioGasolina98E10
	case GasoleoA:
		return s.PrecioGasoleoA
	case GasoleoB:
		return s.PrecioGasoleoB
	case GasoleoPremium:
		return s.PrecioGasoleoPremium
	case Biodiesel:
		return s.PrecioBiodiesel
	case Bioetanol:
		return s.PrecioBioetanol
	case GLP:
		return s.PrecioGasesLicuados
	case GNC:
		return s.PrecioGasNaturalComp
	case GNL:
		return s.PrecioGasNaturalLicuado
	case Hidrogeno:
		return s.PrecioHidrogeno
	}
	return s.PrecioGasolina95E5
}

// Price returns the price of fuelType in €/l, 0 when the station does
// not sell it.
func (s *GasStation) Price(fuelType FuelType) float64 {
	return ParsePrice(s.RawPrice(fuelType))
}

// ParsePrice parses a feed price such as "1,599". Empty, "-" or
// malformed values yield 0.
func ParsePrice(priceStr string) float64 {
	priceStr = strings.Replace(strings.TrimSpace(priceStr), ",", ".", 1)
	if priceStr == "" || priceStr == "-" {
		return 0
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0
	}

	return price
}
