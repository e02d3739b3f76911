package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubiojr/fueldetour/internal/advice"
	"github.com/rubiojr/fueldetour/internal/config"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/urfave/cli/v2"
)

// chartEvery is the sampling stride of the printed chart table.
const chartEvery = 10

var fieldFlags = []struct {
	field detour.Field
	name  string
	usage string
}{
	{detour.PriceOnRoad, "on", "Price at the station on your route (€/l)"},
	{detour.PriceOffRoad, "off", "Price at the cheaper station off route (€/l)"},
	{detour.LitersToRefuel, "liters", "Liters to refuel"},
	{detour.ConsumptionKmL, "consumption", "Vehicle consumption (km/l)"},
}

func inputFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(fieldFlags))
	for _, f := range fieldFlags {
		flags = append(flags, &cli.StringFlag{Name: f.name, Usage: f.usage})
	}
	return flags
}

// formFromFlags types every field given on the command line into a form
// seeded with the configured defaults.
func formFromFlags(c *cli.Context, cfg *config.Config, t translations.Translations) (*detour.Form, error) {
	form := cfg.NewForm()
	for _, f := range fieldFlags {
		if !c.IsSet(f.name) {
			continue
		}
		if !form.SetText(f.field, c.String(f.name)) {
			return nil, fmt.Errorf("--%s %q: %s", f.name, c.String(f.name), t.InvalidValue)
		}
		form.Blur(f.field)
	}
	return form, nil
}

func calcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Compute the savings and the break-even detour distance",
		Flags: append(inputFlags(),
			&cli.BoolFlag{
				Name:  "chart",
				Usage: "Print the net gain table",
			},
			&cli.BoolFlag{
				Name:  "advice",
				Usage: "Print a recommendation",
			},
		),
		Action: calcAction,
	}
}

func calcAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := translations.GetTranslations(cfg.Lang)

	form, err := formFromFlags(c, cfg, t)
	if err != nil {
		return err
	}

	printInputs(form, t)
	if !form.Valid() {
		return invalidForm(form, t)
	}

	result := form.Result()
	printResult(result, t)

	if c.Bool("chart") {
		printChart(form.Series(), t)
	}

	if c.Bool("advice") {
		out := advice.Request(context.Background(), advice.Local{T: t}, cfg.Advice.Timeout, form.Data(), result)
		fmt.Println()
		if out.OK() {
			fmt.Println(out.Text)
		} else {
			fmt.Println(out.Status(t))
		}
	}
	return nil
}

func printInputs(form *detour.Form, t translations.Translations) {
	for _, f := range detour.Fields {
		fmt.Printf("%-36s %s\n", t.Field(f)+":", form.Text(f))
	}
	fmt.Println()
}

func printResult(r detour.Result, t translations.Translations) {
	p := t.Printer()
	p.Printf("%-36s %.2f €\n", t.Savings+":", r.SavingsEuro)
	p.Printf("%-36s %.4f €\n", t.CostPerKm+":", r.CostPerKm)
	p.Printf("%-36s %.2f km\n", t.ExtraKms+":", r.ExtraKms)
	p.Printf("%-36s %.2f km\n", t.MaxOneWay+":", r.MaxOneWayDistance)
}

func printChart(series []detour.ChartPoint, t translations.Translations) {
	p := t.Printer()
	fmt.Println()
	p.Printf("%28s  %s\n", t.TotalDistance, t.NetGain)
	for i := 0; i < len(series); i += chartEvery {
		p.Printf("%28.2f  %8.2f\n", series[i].TotalDist, series[i].NetGain)
	}
}

// invalidForm lists the issue of every invalid field.
func invalidForm(form *detour.Form, t translations.Translations) error {
	for _, f := range detour.Fields {
		if msg := t.Issue(form.Issue(f)); msg != "" {
			fmt.Printf("  %s: %s\n", t.Field(f), msg)
		}
	}
	return errors.New(t.FixErrors)
}
