package main

import (
	"fmt"
	"os"

	"github.com/rubiojr/fueldetour/internal/report"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/urfave/cli/v2"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write a PDF report with the net gain chart",
		Flags: append(inputFlags(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file",
				Value:   "fuel-detour.pdf",
			},
		),
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := translations.GetTranslations(cfg.Lang)

	form, err := formFromFlags(c, cfg, t)
	if err != nil {
		return err
	}
	if !form.Valid() {
		return invalidForm(form, t)
	}

	f, err := os.Create(c.String("out"))
	if err != nil {
		return fmt.Errorf("error creating report: %w", err)
	}
	defer f.Close()

	if err := report.Write(f, t, form.Data(), form.Result(), form.Series()); err != nil {
		return err
	}

	fmt.Println("Report written to", c.String("out"))
	return f.Close()
}
