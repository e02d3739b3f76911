package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/repeat"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/urfave/cli/v2"
)

func pressCommand() *cli.Command {
	return &cli.Command{
		Name:  "press",
		Usage: "Hold a stepper button and print every update",
		Flags: append(inputFlags(),
			&cli.StringFlag{
				Name:  "field",
				Usage: "Field to step (on, off, liters, consumption)",
				Value: "liters",
			},
			&cli.BoolFlag{
				Name:  "down",
				Usage: "Hold the decrement button",
			},
			&cli.DurationFlag{
				Name:  "hold",
				Usage: "How long the button is held",
				Value: time.Second,
			},
		),
		Action: pressAction,
	}
}

func pressAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := translations.GetTranslations(cfg.Lang)

	form, err := formFromFlags(c, cfg, t)
	if err != nil {
		return err
	}

	field, ok := fieldByFlag(c.String("field"))
	if !ok {
		return fmt.Errorf("unknown field %q", c.String("field"))
	}

	direction := repeat.Increment
	if c.Bool("down") {
		direction = repeat.Decrement
	}

	var (
		mu      sync.Mutex
		updates int
	)
	start := time.Now()
	ctrl := repeat.New(cfg.RepeatTiming(), repeat.SystemScheduler{},
		func() float64 {
			mu.Lock()
			defer mu.Unlock()
			return form.Value(field)
		},
		func(v float64) {
			mu.Lock()
			defer mu.Unlock()
			form.SetValue(field, v)
			updates++
			fmt.Printf("%6dms  %-8s %s\n", time.Since(start).Milliseconds(), form.Text(field), t.Issue(form.Issue(field)))
		},
	)

	fmt.Printf("%s: %s %s for %s\n", t.Field(field), direction, detour.FormatDisplay(form.Step(field)), c.Duration("hold"))
	ctrl.Press(direction, form.Step(field))
	time.Sleep(c.Duration("hold"))
	ctrl.Release()

	mu.Lock()
	defer mu.Unlock()
	fmt.Printf("%d updates, final value %s\n", updates, form.Text(field))
	return nil
}

func fieldByFlag(name string) (detour.Field, bool) {
	for _, f := range fieldFlags {
		if f.name == name {
			return f.field, true
		}
	}
	return "", false
}
