// Package advice produces the advisory text shown next to the
// calculation. Advisors are external collaborators: a failing advisor
// never affects the computed result.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/translations"
)

// shortTripKm is the one-way margin below which the detour is only worth
// it when the cheaper station is practically on the way.
const shortTripKm = 2.0

// Advisor writes a recommendation for a calculation.
type Advisor interface {
	Advise(ctx context.Context, data detour.FuelData, result detour.Result) (string, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(ctx context.Context, data detour.FuelData, result detour.Result) (string, error)

func (f AdvisorFunc) Advise(ctx context.Context, data detour.FuelData, result detour.Result) (string, error) {
	return f(ctx, data, result)
}

// Local builds the recommendation from the numbers alone.
type Local struct {
	T translations.Translations
}

func (l Local) Advise(ctx context.Context, data detour.FuelData, result detour.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if result.SavingsEuro <= 0 {
		return l.T.AdviceNoSavings, nil
	}

	p := l.T.Printer()
	var b strings.Builder
	b.WriteString(p.Sprintf(l.T.AdviceSavings, data.LitersToRefuel, result.SavingsEuro))
	b.WriteString(" ")
	b.WriteString(p.Sprintf(l.T.AdviceRange, result.MaxOneWayDistance, result.ExtraKms))
	b.WriteString(" ")
	if result.MaxOneWayDistance < shortTripKm {
		b.WriteString(l.T.AdviceShortTrip)
	} else {
		b.WriteString(l.T.AdviceLongTrip)
	}
	return b.String(), nil
}

// Outcome is either the advisory text or the reason it is missing.
type Outcome struct {
	Text    string          `json:"text,omitempty"`
	Failure *detour.Failure `json:"-"`
}

// OK reports whether the advisor produced text.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Status returns the localized failure status, empty on success.
func (o Outcome) Status(t translations.Translations) string {
	if o.Failure == nil {
		return ""
	}
	return t.Failure(o.Failure.Kind)
}

// Request asks advisor for text within timeout (0 for none). Errors and
// panics from the advisor are turned into a failed Outcome.
func Request(ctx context.Context, advisor Advisor, timeout time.Duration, data detour.FuelData, result detour.Result) (out Outcome) {
	if advisor == nil {
		return Outcome{Failure: detour.NewFailure(fmt.Errorf("advice: %w", detour.ErrUnsupported))}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Failure: detour.NewFailure(fmt.Errorf("advisor panic: %v", r))}
		}
	}()

	text, err := advisor.Advise(ctx, data, result)
	if err != nil {
		return Outcome{Failure: detour.NewFailure(fmt.Errorf("advice: %w", err))}
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Failure: detour.NewFailure(errors.New("advice: empty response"))}
	}
	return Outcome{Text: text}
}
