package detour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForm() *Form {
	return NewForm(FuelData{PriceOnRoad: 1.699, PriceOffRoad: 1.599, LitersToRefuel: 25, ConsumptionKmL: 18}, nil)
}

func TestNewForm(t *testing.T) {
	f := NewForm(FuelData{PriceOnRoad: 1.699, PriceOffRoad: 1.599, LitersToRefuel: 25, ConsumptionKmL: 18},
		map[Field]float64{LitersToRefuel: 5, ConsumptionKmL: -1})

	assert.True(t, f.Valid())
	assert.Equal(t, "1,699", f.Text(PriceOnRoad))
	assert.Equal(t, "25", f.Text(LitersToRefuel))
	assert.Equal(t, 0.001, f.Step(PriceOffRoad))
	assert.Equal(t, 5.0, f.Step(LitersToRefuel))
	assert.Equal(t, 0.5, f.Step(ConsumptionKmL))
	assert.Len(t, f.Series(), 101)
}

func TestForm_SetText(t *testing.T) {
	f := newTestForm()

	require.True(t, f.SetText(LitersToRefuel, "40,5"))
	assert.Equal(t, 40.5, f.Value(LitersToRefuel))
	assert.Equal(t, "40,5", f.Text(LitersToRefuel))

	require.False(t, f.SetText(LitersToRefuel, "4a"))
	require.False(t, f.SetText(LitersToRefuel, "1.000,5"))
	assert.Equal(t, "40,5", f.Text(LitersToRefuel))
	assert.Equal(t, 40.5, f.Value(LitersToRefuel))

	require.False(t, f.SetText(Field("tank"), "3"))
}

func TestForm_IntermediateTextCountsAsZero(t *testing.T) {
	for _, text := range []string{"", "-", ".", ","} {
		f := newTestForm()
		require.True(t, f.SetText(ConsumptionKmL, text), "text %q", text)
		assert.Equal(t, text, f.Text(ConsumptionKmL))
		assert.Zero(t, f.Value(ConsumptionKmL))
		assert.Equal(t, IssueNotPositive, f.Issue(ConsumptionKmL))
		assert.False(t, f.Valid())
		assert.Empty(t, f.Series())
	}
}

func TestForm_Blur(t *testing.T) {
	f := newTestForm()
	require.True(t, f.SetText(PriceOffRoad, "1.55"))
	assert.Equal(t, "1.55", f.Text(PriceOffRoad))
	f.Blur(PriceOffRoad)
	assert.Equal(t, "1,55", f.Text(PriceOffRoad))

	require.True(t, f.SetText(LitersToRefuel, "-"))
	f.Blur(LitersToRefuel)
	assert.Equal(t, "0", f.Text(LitersToRefuel))
}

func TestForm_OnRoadEditRevalidatesOffRoad(t *testing.T) {
	f := newTestForm()

	require.True(t, f.SetText(PriceOnRoad, "1,5"))
	assert.Equal(t, IssueNone, f.Issue(PriceOnRoad))
	assert.Equal(t, IssueNotLower, f.Issue(PriceOffRoad))
	assert.False(t, f.Valid())

	require.True(t, f.SetText(PriceOnRoad, "1,65"))
	assert.Equal(t, IssueNone, f.Issue(PriceOffRoad))
	assert.True(t, f.Valid())
}

func TestForm_OffRoadAgainstOnRoad(t *testing.T) {
	f := newTestForm()

	require.True(t, f.SetText(PriceOffRoad, "1,699"))
	assert.Equal(t, IssueNotLower, f.Issue(PriceOffRoad))

	require.True(t, f.SetText(PriceOffRoad, "1,698"))
	assert.Equal(t, IssueNone, f.Issue(PriceOffRoad))
}

func TestForm_SetValue(t *testing.T) {
	f := newTestForm()
	f.SetValue(ConsumptionKmL, 18.5)

	assert.Equal(t, 18.5, f.Value(ConsumptionKmL))
	assert.Equal(t, "18,5", f.Text(ConsumptionKmL))
	assert.True(t, f.Valid())

	errs := f.Errors()
	errs[ConsumptionKmL] = IssueInvalid
	assert.Equal(t, IssueNone, f.Issue(ConsumptionKmL))
}

func TestForm_ApplyPrice(t *testing.T) {
	f := newTestForm()
	require.True(t, f.SetText(PriceOffRoad, "2"))
	require.Equal(t, IssueNotLower, f.Issue(PriceOffRoad))

	require.NoError(t, f.ApplyPrice("1,629 €/l"))
	assert.Equal(t, 1.629, f.Value(PriceOnRoad))
	assert.Equal(t, 1.629, f.Value(PriceOffRoad))
	assert.Equal(t, "1,629", f.Text(PriceOnRoad))
	assert.Equal(t, IssueNone, f.Issue(PriceOnRoad))
	assert.Equal(t, IssueNone, f.Issue(PriceOffRoad))
	assert.Zero(t, f.Result().SavingsEuro)

	err := f.ApplyPrice("not available")
	require.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 1.629, f.Value(PriceOnRoad))
}
