package detour

// DefaultSteps are the stepper magnitudes used when none are configured.
var DefaultSteps = map[Field]float64{
	PriceOnRoad:    0.001,
	PriceOffRoad:   0.001,
	LitersToRefuel: 1,
	ConsumptionKmL: 0.5,
}

// Form is the editable state behind the calculator: the input record, the
// raw text of each field and the validation issues. A Form has a single
// owner; manual edits and stepper updates go through the same methods.
type Form struct {
	data   FuelData
	text   map[Field]string
	errors Errors
	steps  map[Field]float64
}

// NewForm returns a Form initialized with data. Missing step magnitudes
// fall back to DefaultSteps.
func NewForm(data FuelData, steps map[Field]float64) *Form {
	f := &Form{
		data:   data,
		text:   make(map[Field]string, len(Fields)),
		errors: ValidateAll(data),
		steps:  make(map[Field]float64, len(Fields)),
	}
	for _, field := range Fields {
		f.text[field] = FormatDisplay(data.Get(field))
		f.steps[field] = DefaultSteps[field]
		if s, ok := steps[field]; ok && s > 0 {
			f.steps[field] = s
		}
	}
	return f
}

// Data returns the current input record.
func (f *Form) Data() FuelData {
	return f.data
}

// Value returns the current numeric value of field.
func (f *Form) Value(field Field) float64 {
	return f.data.Get(field)
}

// Text returns the text shown in field.
func (f *Form) Text(field Field) string {
	return f.text[field]
}

// Step returns the stepper magnitude configured for field.
func (f *Form) Step(field Field) float64 {
	return f.steps[field]
}

// Issue returns the validation issue of field.
func (f *Form) Issue(field Field) Issue {
	return f.errors[field]
}

// Errors returns a copy of the validation issues.
func (f *Form) Errors() Errors {
	out := make(Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Valid reports whether every field passes validation.
func (f *Form) Valid() bool {
	return f.errors.Valid()
}

// SetText applies a keystroke to field. Text outside the numeric input
// pattern is rejected and leaves the form untouched. Accepted text is
// kept verbatim until Blur while its parsed value, 0 when not parseable
// yet, feeds validation and computation.
func (f *Form) SetText(field Field, text string) bool {
	if !field.Valid() || !AcceptsInput(text) {
		return false
	}
	f.text[field] = text
	f.update(field, ParseInput(text))
	return true
}

// SetValue stores v into field, as done by the stepper controls.
func (f *Form) SetValue(field Field, v float64) {
	if !field.Valid() {
		return
	}
	f.text[field] = FormatDisplay(v)
	f.update(field, v)
}

// Blur reformats the text of field to its canonical display form.
func (f *Form) Blur(field Field) {
	if !field.Valid() {
		return
	}
	f.text[field] = FormatDisplay(f.data.Get(field))
}

// ApplyPrice sets both prices to the price found in text and clears
// their issues. Equal prices mean zero savings; the action syncs both
// stations to one reference price.
func (f *Form) ApplyPrice(text string) error {
	price, err := ParsePriceText(text)
	if err != nil {
		return err
	}
	f.data.PriceOnRoad = price
	f.data.PriceOffRoad = price
	f.text[PriceOnRoad] = FormatDisplay(price)
	f.text[PriceOffRoad] = FormatDisplay(price)
	f.errors[PriceOnRoad] = IssueNone
	f.errors[PriceOffRoad] = IssueNone
	return nil
}

// Result computes the metrics for the current record.
func (f *Form) Result() Result {
	return Compute(f.data)
}

// Series returns the chart samples, empty while any field is invalid.
func (f *Form) Series() []ChartPoint {
	return Series(f.Result(), f.Valid())
}

func (f *Form) update(field Field, v float64) {
	f.errors[field] = Validate(field, v, f.data)
	f.data = f.data.With(field, v)
	if field == PriceOnRoad {
		f.errors[PriceOffRoad] = Validate(PriceOffRoad, f.data.PriceOffRoad, f.data)
	}
}
