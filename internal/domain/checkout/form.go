// Package checkout holds the checkout form draft: field values, per-field
// validation, and debounced persistence of the draft to local device storage.
package checkout

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/velamoda/storefront/internal/storage"
)

// Field names a checkout form field.
type Field string

const (
	FieldFullName   Field = "fullName"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldAddress    Field = "address"
	FieldCity       Field = "city"
	FieldCountry    Field = "country"
	FieldCardNumber Field = "cardNumber"
	FieldCardHolder Field = "cardHolder"
	FieldExpMonth   Field = "expMonth"
	FieldExpYear    Field = "expYear"
	FieldCVC        Field = "cvc"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldFullName, FieldEmail, FieldPhone,
	FieldAddress, FieldCity, FieldCountry,
	FieldCardNumber, FieldCardHolder, FieldExpMonth, FieldExpYear, FieldCVC,
}

// Values is the draft payload persisted to local storage. Field names match
// the browser client's saved draft so either client can restore it.
type Values struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardName"`
	ExpMonth   string `json:"expMonth"`
	ExpYear    string `json:"expYear"`
	CVC        string `json:"cvv"`
}

// defaultValues returns the initial draft for a fresh checkout.
func defaultValues() Values {
	return Values{Country: "México"}
}

// DefaultDebounce is the delay between the last field change and the draft
// write.
const DefaultDebounce = 300 * time.Millisecond

// Form holds the in-progress checkout draft. Every field mutation goes
// through a typed setter that applies the field's input transform, so the
// stored values are always in display format.
//
// The draft is persisted on a debounce after each change and deleted only on
// a confirmed successful submission, never on failure.
type Form struct {
	mu      sync.Mutex
	values  Values
	touched map[Field]bool

	st       storage.Store
	lg       *zap.Logger
	debounce time.Duration
	timer    *time.Timer
}

// Option configures a Form.
type Option func(*Form)

// WithDebounce overrides the draft persistence debounce.
func WithDebounce(d time.Duration) Option {
	return func(f *Form) { f.debounce = d }
}

// NewForm creates a Form, restoring a persisted draft when one is present and
// parseable. An unparseable draft is discarded with a log line.
func NewForm(st storage.Store, lg *zap.Logger, opts ...Option) *Form {
	f := &Form{
		values:   defaultValues(),
		touched:  make(map[Field]bool),
		st:       st,
		lg:       lg,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.restore()
	return f
}

// Typed setters. A generic set-any-field entry point is deliberately absent.

func (f *Form) SetFullName(v string) { f.set(FieldFullName, v) }
func (f *Form) SetEmail(v string)    { f.set(FieldEmail, v) }
func (f *Form) SetPhone(v string)    { f.set(FieldPhone, v) }
func (f *Form) SetAddress(v string)  { f.set(FieldAddress, v) }
func (f *Form) SetCity(v string)     { f.set(FieldCity, v) }
func (f *Form) SetCountry(v string)  { f.set(FieldCountry, v) }

// SetCardNumber applies the grouping transform: digits only, grouped in
// fours, truncated to 19 characters.
func (f *Form) SetCardNumber(raw string) { f.set(FieldCardNumber, FormatCardNumber(raw)) }

func (f *Form) SetCardHolder(v string) { f.set(FieldCardHolder, v) }

// SetExpMonth clamps complete out-of-range input into 01..12.
func (f *Form) SetExpMonth(raw string) { f.set(FieldExpMonth, ClampExpiryMonth(raw)) }

// SetExpYear keeps two digits, no century inference.
func (f *Form) SetExpYear(raw string) { f.set(FieldExpYear, FormatExpiryYear(raw)) }

// SetCVC keeps at most four digits.
func (f *Form) SetCVC(raw string) { f.set(FieldCVC, FormatCVC(raw)) }

// Touch marks a field as visited so its error becomes displayable.
func (f *Form) Touch(field Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
}

// Touched reports whether the field has been visited.
func (f *Form) Touched(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[field]
}

// Values returns a snapshot of the current draft.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// FieldError returns the validation message for a field, or an empty string
// when the field is valid. Validation is re-evaluated on every call.
func (f *Form) FieldError(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate(field, f.values)
}

// Errors returns the messages for every currently invalid field.
func (f *Form) Errors() map[Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[Field]string)
	for _, field := range Fields {
		if msg := validate(field, f.values); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// Valid reports whether every field passes its rule. Submission must stay
// disabled while this is false.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, field := range Fields {
		if validate(field, f.values) != "" {
			return false
		}
	}
	return true
}

// Flush writes any pending draft immediately, bypassing the debounce.
func (f *Form) Flush() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
	f.persist()
}

// ClearDraft deletes the persisted draft and resets the form to defaults.
// Called only after a confirmed successful submission.
func (f *Form) ClearDraft() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.values = defaultValues()
	f.touched = make(map[Field]bool)
	f.mu.Unlock()

	if f.st == nil {
		return
	}
	if err := f.st.Delete(storage.KeyDraft); err != nil {
		f.lg.Error("delete checkout draft", zap.Error(err))
	}
}

func (f *Form) set(field Field, v string) {
	f.mu.Lock()
	switch field {
	case FieldFullName:
		f.values.FullName = v
	case FieldEmail:
		f.values.Email = v
	case FieldPhone:
		f.values.Phone = v
	case FieldAddress:
		f.values.Address = v
	case FieldCity:
		f.values.City = v
	case FieldCountry:
		f.values.Country = v
	case FieldCardNumber:
		f.values.CardNumber = v
	case FieldCardHolder:
		f.values.CardHolder = v
	case FieldExpMonth:
		f.values.ExpMonth = v
	case FieldExpYear:
		f.values.ExpYear = v
	case FieldCVC:
		f.values.CVC = v
	}
	f.touched[field] = true
	f.scheduleLocked()
	f.mu.Unlock()
}

// scheduleLocked (re)arms the debounce timer. Must hold f.mu.
func (f *Form) scheduleLocked() {
	if f.st == nil {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, f.persist)
}

func (f *Form) persist() {
	if f.st == nil {
		return
	}
	f.mu.Lock()
	data, err := json.Marshal(f.values)
	f.mu.Unlock()
	if err != nil {
		f.lg.Error("encode checkout draft", zap.Error(err))
		return
	}
	if err := f.st.Write(storage.KeyDraft, data); err != nil {
		f.lg.Error("persist checkout draft", zap.Error(err))
	}
}

// restore loads a persisted draft. Absent or unparseable drafts leave the
// defaults in place.
func (f *Form) restore() {
	if f.st == nil {
		return
	}
	data, ok, err := f.st.Read(storage.KeyDraft)
	if err != nil {
		f.lg.Error("read checkout draft", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var v Values
	if err := json.Unmarshal(data, &v); err != nil {
		f.lg.Warn("saved checkout draft is corrupt, starting fresh", zap.Error(err))
		return
	}
	f.values = v
}
