package followup

import (
	"errors"
	"slices"
	"sync"

	"github.com/ethanbaker/symptomchat/pkg/sdk"
)

// Placeholder is the disabled first entry of a dropdown
const Placeholder = "Select an option"

// Kind is the declared shape of a rendered follow-up
type Kind int

const (
	KindDropdown    Kind = iota // Single choice
	KindCheckboxes              // Zero or more choices
	KindText                    // Free text, Enter submits
	KindFinal                   // Assessment complete, no inputs
	KindUnsupported             // Unknown ui_hint, prompt only
)

func (k Kind) String() string {
	switch k {
	case KindDropdown:
		return "dropdown"
	case KindCheckboxes:
		return "checkboxes"
	case KindText:
		return "text"
	case KindFinal:
		return "final"
	default:
		return "unsupported"
	}
}

var (
	ErrFormClosed     = errors.New("follow-up has been superseded")
	ErrWrongKind      = errors.New("operation does not apply to this follow-up")
	ErrUnknownOption  = errors.New("option is not offered by this follow-up")
	ErrNotInteractive = errors.New("follow-up has no inputs")
)

// Form holds the state of one rendered follow-up question
type Form struct {
	mu sync.Mutex

	prompt  string
	kind    Kind
	options []string

	selected int    // Dropdown index, -1 while the placeholder is shown
	checked  []bool // Checkbox state by option index
	text     string // Free-text field contents
	closed   bool
}

// Build constructs the affordance declared by fu. It returns nil when fu is nil.
func Build(fu *sdk.FollowUp) *Form {
	if fu == nil {
		return nil
	}

	f := &Form{prompt: fu.Text, selected: -1}
	if fu.Final {
		f.kind = KindFinal
		f.closed = true
		return f
	}

	switch fu.UIHint {
	case sdk.HintDropdown:
		f.kind = KindDropdown
		f.options = uniqueOptions(fu.Options)
	case sdk.HintCheckboxes:
		f.kind = KindCheckboxes
		f.options = uniqueOptions(fu.Options)
		f.checked = make([]bool, len(f.options))
	case sdk.HintText:
		f.kind = KindText
	default:
		f.kind = KindUnsupported
	}

	return f
}

// uniqueOptions drops repeated option values so each renders once
func uniqueOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if !slices.Contains(out, opt) {
			out = append(out, opt)
		}
	}
	return out
}

func (f *Form) Prompt() string { return f.prompt }
func (f *Form) Kind() Kind     { return f.kind }

// Options returns the choices in render order
func (f *Form) Options() []string {
	return append([]string(nil), f.options...)
}

// Interactive reports whether the form still accepts input and submission
func (f *Form) Interactive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interactive()
}

func (f *Form) interactive() bool {
	if f.closed {
		return false
	}
	return f.kind == KindDropdown || f.kind == KindCheckboxes || f.kind == KindText
}

// Close marks the form superseded; its inputs are no longer reachable
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Closed reports whether the form was superseded or is terminal
func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// guard checks the form is open and of kind k. Caller holds mu.
func (f *Form) guard(k Kind) error {
	if f.closed {
		return ErrFormClosed
	}
	if f.kind != k {
		return ErrWrongKind
	}
	return nil
}

// Select picks a dropdown option by value, replacing any previous choice
func (f *Form) Select(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindDropdown); err != nil {
		return err
	}

	i := slices.Index(f.options, value)
	if i < 0 {
		return ErrUnknownOption
	}
	f.selected = i
	return nil
}

// SelectIndex picks a dropdown option by its zero-based position
func (f *Form) SelectIndex(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindDropdown); err != nil {
		return err
	}
	if i < 0 || i >= len(f.options) {
		return ErrUnknownOption
	}
	f.selected = i
	return nil
}

// Selected returns the chosen dropdown value; false while the placeholder is shown
func (f *Form) Selected() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.kind != KindDropdown || f.selected < 0 {
		return "", false
	}
	return f.options[f.selected], true
}

// SetChecked sets the state of the checkbox for value
func (f *Form) SetChecked(value string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindCheckboxes); err != nil {
		return err
	}

	i := slices.Index(f.options, value)
	if i < 0 {
		return ErrUnknownOption
	}
	f.checked[i] = on
	return nil
}

// CheckIndex sets the state of the checkbox at the zero-based position
func (f *Form) CheckIndex(i int, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindCheckboxes); err != nil {
		return err
	}
	if i < 0 || i >= len(f.options) {
		return ErrUnknownOption
	}
	f.checked[i] = on
	return nil
}

// Toggle flips the checkbox for value
func (f *Form) Toggle(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindCheckboxes); err != nil {
		return err
	}

	i := slices.Index(f.options, value)
	if i < 0 {
		return ErrUnknownOption
	}
	f.checked[i] = !f.checked[i]
	return nil
}

// Checked returns the checked values in option order
func (f *Form) Checked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for i, on := range f.checked {
		if on {
			out = append(out, f.options[i])
		}
	}
	return out
}

// SetText replaces the free-text field contents
func (f *Form) SetText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(KindText); err != nil {
		return err
	}
	f.text = text
	return nil
}

// Text returns the raw free-text field contents
func (f *Form) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}
