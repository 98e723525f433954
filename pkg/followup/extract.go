package followup

import (
	"errors"
	"strings"
)

// Answer is the canonical payload of a follow-up submission
type Answer []string

var (
	ErrNoSelection       = errors.New("no option selected")
	ErrNothingChecked    = errors.New("no option checked")
	ErrEmptyText         = errors.New("answer text is empty")
	ErrUnsupportedPrompt = errors.New("follow-up shape is not supported")
)

// Extract reads the form state and normalizes it into an Answer. A rejected
// form returns an error and must not be submitted.
//
// Dispatch is on the declared kind, in the order single-select, checkboxes, free text.
func Extract(f *Form) (Answer, error) {
	if f == nil {
		return nil, ErrNotInteractive
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed && f.kind != KindFinal {
		return nil, ErrFormClosed
	}

	switch f.kind {
	case KindDropdown:
		if f.selected < 0 {
			return nil, ErrNoSelection
		}
		return Answer{f.options[f.selected]}, nil

	case KindCheckboxes:
		var out Answer
		for i, on := range f.checked {
			if on {
				out = append(out, f.options[i])
			}
		}
		if len(out) == 0 {
			return nil, ErrNothingChecked
		}
		return out, nil

	case KindText:
		text := strings.TrimSpace(f.text)
		if text == "" {
			return nil, ErrEmptyText
		}
		return Answer{text}, nil

	case KindUnsupported:
		return nil, ErrUnsupportedPrompt
	}

	return nil, ErrNotInteractive
}

// IsRejection reports whether err is a local validation rejection from Extract
func IsRejection(err error) bool {
	for _, target := range []error{ErrNoSelection, ErrNothingChecked, ErrEmptyText, ErrUnsupportedPrompt, ErrNotInteractive, ErrFormClosed} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
