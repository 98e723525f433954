package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethanbaker/symptomchat/pkg/dialogue"
	"github.com/ethanbaker/symptomchat/pkg/followup"
	"github.com/ethanbaker/symptomchat/pkg/session"
)

var (
	ErrBadArgument = errors.New("expected key=value")
	ErrBadPressure = errors.New("blood pressure must look like 120/80")
)

// splitArgs parses "key=value" tokens into a map with lower-cased keys
func splitArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q: %w", arg, ErrBadArgument)
		}
		out[strings.ToLower(key)] = value
	}
	return out, nil
}

// ParseVitals reads "temp=38.2 bp=120/80"
func ParseVitals(args []string) (dialogue.Vitals, error) {
	var v dialogue.Vitals

	kv, err := splitArgs(args)
	if err != nil {
		return v, err
	}

	if raw, ok := kv["temp"]; ok {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("temperature %q is not a number", raw)
		}
		v.Temperature = &t
	}

	if raw, ok := kv["bp"]; ok {
		sys, dia, ok := strings.Cut(raw, "/")
		if !ok {
			return v, ErrBadPressure
		}
		s, err := strconv.Atoi(sys)
		if err != nil {
			return v, ErrBadPressure
		}
		d, err := strconv.Atoi(dia)
		if err != nil {
			return v, ErrBadPressure
		}
		v.Systolic, v.Diastolic = &s, &d
	}

	return v, v.Validate()
}

// ParseProfile reads "age=40 sex=female", starting from the current profile
func ParseProfile(args []string, current session.Profile) (session.Profile, error) {
	p := current

	kv, err := splitArgs(args)
	if err != nil {
		return p, err
	}

	if raw, ok := kv["age"]; ok {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return p, session.ErrInvalidAge
		}
		p.Age = &age
	}

	if raw, ok := kv["sex"]; ok {
		sex, err := session.ParseSex(raw)
		if err != nil {
			return p, err
		}
		p.Sex = sex
	}

	return p, p.Validate()
}

// optionIndex resolves a 1-based number or a case-insensitive option value
func optionIndex(options []string, token string) (int, error) {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > len(options) {
			return 0, fmt.Errorf("%d: %w", n, followup.ErrUnknownOption)
		}
		return n - 1, nil
	}

	for i, opt := range options {
		if strings.EqualFold(opt, token) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", token, followup.ErrUnknownOption)
}

// Fill applies a typed line to form: an option for dropdowns, a comma separated
// list for checkboxes, the raw line for text questions
func Fill(form *followup.Form, line string) error {
	switch form.Kind() {
	case followup.KindDropdown:
		i, err := optionIndex(form.Options(), line)
		if err != nil {
			return err
		}
		return form.SelectIndex(i)

	case followup.KindCheckboxes:
		options := form.Options()
		for i := range options {
			if err := form.CheckIndex(i, false); err != nil {
				return err
			}
		}
		for token := range strings.SplitSeq(line, ",") {
			if strings.TrimSpace(token) == "" {
				continue
			}
			i, err := optionIndex(options, token)
			if err != nil {
				return err
			}
			if err := form.CheckIndex(i, true); err != nil {
				return err
			}
		}
		return nil

	case followup.KindText:
		return form.SetText(line)
	}

	return followup.ErrNotInteractive
}
