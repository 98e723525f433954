package sdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// FinalMarker is the follow_up value the service sends once the assessment is complete
const FinalMarker = "This is my final assessment based on your symptoms."

// DeviceNotice is appended to messages by the service when the smartwatch has not synced
const DeviceNotice = "**Note:** Fitbit Charge 5 data is unavailable. Please open the Fitbit app and sync your device."

// UIHint names the input affordance a follow-up question asks for
type UIHint string

const (
	HintDropdown   UIHint = "dropdown"
	HintCheckboxes UIHint = "checkboxes"
	HintText       UIHint = "text"
)

var (
	ErrMissingUserID = errors.New("user_id is required")
	ErrNoPayload     = errors.New("chat request carries no input, answer, or free_text")
	ErrMultiPayload  = errors.New("chat request carries more than one payload")
)

/** Requests */

// ChatRequest is the body of POST /chat. Exactly one of Input, Answer and FreeText is set.
type ChatRequest struct {
	UserID string `json:"user_id"`
	Age    *int   `json:"age,omitempty"`
	Sex    string `json:"sex,omitempty"`

	Input    *string  `json:"input,omitempty"`     // Free initial text
	Answer   []string `json:"answer,omitempty"`    // Answer to a structured follow-up
	FreeText *string  `json:"free_text,omitempty"` // Answer to a text-hint follow-up (legacy path)
}

// NewInputRequest builds the initial-message variant, which also carries demographics
func NewInputRequest(userID, text string, age *int, sex string) *ChatRequest {
	return &ChatRequest{UserID: userID, Age: age, Sex: sex, Input: &text}
}

// NewAnswerRequest builds the structured-answer variant
func NewAnswerRequest(userID string, answer []string) *ChatRequest {
	return &ChatRequest{UserID: userID, Answer: append([]string(nil), answer...)}
}

// NewFreeTextRequest builds the legacy free-text variant
func NewFreeTextRequest(userID, text string) *ChatRequest {
	return &ChatRequest{UserID: userID, FreeText: &text}
}

// Validate checks the request carries a user id and exactly one payload variant
func (r *ChatRequest) Validate() error {
	if r.UserID == "" {
		return ErrMissingUserID
	}

	n := 0
	if r.Input != nil {
		n++
	}
	if len(r.Answer) > 0 {
		n++
	}
	if r.FreeText != nil {
		n++
	}

	switch {
	case n == 0:
		return ErrNoPayload
	case n > 1:
		return ErrMultiPayload
	}
	return nil
}

// ResetRequest is the body of POST /reset
type ResetRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// FeedbackRequest is the body of POST /feedback
type FeedbackRequest struct {
	UserID   string `json:"user_id"`
	Feedback string `json:"feedback"`
}

// HealthDataRequest is the body of POST /health_data
type HealthDataRequest struct {
	UserID                 string   `json:"user_id"`
	Temperature            *float64 `json:"temperature,omitempty"`              // Degrees Celsius
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic,omitempty"`  // mmHg
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic,omitempty"` // mmHg
}

// ProfileRequest is the body of POST /edit_profile
type ProfileRequest struct {
	UserID string `json:"user_id"`
	Age    int    `json:"age"`
	Sex    string `json:"sex"`
}

/** Responses */

// ChatResponse is the body returned by /chat, /reset and the profile endpoints.
// Every field is optional.
type ChatResponse struct {
	Message        string          `json:"message,omitempty"`
	FollowUp       *FollowUp       `json:"follow_up,omitempty"`
	SmartwatchData *SmartwatchData `json:"smartwatch_data,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// UnmarshalJSON tolerates the shapes the service uses for follow_up: an object,
// the final marker string, an empty string, or null
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	type alias ChatResponse
	aux := struct {
		*alias
		FollowUp json.RawMessage `json:"follow_up"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.FollowUp = decodeFollowUp(aux.FollowUp)
	return nil
}

// decodeFollowUp maps a raw follow_up value onto a FollowUp, returning nil for "no follow-up"
func decodeFollowUp(raw json.RawMessage) *FollowUp {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil
		}
		// Any other bare string is a prompt without a declared shape
		return &FollowUp{Text: s, Final: s == FinalMarker}
	case '{':
		var fu FollowUp
		if err := json.Unmarshal(raw, &fu); err != nil {
			return nil
		}
		return &fu
	}

	return nil
}

// FollowUp describes the next question, or the final marker when Final is set
type FollowUp struct {
	Text     string   `json:"text"`
	UIHint   UIHint   `json:"ui_hint"`
	Options  []string `json:"options,omitempty"`
	Type     string   `json:"type,omitempty"`      // Question type reported by the service (single, group_multiple, ...)
	IsBinary bool     `json:"is_binary,omitempty"` // Yes/No/Don't know question
	Final    bool     `json:"-"`
}

// NewFinalFollowUp returns the assessment-complete sentinel
func NewFinalFollowUp() *FollowUp {
	return &FollowUp{Text: FinalMarker, Final: true}
}

// MarshalJSON writes the final marker as a bare string, matching the service
func (f FollowUp) MarshalJSON() ([]byte, error) {
	if f.Final {
		return json.Marshal(f.Text)
	}
	type alias FollowUp
	return json.Marshal(alias(f))
}

// SmartwatchData holds the sensor readings attached to a response
type SmartwatchData struct {
	SpO2      Reading `json:"sp02,omitempty"`
	HeartRate Reading `json:"heart_rate,omitempty"`
}

// Reading is a sensor value kept in its textual form. The zero value means the
// reading was missing or falsy (null, 0, "", false).
type Reading string

// NotAvailable is how a missing reading is displayed
const NotAvailable = "N/A"

// NumberReading formats a numeric reading
func NumberReading(v float64) Reading {
	if v == 0 {
		return ""
	}
	return Reading(strconv.FormatFloat(v, 'f', -1, 64))
}

// String returns the reading or N/A when it is missing
func (r Reading) String() string {
	if r == "" {
		return NotAvailable
	}
	return string(r)
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*r = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reading(s)
	default:
		// Numbers are kept by value, so 98.0 and 9.8e1 both read as 98
		if v, err := strconv.ParseFloat(string(data), 64); err == nil {
			*r = NumberReading(v)
			return nil
		}
		*r = Reading(data)
	}
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if v, err := strconv.ParseFloat(string(r), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	return json.Marshal(string(r))
}

// SymptomsResponse is the body returned by GET /symptoms
type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}
