package stubserver

import (
	"fmt"
	"os"

	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"gopkg.in/yaml.v3"
)

// Script is a canned interview played back to every user
type Script struct {
	ResetMessage    string     `yaml:"reset_message"`
	ProgressMessage string     `yaml:"progress_message"`
	FinalMessage    string     `yaml:"final_message"`
	DeviceAvailable bool       `yaml:"device_available"`
	Readings        Readings   `yaml:"readings"`
	Symptoms        []string   `yaml:"symptoms"`
	Questions       []Question `yaml:"questions"`
}

// Readings are the smartwatch values reported when a device is available
type Readings struct {
	SpO2      float64 `yaml:"sp02"`
	HeartRate float64 `yaml:"heart_rate"`
}

// Question is one follow-up of the interview
type Question struct {
	Text    string   `yaml:"text"`
	UIHint  string   `yaml:"ui_hint"`
	Type    string   `yaml:"type"`
	Options []string `yaml:"options"`
}

// FollowUp converts the question to its wire form
func (q Question) FollowUp() *sdk.FollowUp {
	return &sdk.FollowUp{
		Text:     q.Text,
		UIHint:   sdk.UIHint(q.UIHint),
		Options:  append([]string(nil), q.Options...),
		Type:     q.Type,
		IsBinary: len(q.Options) == 3 && q.Options[0] == "Yes" && q.Options[1] == "No",
	}
}

// DefaultScript is used when no script file is configured
func DefaultScript() *Script {
	return &Script{
		ResetMessage:    "Session reset successfully. Start a new diagnosis by entering your symptoms.",
		ProgressMessage: "We are still assessing your condition.",
		FinalMessage:    "Based on your answers, your symptoms are most consistent with a common cold. Rest and stay hydrated; seek care if symptoms worsen.",
		Symptoms:        []string{"headache", "fever", "cough", "sore throat", "fatigue", "nausea"},
		Questions: []Question{
			{Text: "Do you have a fever?", UIHint: "dropdown", Type: "single", Options: []string{"Yes", "No", "Don't know"}},
			{Text: "Which of these symptoms do you also have?", UIHint: "checkboxes", Type: "group_multiple", Options: []string{"Cough", "Sore throat", "Runny nose", "None of these"}},
			{Text: "How long have you had these symptoms?", UIHint: "text", Type: "duration"},
		},
	}
}

// LoadScript reads a YAML script, filling unset messages from DefaultScript
func LoadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	script := &Script{}
	if err := yaml.Unmarshal(b, script); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}

	defaults := DefaultScript()
	if script.ResetMessage == "" {
		script.ResetMessage = defaults.ResetMessage
	}
	if script.ProgressMessage == "" {
		script.ProgressMessage = defaults.ProgressMessage
	}
	if script.FinalMessage == "" {
		script.FinalMessage = defaults.FinalMessage
	}

	return script, nil
}
