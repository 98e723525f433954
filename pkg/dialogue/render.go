package dialogue

import (
	"fmt"
	"strings"

	"github.com/ethanbaker/symptomchat/pkg/followup"
	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"github.com/ethanbaker/symptomchat/pkg/transcript"
)

// DeviceNotice is stripped from bot messages and raises the device alert instead
const DeviceNotice = sdk.DeviceNotice

// StripDeviceNotice removes the first occurrence of DeviceNotice, reporting
// whether it was present. The result is always trimmed.
func StripDeviceNotice(message string) (string, bool) {
	found := strings.Contains(message, DeviceNotice)
	return strings.TrimSpace(strings.Replace(message, DeviceNotice, "", 1)), found
}

// FormatReadings renders sensor values, substituting N/A for missing ones
func FormatReadings(data sdk.SmartwatchData) string {
	return fmt.Sprintf("SpO2: %s%%, Heart Rate: %s bpm", data.SpO2, data.HeartRate)
}

// render appends the entries for resp and installs its follow-up. Fields are
// handled in the order message, follow-up, sensor readings, error; absent
// fields are skipped.
func (c *Controller) render(resp *sdk.ChatResponse) {
	if resp == nil {
		return
	}

	if resp.Message != "" {
		text, notice := StripDeviceNotice(resp.Message)
		if notice {
			c.setDeviceAlert(true)
		}
		c.transcript.Append(transcript.KindBot, text)
	}

	if form := followup.Build(resp.FollowUp); form != nil {
		if form.Kind() == followup.KindFinal {
			c.transcript.Append(transcript.KindFinal, form.Prompt())
		} else {
			c.transcript.Append(transcript.KindFollowUp, form.Prompt())
			c.setActive(form)
		}
	}

	if resp.SmartwatchData != nil {
		c.transcript.Append(transcript.KindSensor, FormatReadings(*resp.SmartwatchData))
	}

	if resp.ErrorMessage != "" {
		c.transcript.Append(transcript.KindError, resp.ErrorMessage)
	}
}
