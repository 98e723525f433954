package stubserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethanbaker/symptomchat/pkg/dialogue"
	"github.com/ethanbaker/symptomchat/pkg/followup"
	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"github.com/ethanbaker/symptomchat/pkg/session"
	"github.com/ethanbaker/symptomchat/pkg/transcript"
	"github.com/ethanbaker/symptomchat/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, script *Script) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := New(script)
	return srv, srv.Engine(utils.NewConfig(nil))
}

func post(t *testing.T, engine *gin.Engine, path string, body any) (int, sdk.ChatResponse) {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	var resp sdk.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	_, engine := newTestEngine(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
}

func TestChatValidation(t *testing.T) {
	_, engine := newTestEngine(t, nil)

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), msgInvalidRequest)
	})

	t.Run("underage", func(t *testing.T) {
		age := 15
		code, resp := post(t, engine, "/chat", sdk.NewInputRequest("u1", "headache", &age, "female"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, msgUnderage, resp.Message)
		assert.Equal(t, msgUnderageDetail, resp.ErrorMessage)
		assert.Nil(t, resp.FollowUp)
	})

	t.Run("no payload", func(t *testing.T) {
		code, resp := post(t, engine, "/chat", map[string]any{"user_id": "u1"})

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, msgNoPayload, resp.Message)
	})

	t.Run("answer without question", func(t *testing.T) {
		_, resp := post(t, engine, "/chat", sdk.NewAnswerRequest("fresh", []string{"Yes"}))
		assert.Equal(t, msgNoQuestion, resp.Message)
	})
}

func TestChatInterview(t *testing.T) {
	srv, engine := newTestEngine(t, nil)
	script := DefaultScript()

	_, resp := post(t, engine, "/chat", sdk.NewInputRequest("u1", "I have a headache", nil, ""))
	require.NotNil(t, resp.FollowUp)
	assert.Equal(t, script.Questions[0].Text, resp.FollowUp.Text)
	assert.Equal(t, sdk.HintDropdown, resp.FollowUp.UIHint)
	assert.True(t, resp.FollowUp.IsBinary)
	assert.Contains(t, resp.Message, sdk.DeviceNotice)
	require.NotNil(t, resp.SmartwatchData)
	assert.Equal(t, sdk.Reading("N/A"), resp.SmartwatchData.SpO2)

	// Unknown option leaves the question pending
	_, resp = post(t, engine, "/chat", sdk.NewAnswerRequest("u1", []string{"Maybe"}))
	assert.Equal(t, msgBadAnswer, resp.Message)

	_, resp = post(t, engine, "/chat", sdk.NewAnswerRequest("u1", []string{"yes"}))
	require.NotNil(t, resp.FollowUp)
	assert.Equal(t, sdk.HintCheckboxes, resp.FollowUp.UIHint)

	_, resp = post(t, engine, "/chat", sdk.NewAnswerRequest("u1", []string{"Cough", "Sore throat"}))
	require.NotNil(t, resp.FollowUp)
	assert.Equal(t, sdk.HintText, resp.FollowUp.UIHint)

	_, resp = post(t, engine, "/chat", sdk.NewFreeTextRequest("u1", "three days"))
	require.NotNil(t, resp.FollowUp)
	assert.True(t, resp.FollowUp.Final)
	assert.Contains(t, resp.Message, script.FinalMessage)

	// A concluded interview starts over
	assert.Empty(t, srv.Evidence("u1"))
	_, resp = post(t, engine, "/chat", sdk.NewAnswerRequest("u1", []string{"Yes"}))
	assert.Equal(t, msgNoQuestion, resp.Message)
}

func TestChatWithDevice(t *testing.T) {
	script := DefaultScript()
	script.DeviceAvailable = true
	script.Readings = Readings{SpO2: 97, HeartRate: 72}
	_, engine := newTestEngine(t, script)

	_, resp := post(t, engine, "/chat", sdk.NewInputRequest("u1", "cough", nil, ""))
	assert.NotContains(t, resp.Message, sdk.DeviceNotice)
	require.NotNil(t, resp.SmartwatchData)
	assert.Equal(t, sdk.Reading("97"), resp.SmartwatchData.SpO2)
	assert.Equal(t, sdk.Reading("72"), resp.SmartwatchData.HeartRate)
}

func TestReset(t *testing.T) {
	srv, engine := newTestEngine(t, nil)

	post(t, engine, "/chat", sdk.NewInputRequest("u1", "fever", nil, ""))
	require.NotEmpty(t, srv.Evidence("u1"))

	code, resp := post(t, engine, "/reset", sdk.ResetRequest{UserID: "u1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, DefaultScript().ResetMessage, resp.Message)
	assert.Empty(t, srv.Evidence("u1"))

	code, _ = post(t, engine, "/reset", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSymptoms(t *testing.T) {
	t.Run("listed", func(t *testing.T) {
		_, engine := newTestEngine(t, nil)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/symptoms", nil))

		var resp sdk.SymptomsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, resp.Symptoms, "headache")
	})

	t.Run("empty", func(t *testing.T) {
		_, engine := newTestEngine(t, &Script{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/symptoms", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFeedback(t *testing.T) {
	_, engine := newTestEngine(t, nil)

	code, resp := post(t, engine, "/feedback", sdk.FeedbackRequest{UserID: "u1", Feedback: "helpful"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgFeedbackThanks, resp.Message)

	code, resp = post(t, engine, "/feedback", sdk.FeedbackRequest{UserID: "u1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgFeedbackNeeds, resp.Message)
}

func TestHealthData(t *testing.T) {
	srv, engine := newTestEngine(t, nil)

	temp, sys, dia := 38.5, 150, 95
	code, resp := post(t, engine, "/health_data", sdk.HealthDataRequest{
		UserID:                 "u1",
		Temperature:            &temp,
		BloodPressureSystolic:  &sys,
		BloodPressureDiastolic: &dia,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgHealthData, resp.Message)
	assert.Equal(t, []string{"fever", "high blood pressure"}, srv.Evidence("u1"))

	normal := 36.6
	post(t, engine, "/health_data", sdk.HealthDataRequest{UserID: "u2", Temperature: &normal})
	assert.Empty(t, srv.Evidence("u2"))
}

func TestEditProfile(t *testing.T) {
	_, engine := newTestEngine(t, nil)

	_, resp := post(t, engine, "/edit_profile", sdk.ProfileRequest{UserID: "u1", Age: 40, Sex: "female"})
	assert.Equal(t, msgProfile, resp.Message)

	_, resp = post(t, engine, "/edit_profile", sdk.ProfileRequest{UserID: "u1", Age: 12, Sex: "female"})
	assert.Equal(t, msgUnderageDetail, resp.ErrorMessage)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device_available: true
readings:
  sp02: 98
  heart_rate: 64
questions:
  - text: Are you short of breath?
    ui_hint: dropdown
    options: ["Yes", "No", "Don't know"]
`), 0o600))

	script, err := LoadScript(path)
	require.NoError(t, err)

	assert.True(t, script.DeviceAvailable)
	assert.Equal(t, 98.0, script.Readings.SpO2)
	require.Len(t, script.Questions, 1)
	assert.Equal(t, DefaultScript().FinalMessage, script.FinalMessage)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestDialogueAgainstStub drives the controller through a whole interview over HTTP
func TestDialogueAgainstStub(t *testing.T) {
	_, engine := newTestEngine(t, nil)
	ts := httptest.NewServer(engine)
	defer ts.Close()

	sess, err := session.New("e2e", session.NewStaticProfile(session.Profile{}))
	require.NoError(t, err)

	ctrl := dialogue.New(sess, sdk.NewClient(ts.URL), nil)
	ctx := context.Background()

	require.NoError(t, ctrl.SubmitInitial(ctx, "I feel unwell"))
	assert.True(t, ctrl.DeviceAlert())

	form := ctrl.Active()
	require.NotNil(t, form)
	require.Equal(t, followup.KindDropdown, form.Kind())
	require.NoError(t, form.Select("No"))
	require.NoError(t, ctrl.Submit(ctx))

	form = ctrl.Active()
	require.NotNil(t, form)
	require.Equal(t, followup.KindCheckboxes, form.Kind())
	require.NoError(t, form.SetChecked("Runny nose", true))
	require.NoError(t, ctrl.Submit(ctx))

	form = ctrl.Active()
	require.NotNil(t, form)
	require.Equal(t, followup.KindText, form.Kind())
	require.NoError(t, form.SetText("  two days "))
	require.NoError(t, ctrl.Submit(ctx))

	assert.Nil(t, ctrl.Active())
	last, ok := ctrl.Transcript().Last()
	require.True(t, ok)
	assert.Equal(t, transcript.KindSensor, last.Kind())
	assert.Equal(t, "SpO2: N/A%, Heart Rate: N/A bpm", last.Text())

	var sawFinal bool
	for _, e := range ctrl.Transcript().Entries() {
		if e.Kind() == transcript.KindFinal {
			sawFinal = true
			assert.Equal(t, sdk.FinalMarker, e.Text())
		}
		assert.NotContains(t, e.Text(), sdk.DeviceNotice)
	}
	assert.True(t, sawFinal)

	require.NoError(t, ctrl.Reset(ctx))
	entries := ctrl.Transcript().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultScript().ResetMessage, entries[0].Text())
}
