package dialogue

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethanbaker/symptomchat/pkg/followup"
	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"github.com/ethanbaker/symptomchat/pkg/session"
	"github.com/ethanbaker/symptomchat/pkg/transcript"
)

// User-facing messages shown when a call fails
const (
	MsgSendFailed     = "Failed to send message. Please try again."
	MsgAnswerFailed   = "Failed to submit answer. Please try again."
	MsgFreeTextFailed = "Failed to submit free text. Please try again."
	MsgResetFailed    = "Failed to reset session. Please try again."
	MsgFeedbackFailed = "Failed to submit feedback. Please try again."
	MsgVitalsFailed   = "Failed to submit health data. Please try again."
	MsgProfileFailed  = "Failed to update profile. Please try again."
)

var (
	ErrBusy             = errors.New("a request is already in flight")
	ErrEmptyInput       = errors.New("message is empty")
	ErrEmptyAnswer      = errors.New("answer is empty")
	ErrNoActiveForm     = errors.New("no follow-up is awaiting an answer")
	ErrIncompleteVitals = errors.New("provide a temperature or both blood pressure values")
)

// Transport is the remote dialogue service
type Transport interface {
	Chat(ctx context.Context, req *sdk.ChatRequest) (*sdk.ChatResponse, error)
	Reset(ctx context.Context, req *sdk.ResetRequest) (*sdk.ChatResponse, error)
	Feedback(ctx context.Context, req *sdk.FeedbackRequest) (*sdk.ChatResponse, error)
	HealthData(ctx context.Context, req *sdk.HealthDataRequest) (*sdk.ChatResponse, error)
	EditProfile(ctx context.Context, req *sdk.ProfileRequest) (*sdk.ChatResponse, error)
	Symptoms(ctx context.Context) ([]string, error)
}

// Options configures a Controller. Every hook is optional.
type Options struct {
	Clock         func() time.Time       // Timestamp source for entries
	OnLoading     func(loading bool)     // Loading indicator toggled
	OnDeviceAlert func(visible bool)     // Device alert shown or dismissed
	OnFollowUp    func(f *followup.Form) // A new follow-up became active
}

// Controller drives one conversation: it owns the transcript, the active
// follow-up, the loading indicator and the device alert.
type Controller struct {
	session    *session.Session
	api        Transport
	transcript *transcript.Transcript
	opts       Options

	// loading doubles as the reentrancy gate
	loading atomic.Bool

	mu     sync.Mutex
	active *followup.Form
	alert  bool
}

// New creates a controller for sess talking to api
func New(sess *session.Session, api Transport, opts *Options) *Controller {
	c := &Controller{session: sess, api: api}
	if opts != nil {
		c.opts = *opts
	}
	c.transcript = transcript.New(c.opts.Clock)
	return c
}

// Session returns the conversation identity
func (c *Controller) Session() *session.Session { return c.session }

// Transcript returns the visible log
func (c *Controller) Transcript() *transcript.Transcript { return c.transcript }

// Loading reports whether a call is awaiting its response
func (c *Controller) Loading() bool { return c.loading.Load() }

// Active returns the current follow-up, or nil when none is rendered
func (c *Controller) Active() *followup.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// DeviceAlert reports whether the device-unavailable alert is showing
func (c *Controller) DeviceAlert() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// DismissDeviceAlert hides the device-unavailable alert
func (c *Controller) DismissDeviceAlert() {
	c.setDeviceAlert(false)
}

// SubmitInitial sends free initial text with the current demographics. The
// text is echoed to the transcript before the response arrives.
func (c *Controller) SubmitInitial(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyInput
	}

	profile := c.session.Profile()
	req := sdk.NewInputRequest(c.session.UserID(), text, profile.Age, string(profile.Sex))

	return c.do(ctx, "submit initial", MsgSendFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		c.transcript.Append(transcript.KindUser, text)
		return c.api.Chat(ctx, req)
	})
}

// Submit extracts the active follow-up and sends it as an answer. A rejected
// extraction is logged and returned without contacting the service.
func (c *Controller) Submit(ctx context.Context) error {
	form := c.Active()
	if form == nil {
		return ErrNoActiveForm
	}

	answer, err := followup.Extract(form)
	if err != nil {
		log.Printf("[DIALOGUE]: rejected %s answer: %v", form.Kind(), err)
		return err
	}

	return c.SubmitAnswer(ctx, answer)
}

// SubmitAnswer sends the canonical answer to a structured follow-up
func (c *Controller) SubmitAnswer(ctx context.Context, answer followup.Answer) error {
	if len(answer) == 0 {
		return ErrEmptyAnswer
	}

	req := sdk.NewAnswerRequest(c.session.UserID(), answer)

	return c.do(ctx, "submit answer", MsgAnswerFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		return c.api.Chat(ctx, req)
	})
}

// SubmitFreeText sends text on the legacy free_text path, independent of any rendered follow-up
func (c *Controller) SubmitFreeText(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyInput
	}

	req := sdk.NewFreeTextRequest(c.session.UserID(), text)

	return c.do(ctx, "submit free text", MsgFreeTextFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		return c.api.Chat(ctx, req)
	})
}

// Reset starts a fresh dialogue for the same user. On success the transcript
// is cleared before the opening turn is rendered.
func (c *Controller) Reset(ctx context.Context) error {
	req := &sdk.ResetRequest{UserID: c.session.UserID()}

	return c.do(ctx, "reset", MsgResetFailed, true, func(ctx context.Context) (*sdk.ChatResponse, error) {
		return c.api.Reset(ctx, req)
	})
}

// SendFeedback submits free-form feedback about the assessment
func (c *Controller) SendFeedback(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	req := &sdk.FeedbackRequest{UserID: c.session.UserID(), Feedback: text}

	return c.do(ctx, "send feedback", MsgFeedbackFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		return c.api.Feedback(ctx, req)
	})
}

// Vitals are manually measured readings sent as extra evidence
type Vitals struct {
	Temperature *float64 // Degrees Celsius
	Systolic    *int     // mmHg
	Diastolic   *int     // mmHg
}

// Validate requires a temperature, a full blood pressure pair, or both
func (v Vitals) Validate() error {
	pair := v.Systolic != nil && v.Diastolic != nil
	half := (v.Systolic != nil) != (v.Diastolic != nil)
	if half || (v.Temperature == nil && !pair) {
		return ErrIncompleteVitals
	}
	return nil
}

// SubmitHealthData sends manually measured vitals
func (c *Controller) SubmitHealthData(ctx context.Context, vitals Vitals) error {
	if err := vitals.Validate(); err != nil {
		return err
	}

	req := &sdk.HealthDataRequest{
		UserID:                 c.session.UserID(),
		Temperature:            vitals.Temperature,
		BloodPressureSystolic:  vitals.Systolic,
		BloodPressureDiastolic: vitals.Diastolic,
	}

	return c.do(ctx, "submit health data", MsgVitalsFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		return c.api.HealthData(ctx, req)
	})
}

// UpdateProfile sends new demographics and, once the service accepts them,
// uses them for later initial messages
func (c *Controller) UpdateProfile(ctx context.Context, profile session.Profile) error {
	if profile.Age == nil {
		return session.ErrInvalidAge
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	req := &sdk.ProfileRequest{UserID: c.session.UserID(), Age: *profile.Age, Sex: string(profile.Sex)}

	var accepted bool
	err := c.do(ctx, "update profile", MsgProfileFailed, false, func(ctx context.Context) (*sdk.ChatResponse, error) {
		resp, err := c.api.EditProfile(ctx, req)
		accepted = err == nil
		return resp, err
	})
	if err != nil {
		return err
	}

	if accepted {
		c.session.UpdateProfile(profile)
	}
	return nil
}

// Symptoms lists the symptom names the service recognizes. It does not touch the transcript.
func (c *Controller) Symptoms(ctx context.Context) ([]string, error) {
	return c.api.Symptoms(ctx)
}

// do runs one service call. The loading indicator is set for the duration of
// the call and always cleared on settlement. Failures are rendered as a
// single error entry with failMsg; only local rejections are returned.
func (c *Controller) do(ctx context.Context, op, failMsg string, clear bool, call func(context.Context) (*sdk.ChatResponse, error)) error {
	if !c.loading.CompareAndSwap(false, true) {
		log.Printf("[DIALOGUE]: %s ignored: %v", op, ErrBusy)
		return ErrBusy
	}
	c.notifyLoading(true)
	defer func() {
		c.loading.Store(false)
		c.notifyLoading(false)
	}()

	resp, err := call(ctx)
	if err != nil {
		log.Printf("[DIALOGUE]: %s failed: %v", op, err)
		c.render(&sdk.ChatResponse{ErrorMessage: failMsg})
		return nil
	}

	// A real response supersedes whatever follow-up was on screen
	c.setActive(nil)
	if clear {
		c.transcript.Clear()
	}
	c.render(resp)
	return nil
}

func (c *Controller) notifyLoading(on bool) {
	if c.opts.OnLoading != nil {
		c.opts.OnLoading(on)
	}
}

// setActive replaces the active follow-up, closing the previous one
func (c *Controller) setActive(form *followup.Form) {
	c.mu.Lock()
	prev := c.active
	c.active = form
	c.mu.Unlock()

	if prev != nil && prev != form {
		prev.Close()
	}
	if form != nil && c.opts.OnFollowUp != nil {
		c.opts.OnFollowUp(form)
	}
}

func (c *Controller) setDeviceAlert(visible bool) {
	c.mu.Lock()
	changed := c.alert != visible
	c.alert = visible
	c.mu.Unlock()

	if changed && c.opts.OnDeviceAlert != nil {
		c.opts.OnDeviceAlert(visible)
	}
}
