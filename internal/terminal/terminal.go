package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ethanbaker/symptomchat/pkg/dialogue"
	"github.com/ethanbaker/symptomchat/pkg/followup"
	"github.com/ethanbaker/symptomchat/pkg/transcript"
)

const helpText = `Commands:
  /reset                     start a new assessment
  /feedback <text>           send feedback
  /vitals temp=38.2 bp=120/80
  /profile age=40 sex=female
  /symptoms                  list known symptoms
  /free <text>               describe an answer in your own words
  /dismiss                   hide the device notice
  /help                      show this help
  /quit                      leave
Anything else answers the open question, or starts an assessment when none is open.`

// labels for each entry kind as printed in the conversation
var labels = map[transcript.Kind]string{
	transcript.KindUser:     "You",
	transcript.KindBot:      "Bot",
	transcript.KindSensor:   "Sensor",
	transcript.KindError:    "Error",
	transcript.KindFollowUp: "Question",
	transcript.KindFinal:    "Done",
}

// Terminal renders a dialogue to a text stream and routes typed lines to it
type Terminal struct {
	in  io.Reader
	mu  sync.Mutex
	out io.Writer
}

// New creates a terminal reading lines from in and writing to out
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Options returns controller hooks that print loading, device and follow-up changes
func (t *Terminal) Options() *dialogue.Options {
	return &dialogue.Options{
		OnLoading: func(loading bool) {
			if loading {
				t.printf("...\n")
			}
		},
		OnDeviceAlert: func(visible bool) {
			if visible {
				t.printf("! %s\n", dialogue.DeviceNotice)
			}
		},
		OnFollowUp: t.printForm,
	}
}

func (t *Terminal) printEntry(e transcript.Entry) {
	t.printf("[%s] %s: %s\n", e.Stamp(), labels[e.Kind()], e.Text())
}

func (t *Terminal) printForm(form *followup.Form) {
	switch form.Kind() {
	case followup.KindDropdown:
		t.printf("  Pick one:\n")
	case followup.KindCheckboxes:
		t.printf("  Pick any, comma separated:\n")
	case followup.KindText:
		t.printf("  Type your answer.\n")
		return
	default:
		t.printf("  This question cannot be answered here. Use /free to describe your answer.\n")
		return
	}

	for i, opt := range form.Options() {
		t.printf("  %d) %s\n", i+1, opt)
	}
}

// Attach prints every transcript entry as it is appended
func (t *Terminal) Attach(ctrl *dialogue.Controller) {
	ctrl.Transcript().OnAppend(t.printEntry)
	ctrl.Transcript().OnClear(func() {
		t.printf("\n--- new assessment ---\n")
	})
}

// Run reads lines until the input ends, ctx is done, or the user quits
func (t *Terminal) Run(ctx context.Context, ctrl *dialogue.Controller) error {
	t.Attach(ctrl)
	t.printf("Symptom checker started. Describe how you feel, or type /help.\n")

	scanner := bufio.NewScanner(t.in)
	for {
		t.printf("> ")

		if !scanner.Scan() {
			break
		}

		quit, err := t.Handle(ctx, ctrl, scanner.Text())
		switch {
		case followup.IsRejection(err):
			t.printf("Answer not sent: %v\n", err)
		case err != nil:
			t.printf("%v\n", err)
		}
		if quit || ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// Handle processes one typed line. Errors are local rejections to show the user.
func (t *Terminal) Handle(ctx context.Context, ctrl *dialogue.Controller, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if line == "exit" {
		return true, nil
	}

	if !strings.HasPrefix(line, "/") {
		return false, t.answer(ctx, ctrl, line)
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		t.printf("%s\n", helpText)
	case "/reset":
		return false, ctrl.Reset(ctx)
	case "/feedback":
		return false, ctrl.SendFeedback(ctx, rest)
	case "/free":
		return false, ctrl.SubmitFreeText(ctx, rest)
	case "/dismiss":
		ctrl.DismissDeviceAlert()
	case "/vitals":
		vitals, err := ParseVitals(args)
		if err != nil {
			return false, err
		}
		return false, ctrl.SubmitHealthData(ctx, vitals)
	case "/profile":
		profile, err := ParseProfile(args, ctrl.Session().Profile())
		if err != nil {
			return false, err
		}
		return false, ctrl.UpdateProfile(ctx, profile)
	case "/symptoms":
		symptoms, err := ctrl.Symptoms(ctx)
		if err != nil {
			return false, fmt.Errorf("could not load symptoms: %w", err)
		}
		t.printf("Known symptoms: %s\n", strings.Join(symptoms, ", "))
	default:
		return false, fmt.Errorf("unknown command %s, type /help", cmd)
	}

	return false, nil
}

// answer fills the open question with line and submits it, or starts an assessment
// when no question is open
func (t *Terminal) answer(ctx context.Context, ctrl *dialogue.Controller, line string) error {
	form := ctrl.Active()
	if form != nil && form.Kind() == followup.KindUnsupported && !form.Closed() {
		if err := ctrl.Submit(ctx); err != nil {
			return fmt.Errorf("%w, use /free to describe your answer", err)
		}
		return nil
	}
	if form == nil || !form.Interactive() {
		return ctrl.SubmitInitial(ctx, line)
	}

	if err := Fill(form, line); err != nil {
		return err
	}
	return ctrl.Submit(ctx)
}
