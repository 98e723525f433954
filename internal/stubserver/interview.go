package stubserver

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultAge = 30
	defaultSex = "male"
)

// interview is one user's progress through the script
type interview struct {
	ID       uuid.UUID
	Step     int  // Index of the question awaiting an answer
	Pending  bool // A question has been asked and not yet answered
	Evidence []string
	Age      int
	Sex      string
}

func newInterview() *interview {
	return &interview{ID: uuid.New(), Age: defaultAge, Sex: defaultSex}
}

// acceptAnswer checks answer against the pending question's options. Text questions take anything.
func acceptAnswer(q Question, answer []string) bool {
	if len(answer) == 0 {
		return false
	}
	if len(q.Options) == 0 {
		return true
	}

	for _, a := range answer {
		ok := slices.ContainsFunc(q.Options, func(opt string) bool {
			return strings.EqualFold(opt, strings.TrimSpace(a))
		})
		if !ok {
			return false
		}
	}
	return true
}
