package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MinimumAge is the youngest age the assessment is offered to
const MinimumAge = 18

var (
	ErrMissingUserID = errors.New("user id is required")
	ErrUnderage      = fmt.Errorf("this application is for users aged %d and above", MinimumAge)
	ErrInvalidAge    = errors.New("age must be a positive number")
	ErrInvalidSex    = errors.New("sex must be male or female")
)

// Sex is the optional demographic sent with the initial message
type Sex string

const (
	SexUnset  Sex = ""
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex accepts male/female in any case; empty means unset
func ParseSex(s string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexUnset:
		return SexUnset, nil
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	}
	return SexUnset, fmt.Errorf("%w: %q", ErrInvalidSex, s)
}

// ValidateAge applies the static age gate
func ValidateAge(age int) error {
	if age <= 0 {
		return ErrInvalidAge
	}
	if age < MinimumAge {
		return ErrUnderage
	}
	return nil
}

// Profile holds the optional demographic fields
type Profile struct {
	Age *int
	Sex Sex
}

// Validate checks a set age passes the gate and sex is a known value
func (p Profile) Validate() error {
	if p.Age != nil {
		if err := ValidateAge(*p.Age); err != nil {
			return err
		}
	}
	if _, err := ParseSex(string(p.Sex)); err != nil {
		return err
	}
	return nil
}

// ProfileSource supplies the demographics at the moment a message is submitted
type ProfileSource interface {
	Profile() Profile
}

// ProfileWriter is a ProfileSource that accepts updates
type ProfileWriter interface {
	ProfileSource
	SetProfile(Profile)
}

// StaticProfile is an in-memory ProfileWriter
type StaticProfile struct {
	mu      sync.RWMutex
	profile Profile
}

// NewStaticProfile creates a profile holder with initial values
func NewStaticProfile(p Profile) *StaticProfile {
	return &StaticProfile{profile: p}
}

func (s *StaticProfile) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *StaticProfile) SetProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Session is the identity of one conversation. The user id never changes, including across resets.
type Session struct {
	userID  string
	profile ProfileSource
}

// New creates a session for userID reading demographics from profile (may be nil)
func New(userID string, profile ProfileSource) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	return &Session{userID: userID, profile: profile}, nil
}

// NewAnonymous creates a session with a generated user id
func NewAnonymous(profile ProfileSource) *Session {
	return &Session{userID: uuid.NewString(), profile: profile}
}

// UserID returns the stable identifier
func (s *Session) UserID() string {
	return s.userID
}

// Profile reads the current demographics from the source
func (s *Session) Profile() Profile {
	if s.profile == nil {
		return Profile{}
	}
	return s.profile.Profile()
}

// UpdateProfile stores p when the source accepts writes; it reports whether it did
func (s *Session) UpdateProfile(p Profile) bool {
	w, ok := s.profile.(ProfileWriter)
	if !ok {
		return false
	}
	w.SetProfile(p)
	return true
}
