package onboarding

import (
	"errors"
	"fmt"
	"math"
)

type Step int

const (
	StepIdentity Step = iota
	StepBusinessType
	StepOnlineStore
	StepIndustry
	StepFocus
	StepReview
)

const StepCount = 6

var stepNames = [StepCount]string{
	"identity",
	"business_type",
	"online_store",
	"industry",
	"focus",
	"review",
}

func (s Step) String() string {
	if s < 0 || int(s) >= StepCount {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

var (
	ErrFirstStep        = errors.New("already at the first step")
	ErrFinalStep        = errors.New("already at the review step")
	ErrNotReviewStep    = errors.New("submission is only allowed from the review step")
	ErrSubmitInProgress = errors.New("a submission for this session is already in progress")
	ErrSessionNotFound  = errors.New("onboarding session not found")
)

// ValidationError reports a field that blocks progression.
type ValidationError struct {
	Step    Step   `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Flow walks a Form through the onboarding steps in order. Steps cannot be
// skipped and Next refuses to leave a step whose data is invalid.
type Flow struct {
	Step Step `json:"step"`
	Form Form `json:"form"`
}

func NewFlow() *Flow {
	return &Flow{Step: StepIdentity}
}

// CanAdvance reports whether Next would succeed.
func (f *Flow) CanAdvance() bool {
	if f.Step >= StepReview {
		return false
	}
	return f.Form.CheckStep(f.Step) == nil
}

func (f *Flow) Next() error {
	if f.Step >= StepReview {
		return ErrFinalStep
	}
	if err := f.Form.CheckStep(f.Step); err != nil {
		return err
	}
	f.Step++
	return nil
}

// Back moves to the previous step. Nothing in the form is cleared.
func (f *Flow) Back() error {
	if f.Step <= StepIdentity {
		return ErrFirstStep
	}
	f.Step--
	return nil
}

// Progress is the completion percentage shown in the progress bar.
func (f *Flow) Progress() int {
	return int(math.Round(100 * float64(f.Step+1) / StepCount))
}
