package onboarding

import (
	"context"
	"fmt"
	"time"

	"productpulse-backend/internal/logger"
	"productpulse-backend/internal/models"

	"go.uber.org/zap"
)

// SubmissionWriter appends a record to the submissions collection and returns
// its generated identifier.
type SubmissionWriter interface {
	InsertSubmission(ctx context.Context, record *models.SubmissionRecord) (string, error)
}

// Result is the outcome of a submission. Failures are reported here rather
// than as errors.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`

	Record *models.SubmissionRecord `json:"-"`
}

const defaultSubmitError = "Failed to save data"

// Gateway persists completed onboarding forms. It does not re-validate the
// form; callers are expected to have run Form.Complete.
type Gateway struct {
	writer SubmissionWriter
	log    *zap.Logger
	now    func() time.Time
}

func NewGateway(writer SubmissionWriter, log *zap.Logger) *Gateway {
	return &Gateway{
		writer: writer,
		log:    log,
		now:    time.Now,
	}
}

// Submit writes one new record for form. Every call creates a new record,
// including retries with identical data.
func (g *Gateway) Submit(ctx context.Context, form Form) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("submission write panicked", zap.Any("panic", r))
			res = Result{Error: fmt.Sprintf("%s: %v", defaultSubmitError, r)}
		}
	}()

	record := NewRecord(form, g.now())
	id, err := g.writer.InsertSubmission(ctx, record)
	if err != nil {
		g.log.Error("failed to save submission",
			logger.Email("email", form.Email),
			zap.Error(err),
		)
		msg := err.Error()
		if msg == "" {
			msg = defaultSubmitError
		}
		return Result{Error: msg}
	}
	if id == "" {
		return Result{Error: defaultSubmitError + ": no record id returned"}
	}

	g.log.Info("submission saved",
		zap.String("submission_id", id),
		logger.Email("email", form.Email),
	)
	return Result{Success: true, ID: id, Record: record}
}

// NewRecord maps a form onto the stored record shape. The store URL is only
// kept when the user said they have a store and entered something.
func NewRecord(form Form, now time.Time) *models.SubmissionRecord {
	var storeURL *string
	if form.HasOnlineStore && form.StoreURL != "" {
		u := form.StoreURL
		storeURL = &u
	}

	focus := make([]string, 0, len(form.Focus))
	for _, f := range form.Focus {
		focus = append(focus, string(f))
	}

	now = now.UTC()
	return &models.SubmissionRecord{
		Name:           form.Name,
		Email:          form.Email,
		BusinessType:   string(form.BusinessType),
		HasOnlineStore: form.HasOnlineStore,
		StoreURL:       storeURL,
		Industry:       form.Industry,
		Focus:          focus,
		SubmissionDate: now.Format("2006-01-02T15:04:05.000Z07:00"),
		Status:         models.SubmissionStatusNew,
		Timestamp:      now.UnixMilli(),
	}
}
