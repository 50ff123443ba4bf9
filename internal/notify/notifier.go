package notify

import (
	"context"
	"fmt"
	"strings"

	"productpulse-backend/internal/models"
)

// Notifier publishes messages to an internal notification channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// SubmissionMessage formats a new onboarding submission for the team channel.
func SubmissionMessage(id string, rec *models.SubmissionRecord) string {
	store := "none"
	if rec.StoreURL != nil {
		store = *rec.StoreURL
	}
	var b strings.Builder
	b.WriteString("*New ProductPulse signup*\n")
	fmt.Fprintf(&b, "ID: `%s`\n", id)
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Business: %s\n", rec.BusinessType)
	fmt.Fprintf(&b, "Store: %s\n", store)
	fmt.Fprintf(&b, "Industry: %s\n", rec.Industry)
	fmt.Fprintf(&b, "Focus: %s", strings.Join(rec.Focus, ", "))
	return b.String()
}
