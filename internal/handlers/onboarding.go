package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"productpulse-backend/internal/logger"
	"productpulse-backend/internal/mailer"
	"productpulse-backend/internal/notify"
	"productpulse-backend/internal/onboarding"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const submittedMessage = "Demo email sent! Your information has been saved. Check your inbox in the next hour."

type OnboardingHandler struct {
	svc      *onboarding.Service
	gateway  *onboarding.Gateway
	notifier notify.Notifier
	mailer   mailer.Mailer
	log      *zap.Logger

	followUps sync.WaitGroup
}

func NewOnboardingHandler(svc *onboarding.Service, gateway *onboarding.Gateway, notifier notify.Notifier, m mailer.Mailer, log *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		svc:      svc,
		gateway:  gateway,
		notifier: notifier,
		mailer:   m,
		log:      log,
	}
}

type sessionResponse struct {
	ID         string          `json:"id"`
	Step       onboarding.Step `json:"step"`
	StepName   string          `json:"stepName"`
	StepCount  int             `json:"stepCount"`
	Progress   int             `json:"progress"`
	CanAdvance bool            `json:"canAdvance"`
	Form       onboarding.Form `json:"form"`
	LastError  string          `json:"lastError,omitempty"`
}

func newSessionResponse(s *onboarding.Session) sessionResponse {
	form := s.Flow.Form
	if form.Focus == nil {
		form.Focus = []onboarding.Focus{}
	}
	return sessionResponse{
		ID:         s.ID,
		Step:       s.Flow.Step,
		StepName:   s.Flow.Step.String(),
		StepCount:  onboarding.StepCount,
		Progress:   s.Flow.Progress(),
		CanAdvance: s.Flow.CanAdvance(),
		Form:       form,
		LastError:  s.LastError,
	}
}

// --- GET /onboarding/options ---

func (h *OnboardingHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"businessTypes": []onboarding.BusinessType{onboarding.Dropshipper, onboarding.Branded},
		"industries":    onboarding.Industries,
		"focusOptions":  onboarding.FocusOptions,
		"stepCount":     onboarding.StepCount,
	})
}

// --- POST /onboarding/sessions ---

func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Start(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// --- GET /onboarding/sessions/{id} ---

func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	h.respondSession(w, sess, err)
}

// --- PATCH /onboarding/sessions/{id} ---

func (h *OnboardingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch onboarding.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	h.respondSession(w, sess, err)
}

// --- POST /onboarding/sessions/{id}/focus/{focus} ---

func (h *OnboardingHandler) ToggleFocus(w http.ResponseWriter, r *http.Request) {
	focus := onboarding.Focus(chi.URLParam(r, "focus"))
	sess, err := h.svc.ToggleFocus(r.Context(), chi.URLParam(r, "id"), focus)
	h.respondSession(w, sess, err)
}

// --- POST /onboarding/sessions/{id}/next ---

func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Next(r.Context(), chi.URLParam(r, "id"))
	h.respondSession(w, sess, err)
}

// --- POST /onboarding/sessions/{id}/back ---

func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Back(r.Context(), chi.URLParam(r, "id"))
	h.respondSession(w, sess, err)
}

// --- DELETE /onboarding/sessions/{id} ---

func (h *OnboardingHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- POST /onboarding/sessions/{id}/submit ---

func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, res, err := h.svc.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   onboarding.SubmitFailedMessage,
			"session": newSessionResponse(sess),
		})
		return
	}

	h.afterSubmit(res)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      res.ID,
		"message": submittedMessage,
	})
}

// --- POST /onboarding/submissions ---
// Accepts a complete form in one request, for clients that run the steps
// themselves.

func (h *OnboardingHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var form onboarding.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form.StoreURL = onboarding.NormalizeStoreURL(form.StoreURL)
	if err := form.Validate(); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := form.Complete(); err != nil {
		h.writeServiceError(w, err)
		return
	}

	res := h.gateway.Submit(r.Context(), form)
	if !res.Success {
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   onboarding.SubmitFailedMessage,
		})
		return
	}

	h.afterSubmit(res)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      res.ID,
		"message": submittedMessage,
	})
}

// afterSubmit fires the team notification and the welcome email in the
// background. Neither affects the response.
func (h *OnboardingHandler) afterSubmit(res onboarding.Result) {
	rec := res.Record
	if rec == nil {
		return
	}
	h.followUps.Add(1)
	go func() {
		defer h.followUps.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.notifier.Publish(ctx, notify.SubmissionMessage(res.ID, rec)); err != nil {
			h.log.Error("failed to publish submission notification",
				zap.String("submission_id", res.ID), zap.Error(err))
		}
		if err := h.mailer.SendDemoWelcome(ctx, rec.Email, rec.Name); err != nil {
			h.log.Error("failed to send demo welcome email",
				zap.String("submission_id", res.ID),
				logger.Email("email", rec.Email),
				zap.Error(err))
		}
	}()
}

// Wait blocks until background follow-ups have finished.
func (h *OnboardingHandler) Wait() {
	h.followUps.Wait()
}

func (h *OnboardingHandler) respondSession(w http.ResponseWriter, sess *onboarding.Session, err error) {
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *OnboardingHandler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *onboarding.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": verr.Message,
			"field": verr.Field,
			"step":  verr.Step,
		})
	case errors.Is(err, onboarding.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case onboarding.IsFlowError(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("onboarding request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
