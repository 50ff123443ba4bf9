package onboarding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitFailedMessage is what the user sees when the store rejects a submission.
const SubmitFailedMessage = "There was a problem saving your information. Please try again."

// Service runs onboarding flows on behalf of browser sessions.
type Service struct {
	store    SessionStore
	gateway  *Gateway
	log      *zap.Logger
	now      func() time.Time
	inflight sync.Map
	locks    sessionLocks
}

func NewService(store SessionStore, gateway *Gateway, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) Start(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Flow:      *NewFlow(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Flow.Form.Apply(p)
	})
}

func (s *Service) ToggleFocus(ctx context.Context, id string, f Focus) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Flow.Form.ToggleFocus(f)
	})
}

func (s *Service) Next(ctx context.Context, id string) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Flow.Next()
	})
}

func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Flow.Back()
	})
}

// Discard abandons a flow. Partial progress is not kept anywhere.
func (s *Service) Discard(ctx context.Context, id string) error {
	if _, busy := s.inflight.Load(id); busy {
		return ErrSubmitInProgress
	}
	unlock := s.locks.lock(id)
	defer unlock()
	if _, busy := s.inflight.Load(id); busy {
		return ErrSubmitInProgress
	}
	return s.store.Delete(ctx, id)
}

// Submit hands the session's form to the gateway. Only one submission per
// session runs at a time. A failed submission leaves the session and its form
// in place so the user can retry; a successful one discards the session.
// The returned error covers session problems only, store failures are
// reported through Result.
func (s *Service) Submit(ctx context.Context, id string) (*Session, Result, error) {
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, Result{}, ErrSubmitInProgress
	}
	defer s.inflight.Delete(id)

	// Held until the session is saved or deleted, so an edit that started
	// first lands before the read below and none can land after.
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, Result{}, err
	}
	if sess.Flow.Step != StepReview {
		return nil, Result{}, ErrNotReviewStep
	}
	if err := sess.Flow.Form.Complete(); err != nil {
		return nil, Result{}, err
	}

	sess.LastError = ""
	res := s.gateway.Submit(ctx, sess.Flow.Form)

	// The request may be gone by now; session bookkeeping still has to happen.
	bg := context.WithoutCancel(ctx)
	if !res.Success {
		sess.LastError = SubmitFailedMessage
		sess.UpdatedAt = s.now()
		if err := s.store.Save(bg, sess); err != nil {
			s.log.Warn("failed to keep session after failed submission",
				zap.String("session_id", id), zap.Error(err))
		}
		return sess, res, nil
	}

	if err := s.store.Delete(bg, id); err != nil {
		s.log.Warn("failed to discard submitted session",
			zap.String("session_id", id), zap.Error(err))
	}
	return sess, res, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	if _, busy := s.inflight.Load(id); busy {
		return nil, ErrSubmitInProgress
	}
	unlock := s.locks.lock(id)
	defer unlock()
	// A submit may have queued behind this call's first check.
	if _, busy := s.inflight.Load(id); busy {
		return nil, ErrSubmitInProgress
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// sessionLocks serializes read-modify-write cycles per session id. Entries
// are dropped once nobody holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		if sl.refs--; sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// IsFlowError reports whether err is a rejected transition rather than a
// store failure.
func IsFlowError(err error) bool {
	return errors.Is(err, ErrFirstStep) ||
		errors.Is(err, ErrFinalStep) ||
		errors.Is(err, ErrNotReviewStep) ||
		errors.Is(err, ErrSubmitInProgress)
}
