package service

import (
	"context"
	"time"

	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/repository"
)

type SessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsCurrent bool      `json:"isCurrent"`
}

type SessionService struct {
	sessionRepo repository.SessionRepository
	now         func() time.Time
}

func NewSessionService(sessionRepo repository.SessionRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, now: time.Now}
}

// ListActiveSessions returns the user's unexpired sessions. currentSessionID
// is the jti of the access token making the request.
func (s *SessionService) ListActiveSessions(ctx context.Context, userID uint, currentSessionID string) ([]SessionView, error) {
	sessions, err := s.sessionRepo.ListActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, SessionView{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			IsCurrent: session.ID == currentSessionID,
		})
	}
	return views, nil
}

func (s *SessionService) RevokeSession(ctx context.Context, userID uint, sessionID string) error {
	removed, err := s.sessionRepo.DeleteByIDForUser(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !removed {
		return &NotFoundError{Resource: "session"}
	}
	return nil
}

// PruneExpired deletes expired session rows once. Nothing schedules it.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.CleanupExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	observability.RecordSessionPrune(ctx, n)
	return n, nil
}
