package specialhands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/pokernight-go/internal/dependencies/clock"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// Service records the rare hands that earn an asterisk on the year-end
// leaderboard
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a new special hands Service
func NewService(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// RecordParams describes a hand to record
type RecordParams struct {
	PlayerID    model.UserID
	HandType    model.HandType
	Cards       string
	Description string
}

// Record logs a special hand for a player in a session. The player must
// have an entry in the session; the hand type must be a recognized value.
// Hands can be recorded after close, since they often surface while
// reconciling the night.
func (s *Service) Record(ctx context.Context, actor *model.User, sessionID model.SessionID, params RecordParams) (*model.SpecialHand, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && session.HostID != actor.ID {
		return nil, model.ErrNotHost
	}

	if !params.HandType.Valid() {
		return nil, model.ErrInvalidHandType
	}
	if _, ok := session.Players[params.PlayerID]; !ok {
		return nil, model.ErrPlayerNotFound
	}

	hand := &model.SpecialHand{
		ID:          model.SpecialHandID(uuid.NewString()),
		SessionID:   sessionID,
		PlayerID:    params.PlayerID,
		HandType:    params.HandType,
		Cards:       params.Cards,
		Description: params.Description,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SaveSpecialHand(ctx, hand); err != nil {
		return nil, err
	}

	s.logger.Info("special hand recorded",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(params.PlayerID)),
		slog.String("hand_type", string(params.HandType)),
	)

	return hand, nil
}

// ForSession returns all hands recorded against a session
func (s *Service) ForSession(ctx context.Context, sessionID model.SessionID) ([]*model.SpecialHand, error) {
	return s.storage.GetSpecialHandsForSession(ctx, sessionID)
}

// Delete removes a recorded hand. Host-or-admin of the owning session.
func (s *Service) Delete(ctx context.Context, actor *model.User, handID model.SpecialHandID) error {
	hand, err := s.storage.GetSpecialHand(ctx, handID)
	if err != nil {
		return err
	}

	session, err := s.storage.GetSession(ctx, hand.SessionID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && session.HostID != actor.ID {
		return model.ErrNotHost
	}

	if err := s.storage.DeleteSpecialHand(ctx, handID); err != nil {
		return err
	}

	s.logger.Info("special hand deleted",
		slog.String("hand_id", string(handID)),
		slog.String("session_id", string(hand.SessionID)),
	)

	return nil
}
