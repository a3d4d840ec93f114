package notify

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/repositories"
)

// pushTimeout bounds the provider round trip so a hung push service can
// never stall a dispatch.
const pushTimeout = 8 * time.Second

// PushProvider is the slice of the FCM messaging client the gateway uses
type PushProvider interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushGateway delivers a notification to all of a user's registered devices
type PushGateway interface {
	SendToUser(ctx context.Context, userID uint, msg models.PushMessage) bool
}

// FCMGateway implements PushGateway over Firebase Cloud Messaging.
// Stateless apart from the injected token registry.
type FCMGateway struct {
	provider PushProvider
	tokens   repositories.DeviceTokenRepository
}

// NewFCMGateway creates a new FCMGateway
func NewFCMGateway(provider PushProvider, tokens repositories.DeviceTokenRepository) *FCMGateway {
	return &FCMGateway{provider: provider, tokens: tokens}
}

// SendToUser multicasts one push message to every active token of a user.
// Returns true iff the provider accepted it for at least one token.
// Tokens the provider rejects are deactivated as routine cleanup; partial
// failure never fails the whole call.
func (g *FCMGateway) SendToUser(ctx context.Context, userID uint, msg models.PushMessage) bool {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	registrations, err := g.tokens.ActiveForUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to load device tokens")
		return false
	}
	if len(registrations) == 0 {
		log.Debug().Uint("user_id", userID).Msg("no active device tokens")
		return false
	}

	tokens := make([]string, len(registrations))
	for i, reg := range registrations {
		tokens[i] = reg.FCMToken
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data:   msg.Data,
		Tokens: tokens,
	}

	resp, err := g.provider.SendEachForMulticast(ctx, message)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("push multicast failed")
		return false
	}

	log.Info().
		Uint("user_id", userID).
		Int("success", resp.SuccessCount).
		Int("failure", resp.FailureCount).
		Msg("push multicast sent")

	if resp.FailureCount > 0 {
		failed := make([]string, 0, resp.FailureCount)
		for i, r := range resp.Responses {
			if !r.Success {
				failed = append(failed, tokens[i])
			}
		}
		// Routine cleanup, not an error path
		if err := g.tokens.Deactivate(ctx, failed); err != nil {
			log.Warn().Err(err).Int("count", len(failed)).Msg("failed to deactivate invalid tokens")
		} else {
			log.Info().Int("count", len(failed)).Msg("deactivated invalid tokens")
		}
	}

	return resp.SuccessCount > 0
}
