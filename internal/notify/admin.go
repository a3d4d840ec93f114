package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/socket"
)

// SendAdmin persists one admin notification and attempts delivery to the
// configured admin account, live first and push as fallback. Follows the
// same contract as Send: delivery is best-effort, the record is the source
// of truth.
func (d *Dispatcher) SendAdmin(ctx context.Context, payload models.AdminNotificationPayload) (*models.AdminNotification, error) {
	if payload.Title == "" || utf8.RuneCountInString(payload.Title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLength)
	}
	if payload.Message == "" || utf8.RuneCountInString(payload.Message) > maxMessageLength {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", ErrValidation, maxMessageLength)
	}
	if !payload.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown admin notification type %q", ErrValidation, payload.Type)
	}
	if payload.Priority != "" && !payload.Priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, payload.Priority)
	}

	n := &models.AdminNotification{
		Type:     payload.Type,
		Title:    payload.Title,
		Message:  payload.Message,
		Metadata: payload.Metadata,
		Priority: payload.Priority,
	}
	if err := d.adminStore.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to persist admin notification: %w", err)
	}

	if d.adminUser == 0 {
		return n, nil
	}

	online := d.live.IsUserOnline(d.adminUser)
	if online {
		if d.live.EmitToUser(d.adminUser, socket.Event{Event: socket.EventAdminNotification, Data: n}) {
			n.DeliveryStatus.Socket = true
			if err := d.adminStore.SetDeliveryStatus(ctx, n.ID, true, false); err != nil {
				log.Warn().Err(err).Str("notification_id", n.ID.Hex()).Msg("failed to record admin socket delivery")
			}
		}
	}

	if !online || !n.DeliveryStatus.Socket {
		if d.push.SendToUser(ctx, d.adminUser, models.PushMessage{
			Title: payload.Title,
			Body:  payload.Message,
			Data: map[string]string{
				"notificationId": n.ID.Hex(),
				"type":           string(payload.Type),
			},
		}) {
			n.DeliveryStatus.Push = true
			if err := d.adminStore.SetDeliveryStatus(ctx, n.ID, false, true); err != nil {
				log.Warn().Err(err).Str("notification_id", n.ID.Hex()).Msg("failed to record admin push delivery")
			}
		}
	}

	return n, nil
}

// NotifyAdminNewUser alerts the admin dashboard about a signup.
// Never returns an error: an alerting failure must not break the signup flow.
func (d *Dispatcher) NotifyAdminNewUser(ctx context.Context, userID uint, username, email, avatar string) {
	_, err := d.SendAdmin(ctx, models.AdminNotificationPayload{
		Type:    models.AdminNotificationNewUser,
		Title:   "New User Registered",
		Message: truncate(fmt.Sprintf("%s just signed up with %s", username, email), maxMessageLength),
		Metadata: map[string]interface{}{
			"userId":   userID,
			"username": username,
			"email":    email,
			"avatar":   avatar,
		},
		Priority: models.PriorityLow,
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to notify admin about new user")
	}
}

// NotifyAdminNewChannel alerts the admin dashboard about a channel creation
func (d *Dispatcher) NotifyAdminNewChannel(ctx context.Context, channelID uint, channelName, channelIcon string, ownerID uint, ownerUsername string) {
	_, err := d.SendAdmin(ctx, models.AdminNotificationPayload{
		Type:    models.AdminNotificationNewChannel,
		Title:   "New Channel Created",
		Message: truncate(fmt.Sprintf("%s created a new channel: %q", ownerUsername, channelName), maxMessageLength),
		Metadata: map[string]interface{}{
			"channelId":     channelID,
			"channelName":   channelName,
			"channelIcon":   channelIcon,
			"ownerId":       ownerID,
			"ownerUsername": ownerUsername,
		},
		Priority: models.PriorityLow,
	})
	if err != nil {
		log.Error().Err(err).Uint("channel_id", channelID).Msg("failed to notify admin about new channel")
	}
}

// NotifyAdminNewReport alerts the admin dashboard about a content report
func (d *Dispatcher) NotifyAdminNewReport(ctx context.Context, reporterID uint, reporterUsername, reason, targetType, targetID string) {
	_, err := d.SendAdmin(ctx, models.AdminNotificationPayload{
		Type:    models.AdminNotificationNewReport,
		Title:   "New Report Submitted",
		Message: truncate(fmt.Sprintf("%s reported a %s: %q", reporterUsername, targetType, reason), maxMessageLength),
		Metadata: map[string]interface{}{
			"reporterId":       reporterID,
			"reporterUsername": reporterUsername,
			"reason":           reason,
			"targetType":       targetType,
			"targetId":         targetID,
		},
		Priority: models.PriorityHigh,
	})
	if err != nil {
		log.Error().Err(err).Uint("reporter_id", reporterID).Msg("failed to notify admin about new report")
	}
}
