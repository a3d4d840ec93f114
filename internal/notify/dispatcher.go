package notify

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/repositories"
	"github.com/vidora/backend/internal/socket"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLength   = 200
	maxMessageLength = 500

	// batchConcurrency bounds fan-out so a large batch cannot overwhelm
	// the push provider or the record store.
	batchConcurrency = 8
)

// ErrValidation marks payloads rejected before any persistence
var ErrValidation = errors.New("invalid notification payload")

// LiveChannel is the realtime delivery surface the dispatcher talks to.
// The hub satisfies it; tests substitute fakes.
type LiveChannel interface {
	IsUserOnline(userID uint) bool
	EmitToUser(userID uint, ev socket.Event) bool
}

// Dispatcher orchestrates a notification's lifecycle: persist a durable
// record, attempt live delivery, fall back to push, track delivery flags.
// Delivery is best-effort; only validation and persistence can fail a Send.
type Dispatcher struct {
	store      repositories.NotificationRepository
	adminStore repositories.AdminNotificationRepository
	users      repositories.UserRepository
	channels   repositories.ChannelRepository
	follows    repositories.FollowRepository
	live       LiveChannel
	push       PushGateway
	adminUser  uint
}

// NewDispatcher creates a Dispatcher. adminUser identifies the recipient of
// admin notifications; zero disables admin delivery (records are still kept).
func NewDispatcher(
	store repositories.NotificationRepository,
	adminStore repositories.AdminNotificationRepository,
	users repositories.UserRepository,
	channels repositories.ChannelRepository,
	follows repositories.FollowRepository,
	live LiveChannel,
	push PushGateway,
	adminUser uint,
) *Dispatcher {
	return &Dispatcher{
		store:      store,
		adminStore: adminStore,
		users:      users,
		channels:   channels,
		follows:    follows,
		live:       live,
		push:       push,
		adminUser:  adminUser,
	}
}

// validate rejects malformed payloads before anything is persisted
func validate(p *models.NotificationPayload) error {
	if p.Recipient == 0 {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if p.Title == "" || utf8.RuneCountInString(p.Title) > maxTitleLength {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLength)
	}
	if p.Message == "" || utf8.RuneCountInString(p.Message) > maxMessageLength {
		return fmt.Errorf("%w: message must be 1-%d characters", ErrValidation, maxMessageLength)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: unknown notification type %q", ErrValidation, p.Type)
	}
	if p.TargetType != "" && !p.TargetType.IsValid() {
		return fmt.Errorf("%w: unknown target type %q", ErrValidation, p.TargetType)
	}
	if p.Priority != "" && !p.Priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, p.Priority)
	}
	return nil
}

// Send persists one notification record and attempts delivery.
// Live delivery is attempted first when the recipient is reachable; a
// successful live emit suppresses the push fallback. Delivery failures are
// silent - the durable record is the source of truth either way.
func (d *Dispatcher) Send(ctx context.Context, payload models.NotificationPayload) (*models.Notification, error) {
	if err := validate(&payload); err != nil {
		return nil, err
	}

	n := &models.Notification{
		Recipient:  payload.Recipient,
		Sender:     payload.Sender,
		Channel:    payload.Channel,
		Type:       payload.Type,
		Title:      payload.Title,
		Message:    payload.Message,
		TargetType: payload.TargetType,
		TargetID:   payload.TargetID,
		Metadata:   payload.Metadata,
		Priority:   payload.Priority,
	}
	if err := d.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	d.populate(n)
	d.deliver(ctx, n)
	return n, nil
}

// SendBatch fans one payload out to many recipients, each with its own
// independent record. Recipients are processed concurrently under a
// bounded limit; one recipient's failure never aborts the others.
func (d *Dispatcher) SendBatch(ctx context.Context, recipients []uint, payload models.NotificationPayload) error {
	g := new(errgroup.Group)
	g.SetLimit(batchConcurrency)

	errs := make([]error, len(recipients))
	for i, recipient := range recipients {
		p := payload
		p.Recipient = recipient
		g.Go(func() error {
			if _, err := d.Send(ctx, p); err != nil {
				log.Error().Err(err).Uint("recipient", recipient).Msg("batch notification failed")
				errs[i] = fmt.Errorf("recipient %d: %w", recipient, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info().Int("recipients", len(recipients)).Str("type", string(payload.Type)).Msg("batch notifications dispatched")
	return errors.Join(errs...)
}

// populate expands sender/channel references into compact display info.
// Lookup failures leave the fields empty; the record is already durable.
func (d *Dispatcher) populate(n *models.Notification) {
	if n.Sender != nil {
		if user, err := d.users.GetUserByID(*n.Sender); err == nil {
			compact := user.ToCompact()
			n.SenderInfo = &compact
		}
	}
	if n.Channel != nil {
		if channel, err := d.channels.GetChannelByID(*n.Channel); err == nil {
			compact := channel.ToCompact()
			n.ChannelInfo = &compact
		}
	}
}

// deliver runs the live-then-push delivery sequence for one record
func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) {
	online := d.live.IsUserOnline(n.Recipient)

	if online {
		if d.live.EmitToUser(n.Recipient, socket.Event{Event: socket.EventNotification, Data: n}) {
			n.DeliveryStatus.Socket = true
			if err := d.store.SetDeliveryStatus(ctx, n.ID, true, false); err != nil {
				log.Warn().Err(err).Str("notification_id", n.ID.Hex()).Msg("failed to record socket delivery")
			}
		}
	}

	if !online || !n.DeliveryStatus.Socket {
		if d.push.SendToUser(ctx, n.Recipient, pushMessageFor(n)) {
			n.DeliveryStatus.Push = true
			if err := d.store.SetDeliveryStatus(ctx, n.ID, false, true); err != nil {
				log.Warn().Err(err).Str("notification_id", n.ID.Hex()).Msg("failed to record push delivery")
			}
		}
	}
}

// pushMessageFor reduces a record to the payload sent to the push provider
func pushMessageFor(n *models.Notification) models.PushMessage {
	msg := models.PushMessage{
		Title: n.Title,
		Body:  n.Message,
		Data: map[string]string{
			"notificationId": n.ID.Hex(),
			"type":           string(n.Type),
			"targetType":     string(n.TargetType),
			"targetId":       n.TargetID,
		},
	}
	if thumb, ok := n.Metadata["thumbnailUrl"].(string); ok {
		msg.ImageURL = thumb
	}
	return msg
}
