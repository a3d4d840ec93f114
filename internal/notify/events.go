package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/vidora/backend/internal/models"
)

// truncate shortens free text for use as a notification message body,
// counting characters rather than bytes
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// NotifyNewVideo fans a new-upload notification out to every follower of
// the channel who keeps notifications enabled.
func (d *Dispatcher) NotifyNewVideo(ctx context.Context, videoID string, channelID uint, videoTitle, thumbnailURL string) error {
	return d.notifyNewContent(ctx, channelID, models.NotificationNewVideo, models.TargetVideo, videoID, videoTitle, thumbnailURL)
}

// NotifyNewShort fans a new-short notification out to the channel's followers
func (d *Dispatcher) NotifyNewShort(ctx context.Context, shortID string, channelID uint, shortTitle, thumbnailURL string) error {
	return d.notifyNewContent(ctx, channelID, models.NotificationNewShort, models.TargetShort, shortID, shortTitle, thumbnailURL)
}

func (d *Dispatcher) notifyNewContent(ctx context.Context, channelID uint, kind models.NotificationType, targetType models.TargetType, targetID, title, thumbnailURL string) error {
	channel, err := d.channels.GetChannelByID(channelID)
	if err != nil {
		return fmt.Errorf("failed to load channel %d: %w", channelID, err)
	}

	followers, err := d.follows.FollowerIDsWithNotifications(channelID)
	if err != nil {
		return fmt.Errorf("failed to resolve followers of channel %d: %w", channelID, err)
	}
	if len(followers) == 0 {
		return nil
	}

	noun := "video"
	if kind == models.NotificationNewShort {
		noun = "short"
	}

	err = d.SendBatch(ctx, followers, models.NotificationPayload{
		Sender:     &channel.OwnerID,
		Channel:    &channelID,
		Type:       kind,
		Title:      fmt.Sprintf("New %s from %s", noun, channel.Name),
		Message:    truncate(title, maxMessageLength),
		TargetType: targetType,
		TargetID:   targetID,
		Metadata: map[string]interface{}{
			"title":        title,
			"thumbnailUrl": thumbnailURL,
			"channelName":  channel.Name,
		},
		Priority: models.PriorityHigh,
	})
	if err != nil {
		return err
	}

	log.Info().Int("followers", len(followers)).Uint("channel_id", channelID).Str("type", string(kind)).Msg("notified followers about new content")
	return nil
}

// NotifyNewComment notifies a content owner about a comment on their
// content. Commenting on your own content is silently skipped.
func (d *Dispatcher) NotifyNewComment(ctx context.Context, commentID string, contentOwnerID, commenterID uint, commenterUsername, commentText string, targetType models.TargetType, targetID string) error {
	if contentOwnerID == commenterID {
		return nil
	}

	_, err := d.Send(ctx, models.NotificationPayload{
		Recipient:  contentOwnerID,
		Sender:     &commenterID,
		Type:       models.NotificationComment,
		Title:      fmt.Sprintf("%s commented on your %s", commenterUsername, strings.ToLower(string(targetType))),
		Message:    truncate(commentText, 100),
		TargetType: models.TargetComment,
		TargetID:   commentID,
		Metadata: map[string]interface{}{
			"commentText":       commentText,
			"commenterUsername": commenterUsername,
			"targetType":        string(targetType),
			"targetId":          targetID,
		},
		Priority: models.PriorityMedium,
	})
	return err
}

// NotifyCommentReply notifies a comment author about a reply. Replying to
// your own comment is silently skipped.
func (d *Dispatcher) NotifyCommentReply(ctx context.Context, replyID string, commentOwnerID, replierID uint, replierUsername, replyText string, targetType models.TargetType, targetID string) error {
	if commentOwnerID == replierID {
		return nil
	}

	_, err := d.Send(ctx, models.NotificationPayload{
		Recipient:  commentOwnerID,
		Sender:     &replierID,
		Type:       models.NotificationCommentReply,
		Title:      fmt.Sprintf("%s replied to your comment", replierUsername),
		Message:    truncate(replyText, 100),
		TargetType: models.TargetComment,
		TargetID:   replyID,
		Metadata: map[string]interface{}{
			"replyText":       replyText,
			"replierUsername": replierUsername,
			"targetType":      string(targetType),
			"targetId":        targetID,
		},
		Priority: models.PriorityMedium,
	})
	return err
}

// NotifyNewFollower notifies a channel owner about a new subscriber
func (d *Dispatcher) NotifyNewFollower(ctx context.Context, channelOwnerID, followerID uint, followerUsername string, channelID uint, channelName string) error {
	_, err := d.Send(ctx, models.NotificationPayload{
		Recipient: channelOwnerID,
		Sender:    &followerID,
		Channel:   &channelID,
		Type:      models.NotificationNewFollower,
		Title:     fmt.Sprintf("%s subscribed to your channel", followerUsername),
		Message:   fmt.Sprintf("You have a new subscriber on %s", channelName),
		Metadata: map[string]interface{}{
			"followerUsername": followerUsername,
			"channelName":      channelName,
		},
		Priority: models.PriorityLow,
	})
	return err
}

// NotifyLike notifies a content owner about a like on their content.
// Liking your own content is silently skipped.
func (d *Dispatcher) NotifyLike(ctx context.Context, contentOwnerID, likerID uint, likerUsername string, targetType models.TargetType, targetID string) error {
	if contentOwnerID == likerID {
		return nil
	}

	kind := strings.ToLower(string(targetType))
	_, err := d.Send(ctx, models.NotificationPayload{
		Recipient:  contentOwnerID,
		Sender:     &likerID,
		Type:       models.NotificationLike,
		Title:      fmt.Sprintf("%s liked your %s", likerUsername, kind),
		Message:    fmt.Sprintf("Your %s received a like", kind),
		TargetType: targetType,
		TargetID:   targetID,
		Metadata: map[string]interface{}{
			"likerUsername": likerUsername,
			"targetType":    string(targetType),
		},
		Priority: models.PriorityLow,
	})
	return err
}
