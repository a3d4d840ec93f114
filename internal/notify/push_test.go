package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidora/backend/internal/models"
)

// fakeTokenRepo is an in-memory DeviceTokenRepository that models the
// active flag the way the Mongo store does: ActiveForUser filters on it,
// Deactivate lowers it, Upsert raises it again.
type fakeTokenRepo struct {
	regs        []*models.UserToken
	deactivated []string
	loadErr     error
}

func (f *fakeTokenRepo) ActiveForUser(ctx context.Context, userID uint) ([]models.UserToken, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := []models.UserToken{}
	for _, reg := range f.regs {
		if reg.User == userID && reg.IsActive {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) Deactivate(ctx context.Context, tokens []string) error {
	f.deactivated = append(f.deactivated, tokens...)
	dead := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		dead[token] = true
	}
	for _, reg := range f.regs {
		if dead[reg.FCMToken] {
			reg.IsActive = false
		}
	}
	return nil
}

func (f *fakeTokenRepo) Upsert(ctx context.Context, userID uint, fcmToken string, deviceType models.DeviceType, deviceID string) error {
	for _, reg := range f.regs {
		if reg.User == userID && reg.DeviceID == deviceID {
			reg.FCMToken = fcmToken
			reg.DeviceType = deviceType
			reg.IsActive = true
			return nil
		}
	}
	f.regs = append(f.regs, &models.UserToken{
		User: userID, FCMToken: fcmToken, DeviceType: deviceType, DeviceID: deviceID, IsActive: true,
	})
	return nil
}

func (f *fakeTokenRepo) Remove(ctx context.Context, userID uint, deviceID string) error {
	kept := f.regs[:0]
	for _, reg := range f.regs {
		if reg.User != userID || reg.DeviceID != deviceID {
			kept = append(kept, reg)
		}
	}
	f.regs = kept
	return nil
}

func (f *fakeTokenRepo) EnsureIndexes(ctx context.Context) error { return nil }

// fakeProvider scripts the multicast outcome per token
type fakeProvider struct {
	failTokens map[string]bool
	err        error
	calls      int
	lastMsg    *messaging.MulticastMessage
}

func (p *fakeProvider) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	p.calls++
	p.lastMsg = message
	if p.err != nil {
		return nil, p.err
	}
	resp := &messaging.BatchResponse{}
	for _, token := range message.Tokens {
		if p.failTokens[token] {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: errors.New("registration-token-not-registered")})
		} else {
			resp.SuccessCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "msg-" + token})
		}
	}
	return resp, nil
}

func tokenRepoFor(userID uint, tokens ...string) *fakeTokenRepo {
	repo := &fakeTokenRepo{}
	for i, token := range tokens {
		repo.regs = append(repo.regs, &models.UserToken{
			User: userID, FCMToken: token, DeviceID: fmt.Sprintf("dev-%d", i), IsActive: true,
		})
	}
	return repo
}

func TestSendToUserNoTokens(t *testing.T) {
	provider := &fakeProvider{}
	g := NewFCMGateway(provider, &fakeTokenRepo{})

	ok := g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"})

	// No tokens: short-circuit without touching the provider
	assert.False(t, ok)
	assert.Zero(t, provider.calls)
}

func TestSendToUserTokenLoadFailure(t *testing.T) {
	provider := &fakeProvider{}
	g := NewFCMGateway(provider, &fakeTokenRepo{loadErr: errors.New("mongo down")})

	assert.False(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.Zero(t, provider.calls)
}

func TestSendToUserAllSucceed(t *testing.T) {
	repo := tokenRepoFor(7, "tok-a", "tok-b")
	provider := &fakeProvider{}
	g := NewFCMGateway(provider, repo)

	ok := g.SendToUser(context.Background(), 7, models.PushMessage{
		Title:    "New video from Alice Vlogs",
		Body:     "My trip to Norway",
		ImageURL: "https://cdn.example.com/thumb.jpg",
		Data:     map[string]string{"type": "new_video"},
	})

	assert.True(t, ok)
	assert.Empty(t, repo.deactivated)
	require.NotNil(t, provider.lastMsg)
	assert.Equal(t, []string{"tok-a", "tok-b"}, provider.lastMsg.Tokens)
	assert.Equal(t, "New video from Alice Vlogs", provider.lastMsg.Notification.Title)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", provider.lastMsg.Notification.ImageURL)
	assert.Equal(t, "new_video", provider.lastMsg.Data["type"])
}

func TestSendToUserPartialFailureDeactivatesFailedTokens(t *testing.T) {
	repo := tokenRepoFor(7, "tok-good", "tok-stale", "tok-dead")
	provider := &fakeProvider{failTokens: map[string]bool{"tok-stale": true, "tok-dead": true}}
	g := NewFCMGateway(provider, repo)

	ok := g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"})

	// One success is enough; exactly the rejected tokens get deactivated
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"tok-stale", "tok-dead"}, repo.deactivated)
}

func TestSendToUserAllTokensRejected(t *testing.T) {
	repo := tokenRepoFor(7, "tok-a", "tok-b")
	provider := &fakeProvider{failTokens: map[string]bool{"tok-a": true, "tok-b": true}}
	g := NewFCMGateway(provider, repo)

	assert.False(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, repo.deactivated)
}

func TestDeactivatedTokenExcludedFromLaterSends(t *testing.T) {
	repo := tokenRepoFor(7, "tok-good", "tok-stale")
	provider := &fakeProvider{failTokens: map[string]bool{"tok-stale": true}}
	g := NewFCMGateway(provider, repo)

	require.True(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.Equal(t, []string{"tok-stale"}, repo.deactivated)

	// The next send never offers the deactivated token to the provider
	provider.failTokens = nil
	require.True(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.Equal(t, []string{"tok-good"}, provider.lastMsg.Tokens)

	// Re-registering the device reactivates its token
	require.NoError(t, repo.Upsert(context.Background(), 7, "tok-fresh", models.DeviceAndroid, "dev-1"))
	require.True(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.ElementsMatch(t, []string{"tok-good", "tok-fresh"}, provider.lastMsg.Tokens)
}

func TestSendToUserProviderError(t *testing.T) {
	repo := tokenRepoFor(7, "tok-a")
	provider := &fakeProvider{err: errors.New("fcm unavailable")}
	g := NewFCMGateway(provider, repo)

	assert.False(t, g.SendToUser(context.Background(), 7, models.PushMessage{Title: "hi", Body: "there"}))
	assert.Empty(t, repo.deactivated)
}
