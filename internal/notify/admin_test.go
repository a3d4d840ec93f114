package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidora/backend/internal/models"
)

func TestSendAdminRejectsInvalidPayload(t *testing.T) {
	adminStore := newFakeAdminStore()
	d := newTestDispatcher(newFakeStore(), adminStore, newFakeLive(true), &fakePushGateway{})

	_, err := d.SendAdmin(context.Background(), models.AdminNotificationPayload{
		Type: "new_meteor", Title: "t", Message: "m",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = d.SendAdmin(context.Background(), models.AdminNotificationPayload{
		Type: models.AdminNotificationNewUser, Title: "t", Message: "m", Priority: "urgent",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, adminStore.records)
}

func TestSendAdminRecordOnlyWithoutAdminUser(t *testing.T) {
	adminStore := newFakeAdminStore()
	live := newFakeLive(true, 99)
	push := &fakePushGateway{ok: true}
	d := newTestDispatcher(newFakeStore(), adminStore, live, push)
	d.adminUser = 0

	n, err := d.SendAdmin(context.Background(), models.AdminNotificationPayload{
		Type: models.AdminNotificationNewUser, Title: "New User Registered", Message: "bob just signed up",
	})
	require.NoError(t, err)

	// Record is kept but no delivery is attempted
	require.Len(t, adminStore.records, 1)
	assert.False(t, n.DeliveryStatus.Socket)
	assert.False(t, n.DeliveryStatus.Push)
	assert.Zero(t, live.emitCount())
	assert.Zero(t, push.pushCount())
}

func TestSendAdminLiveDelivery(t *testing.T) {
	adminStore := newFakeAdminStore()
	live := newFakeLive(true, 99)
	push := &fakePushGateway{ok: true}
	d := newTestDispatcher(newFakeStore(), adminStore, live, push)

	n, err := d.SendAdmin(context.Background(), models.AdminNotificationPayload{
		Type: models.AdminNotificationNewReport, Title: "New Report Submitted", Message: "spam report",
	})
	require.NoError(t, err)

	assert.True(t, n.DeliveryStatus.Socket)
	assert.False(t, n.DeliveryStatus.Push)
	assert.Equal(t, 1, live.emitCount())
	assert.Zero(t, push.pushCount())
}

func TestSendAdminPushFallback(t *testing.T) {
	adminStore := newFakeAdminStore()
	push := &fakePushGateway{ok: true}
	d := newTestDispatcher(newFakeStore(), adminStore, newFakeLive(true), push)

	n, err := d.SendAdmin(context.Background(), models.AdminNotificationPayload{
		Type: models.AdminNotificationNewChannel, Title: "New Channel Created", Message: "bob created a channel",
	})
	require.NoError(t, err)

	assert.False(t, n.DeliveryStatus.Socket)
	assert.True(t, n.DeliveryStatus.Push)
	assert.Equal(t, []uint{99}, push.pushed)
}

func TestNotifyAdminHelpersNeverPanicOnStoreFailure(t *testing.T) {
	adminStore := newFakeAdminStore()
	adminStore.fail = true
	d := newTestDispatcher(newFakeStore(), adminStore, newFakeLive(true), &fakePushGateway{})

	// These are fire-and-forget: a broken store must not surface anywhere
	d.NotifyAdminNewUser(context.Background(), 2, "bob", "bob@example.com", "")
	d.NotifyAdminNewChannel(context.Background(), 10, "Bob TV", "", 2, "bob")
	d.NotifyAdminNewReport(context.Background(), 2, "bob", "spam", "video", "vid-1")

	assert.Empty(t, adminStore.records)
}

func TestNotifyAdminNewUserContent(t *testing.T) {
	adminStore := newFakeAdminStore()
	d := newTestDispatcher(newFakeStore(), adminStore, newFakeLive(true), &fakePushGateway{})

	d.NotifyAdminNewUser(context.Background(), 2, "bob", "bob@example.com", "https://cdn.example.com/bob.png")

	require.Len(t, adminStore.records, 1)
	n := adminStore.records[0]
	assert.Equal(t, models.AdminNotificationNewUser, n.Type)
	assert.Equal(t, "New User Registered", n.Title)
	assert.Contains(t, n.Message, "bob")
	assert.Contains(t, n.Message, "bob@example.com")
	assert.Equal(t, "bob", n.Metadata["username"])
}
