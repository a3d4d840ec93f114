package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/socket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory NotificationRepository. failFor makes Create
// fail for specific recipients so batch isolation can be exercised.
type fakeStore struct {
	mu      sync.Mutex
	records []*models.Notification
	flags   map[primitive.ObjectID]models.DeliveryStatus
	failFor map[uint]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		flags:   make(map[primitive.ObjectID]models.DeliveryStatus),
		failFor: make(map[uint]bool),
	}
}

func (s *fakeStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[n.Recipient] {
		return errors.New("store unavailable")
	}
	n.ID = primitive.NewObjectID()
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	s.records = append(s.records, n)
	return nil
}

func (s *fakeStore) SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socketOK, pushOK bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.flags[id]
	if socketOK {
		ds.Socket = true
	}
	if pushOK {
		ds.Push = true
	}
	s.flags[id] = ds
	return nil
}

func (s *fakeStore) byRecipient(recipient uint) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.records {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *fakeStore) List(ctx context.Context, recipient uint, page, limit int, filter models.NotificationListFilter) ([]models.Notification, int64, int64, error) {
	return nil, 0, 0, nil
}
func (s *fakeStore) UnreadCount(ctx context.Context, recipient uint) (int64, error) { return 0, nil }
func (s *fakeStore) MarkRead(ctx context.Context, id string, recipient uint) error  { return nil }
func (s *fakeStore) MarkAllRead(ctx context.Context, recipient uint) error          { return nil }
func (s *fakeStore) SoftDelete(ctx context.Context, id string, recipient uint) error {
	return nil
}
func (s *fakeStore) ClearAll(ctx context.Context, recipient uint) error { return nil }
func (s *fakeStore) EnsureIndexes(ctx context.Context) error            { return nil }

type fakeAdminStore struct {
	mu      sync.Mutex
	records []*models.AdminNotification
	flags   map[primitive.ObjectID]models.DeliveryStatus
	fail    bool
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{flags: make(map[primitive.ObjectID]models.DeliveryStatus)}
}

func (s *fakeAdminStore) Create(ctx context.Context, n *models.AdminNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store unavailable")
	}
	n.ID = primitive.NewObjectID()
	s.records = append(s.records, n)
	return nil
}

func (s *fakeAdminStore) SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socketOK, pushOK bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.flags[id]
	if socketOK {
		ds.Socket = true
	}
	if pushOK {
		ds.Push = true
	}
	s.flags[id] = ds
	return nil
}

func (s *fakeAdminStore) List(ctx context.Context, page, limit int, filter models.NotificationListFilter) ([]models.AdminNotification, int64, int64, error) {
	return nil, 0, 0, nil
}
func (s *fakeAdminStore) UnreadCount(ctx context.Context) (int64, error) { return 0, nil }
func (s *fakeAdminStore) MarkRead(ctx context.Context, id string) error  { return nil }
func (s *fakeAdminStore) MarkAllRead(ctx context.Context) error          { return nil }
func (s *fakeAdminStore) SoftDelete(ctx context.Context, id string) error {
	return nil
}
func (s *fakeAdminStore) EnsureIndexes(ctx context.Context) error { return nil }

type fakeUsers struct {
	users map[uint]*models.User
}

func (f *fakeUsers) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type fakeChannels struct {
	channels map[uint]*models.Channel
}

func (f *fakeChannels) GetChannelByID(id uint) (*models.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, errors.New("channel not found")
	}
	return ch, nil
}

type fakeFollows struct {
	followers map[uint][]uint
}

func (f *fakeFollows) FollowerIDsWithNotifications(channelID uint) ([]uint, error) {
	return f.followers[channelID], nil
}

// fakeLive records emits; online and emitOK control the delivery outcome
type fakeLive struct {
	mu     sync.Mutex
	online map[uint]bool
	emitOK bool
	emits  []socket.Event
}

func newFakeLive(emitOK bool, online ...uint) *fakeLive {
	l := &fakeLive{online: make(map[uint]bool), emitOK: emitOK}
	for _, id := range online {
		l.online[id] = true
	}
	return l
}

func (l *fakeLive) IsUserOnline(userID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.online[userID]
}

func (l *fakeLive) EmitToUser(userID uint, ev socket.Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.online[userID] || !l.emitOK {
		return false
	}
	l.emits = append(l.emits, ev)
	return true
}

func (l *fakeLive) emitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.emits)
}

// fakePushGateway records the users pushed to; ok is the reported outcome
type fakePushGateway struct {
	mu     sync.Mutex
	ok     bool
	pushed []uint
}

func (p *fakePushGateway) SendToUser(ctx context.Context, userID uint, msg models.PushMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, userID)
	return p.ok
}

func (p *fakePushGateway) pushCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func newTestDispatcher(store *fakeStore, adminStore *fakeAdminStore, live *fakeLive, push *fakePushGateway) *Dispatcher {
	users := &fakeUsers{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", Avatar: "https://cdn.example.com/alice.png"},
		2: {ID: 2, Username: "bob"},
	}}
	channels := &fakeChannels{channels: map[uint]*models.Channel{
		10: {ID: 10, OwnerID: 1, Name: "Alice Vlogs", Icon: "https://cdn.example.com/icon.png"},
	}}
	follows := &fakeFollows{followers: map[uint][]uint{
		10: {2, 3, 4},
	}}
	return NewDispatcher(store, adminStore, users, channels, follows, live, push, 99)
}
