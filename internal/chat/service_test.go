package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/swipetonpro/backend/internal/models"
)

type mockStore struct {
	match    *models.Match
	inserted *models.Message
	marked   bool
}

func (m *mockStore) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return m.match, nil
}
func (m *mockStore) ListMatches(ctx context.Context, userID uuid.UUID) ([]*models.Match, error) {
	return nil, nil
}
func (m *mockStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.inserted = msg
	return nil
}
func (m *mockStore) ListMessages(ctx context.Context, matchID uuid.UUID, limit int) ([]*models.Message, error) {
	return []*models.Message{}, nil
}
func (m *mockStore) MarkMessagesRead(ctx context.Context, matchID, readerID uuid.UUID) error {
	m.marked = true
	return nil
}

func lockedMatch(seekerID, proID uuid.UUID) *models.Match {
	ua, ub := models.OrderPair(seekerID, proID)
	return &models.Match{ID: uuid.New(), UserA: ua, UserB: ub}
}

func TestSendMessageSeekerBlockedUntilUnlock(t *testing.T) {
	seeker := &models.User{ID: uuid.New(), Role: models.RoleSeeker}
	pro := &models.User{ID: uuid.New(), Role: models.RoleProfessional, VerificationStatus: models.VerificationActive}
	store := &mockStore{match: lockedMatch(seeker.ID, pro.ID)}
	svc := NewService(store, nil)

	_, err := svc.SendMessage(context.Background(), seeker, store.match.ID, SendInput{MsgType: models.MessageText, Content: "hi"})
	require.ErrorIs(t, err, ErrChatLocked)
	require.Nil(t, store.inserted)
}

func TestSendMessageProSideAlwaysOpen(t *testing.T) {
	seeker := &models.User{ID: uuid.New(), Role: models.RoleSeeker}
	pro := &models.User{ID: uuid.New(), Role: models.RoleProfessional, VerificationStatus: models.VerificationActive}
	store := &mockStore{match: lockedMatch(seeker.ID, pro.ID)}
	svc := NewService(store, nil)

	msg, err := svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageText, Content: "bonjour"})
	require.NoError(t, err)
	require.Equal(t, pro.ID, msg.SenderID)
	require.Equal(t, "bonjour", msg.Content)
}

func TestSendMessageSeekerAfterUnlock(t *testing.T) {
	seeker := &models.User{ID: uuid.New(), Role: models.RoleSeeker}
	pro := &models.User{ID: uuid.New(), Role: models.RoleProfessional}
	m := lockedMatch(seeker.ID, pro.ID)
	m.ChatUnlocked = true
	store := &mockStore{match: m}
	svc := NewService(store, nil)

	_, err := svc.SendMessage(context.Background(), seeker, m.ID, SendInput{MsgType: models.MessageText, Content: "merci"})
	require.NoError(t, err)
	require.NotNil(t, store.inserted)
}

func TestSendMessageOutsiderForbidden(t *testing.T) {
	store := &mockStore{match: lockedMatch(uuid.New(), uuid.New())}
	svc := NewService(store, nil)

	outsider := &models.User{ID: uuid.New(), Role: models.RoleProfessional}
	_, err := svc.SendMessage(context.Background(), outsider, store.match.ID, SendInput{MsgType: models.MessageText, Content: "hey"})
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessagePayloadValidation(t *testing.T) {
	pro := &models.User{ID: uuid.New(), Role: models.RoleProfessional}
	store := &mockStore{match: lockedMatch(uuid.New(), pro.ID)}
	svc := NewService(store, nil)

	_, err := svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageText})
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageQuoteRequest, Content: "devis"})
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageMeetingRequest, Content: "rdv"})
	require.ErrorIs(t, err, ErrInvalidMessage)

	amount := int64(15000)
	_, err = svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageQuoteRequest, Content: "devis", QuoteAmountCents: &amount})
	require.NoError(t, err)

	when := time.Now().Add(48 * time.Hour)
	_, err = svc.SendMessage(context.Background(), pro, store.match.ID, SendInput{MsgType: models.MessageMeetingRequest, Content: "rdv", MeetingAt: &when})
	require.NoError(t, err)
}

func TestListMessagesMarksRead(t *testing.T) {
	seeker := &models.User{ID: uuid.New(), Role: models.RoleSeeker}
	store := &mockStore{match: lockedMatch(seeker.ID, uuid.New())}
	svc := NewService(store, nil)

	_, err := svc.ListMessages(context.Background(), seeker, store.match.ID, 50)
	require.NoError(t, err)
	require.True(t, store.marked)
}

func TestListMessagesOutsiderForbidden(t *testing.T) {
	store := &mockStore{match: lockedMatch(uuid.New(), uuid.New())}
	svc := NewService(store, nil)

	_, err := svc.ListMessages(context.Background(), &models.User{ID: uuid.New()}, store.match.ID, 50)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.False(t, store.marked)
}
