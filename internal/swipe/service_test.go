package swipe

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { t.rolledBack = true; return nil }
func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                                 { return nil }

type mockStore struct {
	tx         *fakeTx
	userExists bool
	prev       *string
	reciprocal bool
	match      *models.Match
	inserted   bool
	likers     []*models.User
	dbCount    int64

	upserted      []string
	matchInserted bool
	calls         []string
}

func (m *mockStore) Begin(ctx context.Context) (pgx.Tx, error) { return m.tx, nil }
func (m *mockStore) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.userExists, nil
}
func (m *mockStore) LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error {
	m.calls = append(m.calls, "lock_pair")
	return nil
}
func (m *mockStore) UpsertSwipe(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID, direction string) (*string, error) {
	m.calls = append(m.calls, "upsert_swipe")
	m.upserted = append(m.upserted, direction)
	return m.prev, nil
}
func (m *mockStore) HasLike(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID) (bool, error) {
	m.calls = append(m.calls, "has_like")
	return m.reciprocal, nil
}
func (m *mockStore) InsertMatch(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*models.Match, bool, error) {
	m.calls = append(m.calls, "insert_match")
	m.matchInserted = true
	return m.match, m.inserted, nil
}
func (m *mockStore) Deck(ctx context.Context, viewer *models.User, limit int) ([]*models.User, error) {
	return nil, nil
}
func (m *mockStore) Likers(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error) {
	return m.likers, nil
}
func (m *mockStore) CountLikers(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.dbCount, nil
}

type mockCounter struct {
	val         int64
	found       bool
	invalidated []string
	sets        map[string]int64
}

func (c *mockCounter) Get(ctx context.Context, userID string) (int64, bool, error) {
	return c.val, c.found, nil
}
func (c *mockCounter) Set(ctx context.Context, userID string, count int64) error {
	if c.sets == nil {
		c.sets = map[string]int64{}
	}
	c.sets[userID] = count
	return nil
}
func (c *mockCounter) Invalidate(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func collectNotifications(sent *[]notification.SendArgs) notification.InsertTxFunc {
	return func(ctx context.Context, tx pgx.Tx, args notification.SendArgs) error {
		*sent = append(*sent, args)
		return nil
	}
}

func seeker() *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleSeeker}
}

func TestRecordSwipeLikeWithoutReciprocal(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, userExists: true}
	counter := &mockCounter{}
	var sent []notification.SendArgs
	svc := NewService(store, counter, collectNotifications(&sent), nil)

	actor := seeker()
	target := uuid.New()
	res, err := svc.RecordSwipe(context.Background(), actor, target, models.DirectionLike)
	require.NoError(t, err)
	require.False(t, res.Matched)
	require.Nil(t, res.MatchID)
	require.True(t, store.tx.committed)
	require.False(t, store.matchInserted)
	require.Empty(t, sent)
	require.Equal(t, []string{target.String()}, counter.invalidated)
}

func TestRecordSwipeLocksPairBeforeReciprocalCheck(t *testing.T) {
	actor := seeker()
	target := uuid.New()
	ua, ub := models.OrderPair(actor.ID, target)
	match := &models.Match{ID: uuid.New(), UserA: ua, UserB: ub}
	store := &mockStore{tx: &fakeTx{}, userExists: true, reciprocal: true, match: match, inserted: true}
	svc := NewService(store, &mockCounter{}, collectNotifications(&[]notification.SendArgs{}), nil)

	_, err := svc.RecordSwipe(context.Background(), actor, target, models.DirectionLike)
	require.NoError(t, err)
	// the pair lock must be held before the swipe row is written and the
	// reciprocal like is read, otherwise two concurrent completing likes
	// can both miss each other and no match is ever formed
	require.Equal(t, []string{"lock_pair", "upsert_swipe", "has_like", "insert_match"}, store.calls)
}

func TestRecordSwipeMutualLikeCreatesMatch(t *testing.T) {
	actor := seeker()
	target := uuid.New()
	ua, ub := models.OrderPair(actor.ID, target)
	match := &models.Match{ID: uuid.New(), UserA: ua, UserB: ub}
	store := &mockStore{tx: &fakeTx{}, userExists: true, reciprocal: true, match: match, inserted: true}
	counter := &mockCounter{}
	var sent []notification.SendArgs
	svc := NewService(store, counter, collectNotifications(&sent), nil)

	res, err := svc.RecordSwipe(context.Background(), actor, target, models.DirectionLike)
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Equal(t, match.ID, *res.MatchID)
	require.True(t, store.tx.committed)

	require.Len(t, sent, 2)
	require.Equal(t, ua, sent[0].UserID)
	require.Equal(t, ub, sent[1].UserID)
	for _, n := range sent {
		require.Equal(t, models.NotifyMatch, n.NType)
	}
}

func TestRecordSwipeExistingMatchDoesNotNotifyAgain(t *testing.T) {
	actor := seeker()
	target := uuid.New()
	match := &models.Match{ID: uuid.New()}
	store := &mockStore{tx: &fakeTx{}, userExists: true, reciprocal: true, match: match, inserted: false}
	var sent []notification.SendArgs
	svc := NewService(store, &mockCounter{}, collectNotifications(&sent), nil)

	res, err := svc.RecordSwipe(context.Background(), actor, target, models.DirectionLike)
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Empty(t, sent)
}

func TestRecordSwipePassAfterLikeInvalidatesCounter(t *testing.T) {
	prev := models.DirectionLike
	store := &mockStore{tx: &fakeTx{}, userExists: true, prev: &prev}
	counter := &mockCounter{}
	svc := NewService(store, counter, collectNotifications(&[]notification.SendArgs{}), nil)

	target := uuid.New()
	res, err := svc.RecordSwipe(context.Background(), seeker(), target, models.DirectionPass)
	require.NoError(t, err)
	require.False(t, res.Matched)
	require.False(t, store.matchInserted)
	require.Equal(t, []string{target.String()}, counter.invalidated)
}

func TestRecordSwipeRepeatedLikeLeavesCounterAlone(t *testing.T) {
	prev := models.DirectionLike
	store := &mockStore{tx: &fakeTx{}, userExists: true, prev: &prev}
	counter := &mockCounter{}
	svc := NewService(store, counter, collectNotifications(&[]notification.SendArgs{}), nil)

	_, err := svc.RecordSwipe(context.Background(), seeker(), uuid.New(), models.DirectionLike)
	require.NoError(t, err)
	require.Empty(t, counter.invalidated)
}

func TestRecordSwipeValidation(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, userExists: true}
	svc := NewService(store, &mockCounter{}, collectNotifications(&[]notification.SendArgs{}), nil)
	actor := seeker()

	_, err := svc.RecordSwipe(context.Background(), actor, uuid.New(), "superlike")
	require.ErrorIs(t, err, ErrInvalidDirection)

	_, err = svc.RecordSwipe(context.Background(), actor, actor.ID, models.DirectionLike)
	require.ErrorIs(t, err, ErrSelfSwipe)

	store.userExists = false
	_, err = svc.RecordSwipe(context.Background(), actor, uuid.New(), models.DirectionLike)
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestLikesServesCountFromCache(t *testing.T) {
	store := &mockStore{dbCount: 99}
	counter := &mockCounter{val: 7, found: true}
	svc := NewService(store, counter, collectNotifications(&[]notification.SendArgs{}), nil)

	_, count, err := svc.Likes(context.Background(), uuid.New(), 20)
	require.NoError(t, err)
	require.Equal(t, int64(7), count)
	require.Empty(t, counter.sets)
}

func TestLikesFallsBackToDBAndPrimesCache(t *testing.T) {
	u := uuid.New()
	store := &mockStore{dbCount: 3, likers: []*models.User{{ID: uuid.New(), DisplayName: "Ada"}}}
	counter := &mockCounter{found: false}
	svc := NewService(store, counter, collectNotifications(&[]notification.SendArgs{}), nil)

	likers, count, err := svc.Likes(context.Background(), u, 20)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	require.Len(t, likers, 1)
	require.Equal(t, int64(3), counter.sets[u.String()])
}
