package session

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sessionCollection = "sessions"

// RevocationStore remembers when each user last signed out.
type RevocationStore interface {
	// RevokedAt returns the zero time if the user never signed out.
	RevokedAt(ctx context.Context, userID string) (time.Time, error)
	Revoke(ctx context.Context, userID string, at time.Time) error
}

type firestoreRevocations struct {
	db *firestore.Client
}

func NewFirestoreRevocations(db *firestore.Client) RevocationStore {
	return &firestoreRevocations{db: db}
}

type sessionDoc struct {
	RevokedAt time.Time `firestore:"revokedAt"`
}

func (r *firestoreRevocations) RevokedAt(ctx context.Context, userID string) (time.Time, error) {
	doc, err := r.db.Collection(sessionCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	var s sessionDoc
	if err := doc.DataTo(&s); err != nil {
		return time.Time{}, err
	}
	return s.RevokedAt, nil
}

func (r *firestoreRevocations) Revoke(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Collection(sessionCollection).Doc(userID).Set(ctx, map[string]any{
		"revokedAt": at,
	}, firestore.MergeAll)
	return err
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryRevocations keeps sign-outs in process memory.
func NewMemoryRevocations() RevocationStore {
	return &memoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocations) RevokedAt(_ context.Context, userID string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[userID], nil
}

func (m *memoryRevocations) Revoke(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[userID] = at
	return nil
}
