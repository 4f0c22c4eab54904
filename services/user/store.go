package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const userCollection = "users"

// Store is the persistence collaborator for user documents.
type Store interface {
	// GetRecord loads a single user. Returns ErrNotFound when the document is absent.
	GetRecord(ctx context.Context, id string) (*User, error)
	// PutRecord overwrites the whole document stored under id.
	PutRecord(ctx context.Context, id string, u User) error
	// SubscribeCollection opens a feed of full collection snapshots ordered
	// by createdAt ascending. The feed ends when ctx is cancelled or Stop is called.
	SubscribeCollection(ctx context.Context) (Feed, error)
}

// Feed delivers complete snapshots of the user collection.
type Feed interface {
	// Next blocks until the next snapshot is available. It returns
	// ErrFeedClosed once the feed is stopped or its context is done.
	Next() (Batch, error)
	Stop()
}

// Document is an unparsed user document.
type Document struct {
	ID   string
	Data map[string]any
}

// Batch is one snapshot of the whole collection, in query order.
type Batch struct {
	Documents []Document
	ReadAt    time.Time
}

type firestoreStore struct {
	db *firestore.Client
}

var _ Store = (*firestoreStore)(nil)

func NewFirestoreStore(db *firestore.Client) Store {
	return &firestoreStore{db: db}
}

func (s *firestoreStore) GetRecord(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	doc, err := s.db.Collection(userCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(fmt.Sprintf("get user %s", id), err)
	}
	u, err := ParseRecord(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *firestoreStore) PutRecord(ctx context.Context, id string, u User) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := s.db.Collection(userCollection).Doc(id).Set(ctx, ToDocument(u))
	if err != nil {
		return classify(fmt.Sprintf("put user %s", id), err)
	}
	return nil
}

func (s *firestoreStore) SubscribeCollection(ctx context.Context) (Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrFeedClosed
	}
	it := s.db.Collection(userCollection).
		OrderBy(fieldCreatedAt, firestore.Asc).
		Snapshots(ctx)
	return &firestoreFeed{it: it}, nil
}

type firestoreFeed struct {
	it *firestore.QuerySnapshotIterator
}

func (f *firestoreFeed) Next() (Batch, error) {
	qs, err := f.it.Next()
	if err != nil {
		if errors.Is(err, iterator.Done) || errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
			return Batch{}, ErrFeedClosed
		}
		return Batch{}, classify("receive user snapshot", err)
	}
	docs, err := qs.Documents.GetAll()
	if err != nil {
		return Batch{}, fmt.Errorf("%w: read user snapshot: %v", ErrParse, err)
	}
	batch := Batch{
		Documents: make([]Document, 0, len(docs)),
		ReadAt:    qs.ReadTime,
	}
	for _, doc := range docs {
		batch.Documents = append(batch.Documents, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return batch, nil
}

func (f *firestoreFeed) Stop() {
	f.it.Stop()
}

// classify wraps a Firestore failure with ErrTransport, keeping the gRPC
// status in the message.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %s", ErrTransport, op, status.Convert(err).Message())
}
