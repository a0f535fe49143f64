package store

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/findash-backend/internal/errs"
)

type stateDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type firestoreBackend struct {
	client *firestore.Client
}

func NewFirestoreBackend(client *firestore.Client) *firestoreBackend {
	return &firestoreBackend{client: client}
}

func (s *firestoreBackend) doc(uid, key string) *firestore.DocumentRef {
	// document ids cannot contain slashes
	id := strings.ReplaceAll(key, "/", "_")
	return s.client.Collection("users").Doc(uid).Collection("state").Doc(id)
}

func (s *firestoreBackend) Get(ctx context.Context, uid, key string) ([]byte, error) {
	snap, err := s.doc(uid, key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError(key + " not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get "+key, err)
	}
	var d stateDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse "+key, err)
	}
	return []byte(d.Value), nil
}

func (s *firestoreBackend) Put(ctx context.Context, uid, key string, value []byte) error {
	_, err := s.doc(uid, key).Set(ctx, stateDoc{Value: string(value), UpdatedAt: time.Now()})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save "+key, err)
	}
	return nil
}

func (s *firestoreBackend) Delete(ctx context.Context, uid, key string) error {
	_, err := s.doc(uid, key).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errs.NewDatabaseError("delete", "failed to delete "+key, err)
	}
	return nil
}
