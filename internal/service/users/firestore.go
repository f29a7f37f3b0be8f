package users

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/codestats/internal/platform/logging"
	"github.com/janisto/codestats/internal/service/platforms"
)

const usersCollection = "users"

// firestoreUser maps the fields of a users document this service touches.
type firestoreUser struct {
	Handles        map[string]string `firestore:"handles"`
	SolvedProblems []string          `firestore:"solved_problems"`
	UpdatedAt      time.Time         `firestore:"updated_at"`
}

// FirestoreStore implements Service on the users collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Get retrieves a user record by id.
func (s *FirestoreStore) Get(ctx context.Context, userID string) (*User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var fu firestoreUser
	if err := doc.DataTo(&fu); err != nil {
		return nil, err
	}
	return fromFirestore(userID, fu), nil
}

// UpdateHandles edits handle entries with per-field updates inside a
// transaction, so concurrent writers of other user fields are not overwritten.
func (s *FirestoreStore) UpdateHandles(
	ctx context.Context,
	userID string,
	changes map[platforms.Platform]string,
) (*User, error) {
	normalized, err := normalizeHandles(changes)
	if err != nil {
		applog.LogAuditEvent(ctx, "update_handles", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	docRef := s.client.Collection(usersCollection).Doc(userID)
	now := time.Now().UTC()
	var result *User

	err = s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		var fu firestoreUser
		if err := doc.DataTo(&fu); err != nil {
			return err
		}

		updates := make([]firestore.Update, 0, len(normalized)+1)
		for p, h := range normalized {
			var value any = h
			if h == "" {
				value = firestore.Delete
			}
			updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"handles", string(p)}, Value: value})
		}
		updates = append(updates, firestore.Update{Path: "updated_at", Value: now})
		if err := tx.Update(docRef, updates); err != nil {
			return err
		}

		result = fromFirestore(userID, fu)
		result.Handles = applyHandles(result.Handles, normalized)
		result.UpdatedAt = now
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update_handles", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "update_handles", userID, "user", userID, applog.AuditSuccess,
		map[string]any{"platforms": len(normalized)})
	return result, nil
}

func fromFirestore(userID string, fu firestoreUser) *User {
	handles := make(map[platforms.Platform]string, len(fu.Handles))
	for k, v := range fu.Handles {
		if p, ok := platforms.Parse(k); ok && v != "" {
			handles[p] = v
		}
	}
	return &User{
		ID:             userID,
		Handles:        handles,
		SolvedProblems: fu.SolvedProblems,
		UpdatedAt:      fu.UpdatedAt,
	}
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
