package firebase

import (
	"context"
	"errors"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Config holds Firebase configuration.
type Config struct {
	ProjectID string
	// Credentials is a service account JSON document or a path to one.
	// Empty uses application default credentials, or none against the emulators.
	Credentials string
}

// Clients holds initialized Firebase clients.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitializeClients sets up Firebase and returns the auth and Firestore clients.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	opts, err := clientOptions(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}

	ac, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, err
	}

	fc, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Auth:      ac,
		Firestore: fc,
	}, nil
}

func clientOptions(credentials string) ([]option.ClientOption, error) {
	credentials = strings.TrimSpace(credentials)
	switch {
	case credentials == "":
		return nil, nil
	case strings.HasPrefix(credentials, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentials))}, nil
	default:
		data, err := os.ReadFile(credentials)
		if err != nil {
			return nil, err
		}
		return []option.ClientOption{option.WithCredentialsJSON(data)}, nil
	}
}

// Ping checks that Firestore answers by listing at most one root collection.
func (c *Clients) Ping(ctx context.Context) error {
	if c.Firestore == nil {
		return errors.New("firestore client not initialized")
	}
	_, err := c.Firestore.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close closes the Firestore client.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
