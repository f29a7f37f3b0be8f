package firebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/janisto/codestats/internal/testutil"
)

func TestClientsCloseReturnsNilWhenFirestoreNil(t *testing.T) {
	if err := (&Clients{}).Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestPingWithoutFirestore(t *testing.T) {
	if err := (&Clients{}).Ping(context.Background()); err == nil {
		t.Fatal("expected error without Firestore client")
	}
}

func TestClientOptions(t *testing.T) {
	if opts, err := clientOptions("  "); err != nil || opts != nil {
		t.Fatalf("expected no options, got %v %v", opts, err)
	}
	if opts, err := clientOptions(`{"type":"service_account"}`); err != nil || len(opts) != 1 {
		t.Fatalf("expected inline JSON option, got %v %v", opts, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if opts, err := clientOptions(path); err != nil || len(opts) != 1 {
		t.Fatalf("expected file option, got %v %v", opts, err)
	}
	if _, err := clientOptions(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}

func TestInitializeClientsAgainstEmulator(t *testing.T) {
	testutil.SkipIfEmulatorUnavailable(t)
	testutil.SetupEmulator(t)

	ctx := context.Background()
	clients, err := InitializeClients(ctx, Config{ProjectID: testutil.ProjectID})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = clients.Close() })

	if err := clients.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
