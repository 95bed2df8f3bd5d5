// Package storetest opens throwaway stores for tests
package storetest

import (
	"context"
	"testing"

	"shelfsync/internal/platform/store"
	kit "shelfsync/internal/platform/testkit"
)

// Open returns an in-memory store on clk that is closed with the test
func Open(t *testing.T, clk *kit.Clock) *store.Store {
	t.Helper()
	var opts []store.Option
	if clk != nil {
		opts = append(opts, store.WithClock(clk.Now))
	}
	kv, err := store.OpenInMemory(opts...)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close(context.Background()) })
	return kv
}
