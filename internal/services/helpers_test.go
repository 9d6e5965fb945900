package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/testutil"

	"gorm.io/gorm"
)

// fakeDirectory knows a fixed set of profiles; other ids fail the lookup.
type fakeDirectory struct {
	mu       sync.Mutex
	profiles map[string]identity.Profile
	calls    int
}

func (d *fakeDirectory) Profile(_ context.Context, userID string) (identity.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if p, ok := d.profiles[userID]; ok {
		return p, nil
	}
	return identity.Profile{}, errors.New("identity provider unavailable")
}

type harness struct {
	db        *gorm.DB
	fx        *testutil.Fixtures
	dir       *fakeDirectory
	listing   *ListingService
	mutations *MutationService
}

func newHarness(t *testing.T) *harness {
	conn := testutil.NewDB(t)
	dir := &fakeDirectory{profiles: map[string]identity.Profile{
		"alice": {ID: "alice", Name: "Alice", Username: "alice"},
		"bob":   {ID: "bob", Name: "Bob", Username: "bob"},
	}}
	return &harness{
		db:        conn,
		fx:        testutil.NewFixtures(t, conn),
		dir:       dir,
		listing:   NewListingService(conn, dir, nil, nil, 100),
		mutations: NewMutationService(conn, nil, nil),
	}
}

func uintPtr(v uint) *uint {
	return &v
}

func page(n, limit int) PageQuery {
	return PageQuery{Page: n, Limit: limit}
}
