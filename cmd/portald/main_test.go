package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscatalyst/portal/internal/api"
	"github.com/campuscatalyst/portal/pkg/engine"
)

type stubPersister struct {
	mu      sync.Mutex
	data    map[string]map[string][]engine.Record
	loadErr error
	saved   []string
}

func (p *stubPersister) SaveScope(scope string, _ map[string][]engine.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, scope)
	return nil
}

func (p *stubPersister) LoadAll() (map[string]map[string][]engine.Record, error) {
	return p.data, p.loadErr
}

func TestOpenStoreRefusesFailedLoad(t *testing.T) {
	p := &stubPersister{loadErr: errors.New("decode portal_records")}
	store, _, err := openStore(p)
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Empty(t, p.saved)
}

func TestOpenStoreKeepsStoredScopesFromSeeding(t *testing.T) {
	p := &stubPersister{data: map[string]map[string][]engine.Record{
		engine.SharedScope: {"_accounts": {{"id": "acc-1", "email": "tpo@campus.edu"}}},
	}}
	store, scopes, err := openStore(p)
	require.NoError(t, err)
	assert.Equal(t, 1, scopes)

	seeded, err := api.Seed(store)
	require.NoError(t, err)
	assert.False(t, seeded)
	store.Wait()
	assert.Empty(t, p.saved)
}
