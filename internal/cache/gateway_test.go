package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore is an in-memory Store that records calls and can fail on demand.
type recordingStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	gets    int
	sets    int
	deleted []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *recordingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *recordingStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetEx(ctx, key, 0, value)
}

func (s *recordingStore) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *recordingStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *recordingStore) Close() error { return nil }

type listing struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func newTestGateway(store Store) (*Gateway, *bytes.Buffer) {
	logs := &bytes.Buffer{}
	return NewGateway(store, log.New(logs, "", 0), time.Second), logs
}

func TestFetch_MissComputesAndCachesWithTTL(t *testing.T) {
	store := newRecordingStore()
	gw, _ := newTestGateway(store)

	calls := 0
	compute := func(ctx context.Context) (listing, error) {
		calls++
		return listing{Items: []string{"a", "b"}, Total: 2}, nil
	}

	got, err := Fetch(context.Background(), gw, "PRODUCTS:page=1", 2*time.Minute, compute)

	require.NoError(t, err)
	assert.Equal(t, listing{Items: []string{"a", "b"}, Total: 2}, got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2*time.Minute, store.ttls["PRODUCTS:page=1"])
	assert.JSONEq(t, `{"items":["a","b"],"total":2}`, string(store.data["PRODUCTS:page=1"]))
}

func TestFetch_HitSkipsComputeAndIsStable(t *testing.T) {
	store := newRecordingStore()
	gw, _ := newTestGateway(store)

	calls := 0
	compute := func(ctx context.Context) (listing, error) {
		calls++
		return listing{Items: []string{"x"}, Total: 1}, nil
	}

	first, err := Fetch(context.Background(), gw, "k", time.Minute, compute)
	require.NoError(t, err)
	second, err := Fetch(context.Background(), gw, "k", time.Minute, compute)
	require.NoError(t, err)
	third, err := Fetch(context.Background(), gw, "k", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "compute must run only on the first miss")
	secondJSON, _ := json.Marshal(second)
	thirdJSON, _ := json.Marshal(third)
	firstJSON, _ := json.Marshal(first)
	assert.Equal(t, secondJSON, thirdJSON)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestFetch_ReadFailureFallsBackToCompute(t *testing.T) {
	store := newRecordingStore()
	store.getErr = errors.New("dial tcp: connection refused")
	gw, logs := newTestGateway(store)

	got, err := Fetch(context.Background(), gw, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Contains(t, logs.String(), "connection refused")
}

func TestFetch_WriteFailureStillReturnsValue(t *testing.T) {
	store := newRecordingStore()
	store.setErr = errors.New("OOM command not allowed")
	gw, logs := newTestGateway(store)

	got, err := Fetch(context.Background(), gw, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, 1, store.sets)
	assert.Contains(t, logs.String(), "write \"k\" failed")
}

func TestFetch_ComputeErrorIsNotCached(t *testing.T) {
	store := newRecordingStore()
	gw, _ := newTestGateway(store)
	notFound := errors.New("not found")

	_, err := Fetch(context.Background(), gw, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "", notFound
	})

	assert.Same(t, notFound, err)
	assert.Zero(t, store.sets)
	assert.Empty(t, store.data)
}

func TestFetch_UndecodableEntryIsDroppedAndRecomputed(t *testing.T) {
	store := newRecordingStore()
	store.data["k"] = []byte("{not json")
	gw, _ := newTestGateway(store)

	got, err := Fetch(context.Background(), gw, "k", time.Minute, func(ctx context.Context) (listing, error) {
		return listing{Total: 3}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, []string{"k"}, store.deleted)
	assert.JSONEq(t, `{"items":null,"total":3}`, string(store.data["k"]))
}

func TestFetch_CancelledRequestStillPopulatesCache(t *testing.T) {
	store := newRecordingStore()
	gw, _ := newTestGateway(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, gw, "k", time.Minute, func(ctx context.Context) (int, error) { return 7, nil })

	require.NoError(t, err)
	assert.Equal(t, []byte("7"), store.data["k"])
}

func TestFetch_ZeroTTLUsesSet(t *testing.T) {
	store := newRecordingStore()
	gw, _ := newTestGateway(store)

	_, err := Fetch(context.Background(), gw, "k", 0, func(ctx context.Context) (int, error) { return 1, nil })

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), store.ttls["k"])
}
