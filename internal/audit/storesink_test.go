package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// fakeAuditRepo acumula inserts; opcionalmente bloquea hasta release.
type fakeAuditRepo struct {
	mu      sync.Mutex
	events  []repository.AuditEvent
	failAll bool

	started chan struct{} // se señala al entrar a Insert
	release chan struct{} // Insert espera acá si no es nil
}

func (f *fakeAuditRepo) Insert(_ context.Context, ev repository.AuditEvent) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.failAll {
		return errors.New("insert failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestStoreSink_DrainsEventsToRepo(t *testing.T) {
	repo := &fakeAuditRepo{}
	sink := NewStoreSink(repo, StoreSinkOptions{QueueSize: 8})

	sink.LogEvent(context.Background(), Event{
		Type:      EventConsentGranted,
		SubjectID: "u-1",
		Details:   map[string]any{"client_id": "app"},
	})
	sink.LogEvent(context.Background(), Event{Type: EventConsentRevoked, SubjectID: "u-1"})
	sink.Close()

	require.Equal(t, 2, repo.count())
	require.Equal(t, EventConsentGranted, repo.events[0].Type)
	require.Equal(t, "u-1", repo.events[0].SubjectID)
	require.NotEmpty(t, repo.events[0].ID)
	require.False(t, repo.events[0].CreatedAt.IsZero())
	require.JSONEq(t, `{"client_id":"app"}`, string(repo.events[0].Details))
}

func TestStoreSink_FullQueueDropsWithoutBlocking(t *testing.T) {
	repo := &fakeAuditRepo{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	var drops int
	sink := NewStoreSink(repo, StoreSinkOptions{QueueSize: 1, OnDrop: func() { drops++ }})

	ctx := context.Background()
	sink.LogEvent(ctx, Event{Type: EventConsentGranted}) // lo toma el worker
	<-repo.started                                       // worker bloqueado en Insert
	sink.LogEvent(ctx, Event{Type: EventConsentGranted}) // llena la cola
	sink.LogEvent(ctx, Event{Type: EventConsentGranted}) // cola llena => drop

	require.Equal(t, 1, drops)

	close(repo.release)
	sink.Close()
	require.Equal(t, 2, repo.count())
}

func TestStoreSink_InsertFailureIsSwallowed(t *testing.T) {
	repo := &fakeAuditRepo{failAll: true}
	sink := NewStoreSink(repo, StoreSinkOptions{QueueSize: 4, WriteTimeout: time.Second})

	// No panic, no error hacia el caller.
	sink.LogEvent(context.Background(), Event{Type: EventConsentTampering, SubjectID: "u-1"})
	sink.Close()
	require.Equal(t, 0, repo.count())
}

func TestTee_FansOutToAllSinks(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	tee := Tee{a, b}

	tee.LogEvent(context.Background(), Event{Type: EventClientScopeRestricted})

	require.Equal(t, 1, a.CountByType(EventClientScopeRestricted))
	require.Equal(t, 1, b.CountByType(EventClientScopeRestricted))
}
