package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
)

// StoreSink persiste eventos vía AuditRepository de forma asíncrona.
//
// Un worker único drena una cola acotada; si la cola se llena el evento se
// descarta y se incrementa el contador de drops. Un store lento o caído
// nunca frena ni falla el flujo de autorización.
type StoreSink struct {
	repo    repository.AuditRepository
	queue   chan Event
	done    chan struct{}
	timeout time.Duration

	// Dropped se incrementa cuando la cola está llena. Expuesto para que
	// la capa de métricas lo registre como counter func.
	dropped func()
}

// StoreSinkOptions configura el sink.
type StoreSinkOptions struct {
	QueueSize    int           // default 256
	WriteTimeout time.Duration // default 5s por insert
	OnDrop       func()        // hook de métricas, opcional
}

func NewStoreSink(repo repository.AuditRepository, opts StoreSinkOptions) *StoreSink {
	size := opts.QueueSize
	if size <= 0 {
		size = 256
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	onDrop := opts.OnDrop
	if onDrop == nil {
		onDrop = func() {}
	}
	s := &StoreSink{
		repo:    repo,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
		timeout: timeout,
		dropped: onDrop,
	}
	go s.drain()
	return s
}

// LogEvent encola el evento. No bloquea: si la cola está llena, dropea.
func (s *StoreSink) LogEvent(_ context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case s.queue <- ev:
	default:
		s.dropped()
	}
}

// Close detiene el worker tras drenar lo pendiente.
func (s *StoreSink) Close() {
	close(s.queue)
	<-s.done
}

func (s *StoreSink) drain() {
	defer close(s.done)
	log := logger.Named("audit.storesink")
	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.repo.Insert(ctx, repository.AuditEvent{
			ID:        uuid.NewString(),
			Type:      ev.Type,
			SubjectID: ev.SubjectID,
			Details:   ev.DetailsJSON(),
			IPAddress: ev.IPAddress,
			UserAgent: ev.UserAgent,
			CreatedAt: ev.At,
		})
		cancel()
		if err != nil {
			// Best-effort: se loguea y se sigue.
			log.Warn("audit insert failed", logger.EventType(ev.Type), logger.Err(err))
		}
	}
}

// Tee reparte cada evento a varios sinks (ej: log + store).
type Tee []Sink

func (t Tee) LogEvent(ctx context.Context, ev Event) {
	for _, s := range t {
		s.LogEvent(ctx, ev)
	}
}
