package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"chatterAPI/internal/types/notification"
)

// PushProvider delivers a data push to a set of device tokens.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, data map[string]string) error
}

// PushService is the NotificationSink for the whole API: lifecycle events
// are queued and delivered by a small worker pool, so a handler never waits
// on push delivery and a failed push never affects a committed state
// change.
type PushService struct {
	db       DB
	provider PushProvider
	workers  int
	jobs     chan pushJob
	stop     chan struct{}
	wg       sync.WaitGroup
}

type pushJob struct {
	memberID int64
	kind     notification.EventKind
	payload  map[string]any
}

func NewPushService(db DB) *PushService {
	s := &PushService{
		db:      db,
		workers: 5,
		jobs:    make(chan pushJob, 100),
		stop:    make(chan struct{}),
	}
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// SetProvider injects the real push provider from main. Until one is set
// the service only logs events.
func (s *PushService) SetProvider(provider PushProvider) {
	s.provider = provider
}

// Notify queues a push event for memberID. Never blocks: when the queue is
// full the event is dropped and logged.
func (s *PushService) Notify(memberID int64, kind notification.EventKind, payload map[string]any) {
	select {
	case s.jobs <- pushJob{memberID: memberID, kind: kind, payload: payload}:
	default:
		log.Printf("PushService: queue full, dropping %s event for member %d", kind, memberID)
	}
}

// RegisterDevice stores the member's push token, replacing any previous
// registration.
func (s *PushService) RegisterDevice(ctx context.Context, memberID int64, token, platform string) error {
	if platform == "" {
		platform = "android"
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO push_tokens (memberid, token, platform, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (memberid) DO UPDATE SET token = $2, platform = $3, updated_at = NOW()`,
		memberID, token, platform,
	)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// RemoveDevice deletes the member's push token registration.
func (s *PushService) RemoveDevice(ctx context.Context, memberID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM push_tokens WHERE memberid = $1`, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}
	return nil
}

// Stop drains the workers. Queued jobs that have not started are dropped.
func (s *PushService) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *PushService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			s.process(job)
		case <-s.stop:
			return
		}
	}
}

// process runs on its own context: delivery must finish (or fail) on its
// own schedule regardless of the request that queued it.
func (s *PushService) process(job pushJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var t notification.DeviceToken
	err := s.db.QueryRow(ctx,
		`SELECT memberid, token, platform FROM push_tokens WHERE memberid = $1`,
		job.memberID,
	).Scan(&t.MemberID, &t.Token, &t.Platform)
	if err != nil {
		// No registered device or store error: best-effort, drop it.
		log.Printf("PushService: no deliverable token for member %d: %v", job.memberID, err)
		return
	}

	if s.provider == nil {
		log.Printf("PushService: no provider set, dropping %s event for member %d", job.kind, job.memberID)
		return
	}

	data := map[string]string{"type": string(job.kind)}
	for k, v := range job.payload {
		data[k] = fmt.Sprintf("%v", v)
	}

	if err := s.provider.SendPush(ctx, []notification.DeviceToken{t}, data); err != nil {
		log.Printf("PushService: push failed for member %d: %v", job.memberID, err)
	}
}
