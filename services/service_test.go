package services

import (
	"sync"
	"testing"

	"chatterAPI/internal/types/notification"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// sinkCall records a single Notify invocation.
type sinkCall struct {
	MemberID int64
	Kind     notification.EventKind
	Payload  map[string]any
}

// fakeSink is a synchronous NotificationSink for tests.
type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (f *fakeSink) Notify(memberID int64, kind notification.EventKind, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sinkCall{MemberID: memberID, Kind: kind, Payload: payload})
}

func (f *fakeSink) Calls() []sinkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sinkCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}
