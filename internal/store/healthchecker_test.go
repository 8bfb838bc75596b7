package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/model"
)

// pingStore implements Store and health.HealthPinger.
type pingStore struct {
	nopStore
	pingErr error
}

func (p pingStore) HealthPing(ctx context.Context) error { return p.pingErr }

// nopStore implements Store WITHOUT HealthPinger; getErr drives the
// fallback probe outcome.
type nopStore struct{ getErr error }

func (n nopStore) Sessions() Sessions { return nopSessions{n.getErr} }
func (n nopStore) Records() Records   { return nopRecords{} }

type nopSessions struct{ getErr error }

func (s nopSessions) Get(context.Context, int64) (*model.Session, error) { return nil, s.getErr }
func (s nopSessions) Put(context.Context, *model.Session) error          { return nil }
func (s nopSessions) Clear(context.Context, int64) error                 { return nil }
func (s nopSessions) All(context.Context) ([]*model.Session, error)      { return nil, nil }

type nopRecords struct{}

func (nopRecords) Append(context.Context, *model.ActivityRecord) (*model.ActivityRecord, error) {
	return nil, nil
}

func (nopRecords) ListDay(context.Context, int64, model.Day) ([]*model.ActivityRecord, error) {
	return nil, nil
}

func TestStoreHealthChecker_WithHealthPinger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := zerolog.Nop()

	// Healthy
	hc := NewStoreHealthChecker(pingStore{}, logger, 50*time.Millisecond)
	go hc.Start(ctx, 20*time.Millisecond)
	waitTrue(t, func() bool { return hc.IsHealthy() })

	// Unhealthy
	hc2 := NewStoreHealthChecker(pingStore{pingErr: errors.New("down")}, logger, 50*time.Millisecond)
	go hc2.Start(ctx, 20*time.Millisecond)
	waitTrue(t, func() bool { return !hc2.IsHealthy() })
}

func TestStoreHealthChecker_FallbackSessionGet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := zerolog.Nop()

	// Healthy via fallback (no HealthPinger available)
	hc := NewStoreHealthChecker(nopStore{}, logger, 50*time.Millisecond)
	go hc.Start(ctx, 20*time.Millisecond)
	waitTrue(t, func() bool { return hc.IsHealthy() })

	// Unhealthy via fallback
	hc2 := NewStoreHealthChecker(nopStore{getErr: errors.New("fail")}, logger, 50*time.Millisecond)
	go hc2.Start(ctx, 20*time.Millisecond)
	waitTrue(t, func() bool { return !hc2.IsHealthy() })
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
