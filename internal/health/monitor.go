package health

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
)

// Monitor periodically probes the upstream provider's endpoint so /health can
// report reachability without spending request quota. The probe carries no
// credential: any HTTP response (even a 401) proves the provider is reachable,
// and only transport failures mark it down.
type Monitor struct {
	scheduler *gocron.Scheduler
	client    *http.Client
	probeURL  string
	interval  time.Duration

	reachable atomic.Bool
	checkedAt atomic.Int64
}

// NewMonitor creates a Monitor that probes probeURL every interval.
func NewMonitor(client *http.Client, probeURL string, interval time.Duration) *Monitor {
	m := &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		probeURL:  probeURL,
		interval:  interval,
	}
	// Optimistic until the first probe completes.
	m.reachable.Store(true)
	return m
}

// Start schedules the periodic probe; the first run happens immediately.
func (m *Monitor) Start() error {
	_, err := m.scheduler.Every(m.interval).StartImmediately().Do(m.probe)
	if err != nil {
		return err
	}
	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		log.Printf("health: failed to build probe request: %v", err)
		return
	}

	resp, err := m.client.Do(req)
	m.checkedAt.Store(time.Now().Unix())
	if err != nil {
		m.reachable.Store(false)
		log.Printf("health: provider unreachable: %v", err)
		return
	}
	resp.Body.Close()
	m.reachable.Store(true)
}

// Reachable reports the result of the most recent probe.
func (m *Monitor) Reachable() bool {
	return m.reachable.Load()
}

// CheckedAt returns the Unix time of the most recent probe, zero before the first.
func (m *Monitor) CheckedAt() int64 {
	return m.checkedAt.Load()
}
