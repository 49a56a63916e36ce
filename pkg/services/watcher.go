package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultWatchInterval is used when neither an interval nor a cron
// expression is configured.
const DefaultWatchInterval = 30 * time.Second

// watchState is the persisted snapshot of the last sweep, so a restarted
// watcher can report transitions against what it saw before.
type watchState struct {
	Version   int                      `json:"version"`
	UpdatedAt time.Time                `json:"updated_at"`
	Services  map[string]ServiceStatus `json:"services"`
}

// Watcher refreshes service statuses on a schedule and publishes transitions
// to the event bus.
type Watcher struct {
	Catalog   *Catalog
	Locator   Locator
	Prober    *Prober
	Bus       *EventBus
	StatePath string

	interval time.Duration
	schedule cron.Schedule

	mu       sync.Mutex
	state    *watchState
	running  bool
	stopChan chan struct{}
}

// NewWatcher creates a watcher over the catalog. statePath may be empty, in
// which case nothing is persisted between runs.
func NewWatcher(catalog *Catalog, loc Locator, prober *Prober, bus *EventBus, statePath string) *Watcher {
	return &Watcher{
		Catalog:   catalog,
		Locator:   loc,
		Prober:    prober,
		Bus:       bus,
		StatePath: statePath,
		interval:  DefaultWatchInterval,
		stopChan:  make(chan struct{}),
	}
}

// SetInterval switches the watcher to fixed-interval sweeps.
func (w *Watcher) SetInterval(d time.Duration) {
	if d > 0 {
		w.interval = d
		w.schedule = nil
	}
}

// SetSchedule switches the watcher to cron-expression sweeps
// (standard five-field syntax).
func (w *Watcher) SetSchedule(expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid watch schedule %q: %v", expr, err)
	}
	w.schedule = sched
	return nil
}

// Start loads persisted state, runs a first sweep, and begins the loop.
func (w *Watcher) Start() {
	w.loadState()
	w.running = true
	go w.loop()
	log.Printf("Watcher started over %d services", len(w.Catalog.Entries()))
}

// Stop ends the loop.
func (w *Watcher) Stop() {
	w.running = false
	close(w.stopChan)
}

func (w *Watcher) loop() {
	w.Sweep()
	for {
		if !w.running {
			return
		}

		delay := w.interval
		if w.schedule != nil {
			delay = time.Until(w.schedule.Next(time.Now()))
			if delay < 0 {
				delay = 0
			}
		}

		select {
		case <-w.stopChan:
			return
		case <-time.After(delay):
			w.Sweep()
		}
	}
}

// Sweep probes every service once, publishes transitions since the previous
// sweep, and persists the new snapshot.
func (w *Watcher) Sweep() []Report {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reports := w.Prober.CheckAll(ctx, w.Catalog, w.Locator)

	w.mu.Lock()
	if w.state == nil {
		w.state = &watchState{Version: 1, Services: make(map[string]ServiceStatus)}
	}
	baseline := len(w.state.Services) > 0
	current := make(map[string]bool, len(reports))
	for _, rep := range reports {
		current[rep.Entry.Name] = true
		prev, seen := w.state.Services[rep.Entry.Name]
		if baseline && seen && prev.Health != rep.Status.Health && w.Bus != nil {
			w.Bus.Publish(StatusEvent{
				Kind:     transitionKind(rep.Status.Health),
				Service:  rep.Entry.Name,
				Ref:      rep.Entry.Ref,
				Previous: prev.Health,
				Status:   rep.Status,
			})
		}
		w.state.Services[rep.Entry.Name] = rep.Status
	}
	for name, prev := range w.state.Services {
		if current[name] {
			continue
		}
		if w.Bus != nil {
			w.Bus.Publish(StatusEvent{
				Kind:     EventVanished,
				Service:  name,
				Previous: prev.Health,
				Status:   ServiceStatus{Health: HealthUnknown, CheckedAt: time.Now()},
			})
		}
		delete(w.state.Services, name)
	}
	w.state.UpdatedAt = time.Now()
	w.saveStateLocked()
	w.mu.Unlock()

	return reports
}

func transitionKind(health string) EventKind {
	switch health {
	case HealthHealthy:
		return EventBecameHealthy
	case HealthUnhealthy, HealthUnreachable:
		return EventBecameUnhealthy
	default:
		return EventBecameUnknown
	}
}

func (w *Watcher) loadState() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != nil {
		return
	}
	w.state = &watchState{Version: 1, Services: make(map[string]ServiceStatus)}

	if w.StatePath == "" {
		return
	}
	data, err := os.ReadFile(w.StatePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to load watcher state: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, w.state); err != nil {
		log.Printf("Failed to parse watcher state: %v", err)
		w.state = &watchState{Version: 1, Services: make(map[string]ServiceStatus)}
	}
	if w.state.Services == nil {
		w.state.Services = make(map[string]ServiceStatus)
	}
}

func (w *Watcher) saveStateLocked() {
	if w.StatePath == "" || w.state == nil {
		return
	}

	dir := filepath.Dir(w.StatePath)
	os.MkdirAll(dir, 0755)

	data, err := json.MarshalIndent(w.state, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal watcher state: %v", err)
		return
	}
	if err := os.WriteFile(w.StatePath, data, 0644); err != nil {
		log.Printf("Failed to save watcher state: %v", err)
	}
}

// LastStatuses returns the most recent status per service name.
func (w *Watcher) LastStatuses() map[string]ServiceStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]ServiceStatus)
	if w.state == nil {
		return out
	}
	for name, status := range w.state.Services {
		out[name] = status
	}
	return out
}
