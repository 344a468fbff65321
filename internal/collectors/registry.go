package collectors

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"angelupdate/internal/events"
	"angelupdate/internal/models"
	"angelupdate/internal/providers"
)

var ErrCollectorNotFound = errors.New("collector not found")

// RegistryInterface owns collector lifecycle: statuses, counters, manual
// runs and the per-collector schedule handles. Toggling a collector cancels
// and re-registers its timer; collector failures are isolated per collector.
type RegistryInterface interface {
	Init()
	Stop()
	Toggle(id string) (bool, error)
	RunNow(id string) error
	Statuses() []models.CollectorStatus
	Status(id string) (models.CollectorStatus, error)
}

type Registry struct {
	mu         sync.Mutex
	collectors map[string]Collector
	order      []string
	statuses   map[string]*models.CollectorStatus
	schedules  map[string]*gron.Cron

	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	publisher events.PublisherInterface
}

func NewRegistry(list []Collector, logger providers.Logger, metrics providers.MetricsProviderInterface, publisher events.PublisherInterface) RegistryInterface {
	r := &Registry{
		collectors: make(map[string]Collector, len(list)),
		statuses:   make(map[string]*models.CollectorStatus, len(list)),
		schedules:  make(map[string]*gron.Cron),
		logger:     logger,
		metrics:    metrics,
		publisher:  publisher,
	}

	for _, c := range list {
		r.collectors[c.ID()] = c
		r.order = append(r.order, c.ID())
		r.statuses[c.ID()] = &models.CollectorStatus{
			ID:       c.ID(),
			Name:     c.Name(),
			Type:     c.Type(),
			Status:   models.CollectorIdle,
			Enabled:  true,
			Schedule: "@every " + c.Interval().String(),
		}
	}
	return r
}

func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.statuses[id].Enabled {
			r.schedule(id)
		}
	}
	r.logger.Infof(providers.TypeCollector, "Initialized %d collectors", len(r.order))
}

func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.schedules {
		r.cancel(id)
	}
}

// Toggle flips a collector on or off and returns the new state.
func (r *Registry) Toggle(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[id]
	if !ok {
		return false, ErrCollectorNotFound
	}

	status.Enabled = !status.Enabled
	if status.Enabled {
		status.Status = models.CollectorIdle
		r.schedule(id)
	} else {
		status.Status = models.CollectorDisabled
		r.cancel(id)
	}

	state := "disabled"
	if status.Enabled {
		state = "enabled"
	}
	r.logger.Infof(providers.TypeCollector, "Collector %s %s", id, state)
	r.publisher.CollectorStatusChanged(*status)
	return status.Enabled, nil
}

// RunNow executes a collector synchronously, updating its status record.
func (r *Registry) RunNow(id string) error {
	r.mu.Lock()
	c, ok := r.collectors[id]
	if !ok {
		r.mu.Unlock()
		return ErrCollectorNotFound
	}
	status := r.statuses[id]
	status.Status = models.CollectorRunning
	status.LastRun = time.Now()
	r.mu.Unlock()

	start := time.Now()
	stats, err := c.Collect(context.Background())
	elapsed := time.Since(start)

	r.mu.Lock()
	runs := status.SuccessCount + status.ErrorCount
	status.LastExecutionTime = elapsed.Milliseconds()
	status.AvgExecutionTime = (status.AvgExecutionTime*float64(runs) + float64(elapsed.Milliseconds())) / float64(runs+1)
	if err != nil {
		status.Status = models.CollectorError
		status.ErrorCount++
		status.LastError = err.Error()
		r.logger.Errorf(providers.TypeCollector, "Error executing collector %s: %s", id, err)
	} else {
		status.Status = models.CollectorSuccess
		status.SuccessCount++
		status.LastError = ""
		r.logger.Infof(providers.TypeCollector, "Collector %s executed successfully in %dms (%d items)", id, elapsed.Milliseconds(), stats.Items)
	}
	snapshot := *status
	r.mu.Unlock()

	r.metrics.IncCollectorRuns(id, err == nil)
	r.publisher.CollectorStatusChanged(snapshot)
	return err
}

func (r *Registry) Statuses() []models.CollectorStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.CollectorStatus, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.statuses[id])
	}
	return out
}

func (r *Registry) Status(id string) (models.CollectorStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[id]
	if !ok {
		return models.CollectorStatus{}, ErrCollectorNotFound
	}
	return *status, nil
}

// schedule registers a dedicated cron handle for one collector.
// Must be called under r.mu.
func (r *Registry) schedule(id string) {
	if _, exists := r.schedules[id]; exists {
		return
	}
	c := r.collectors[id]
	cron := gron.New()
	cron.AddFunc(gron.Every(c.Interval()), func() {
		if err := r.RunNow(id); err != nil {
			// Already logged and counted; scheduled runs never propagate.
			_ = err
		}
	})
	cron.Start()
	r.schedules[id] = cron
	r.logger.Infof(providers.TypeCollector, "Scheduled collector %s every %s", id, c.Interval())
}

// cancel stops and drops a collector's schedule handle.
// Must be called under r.mu.
func (r *Registry) cancel(id string) {
	if cron, ok := r.schedules[id]; ok {
		cron.Stop()
		delete(r.schedules, id)
		r.logger.Infof(providers.TypeCollector, "Cancelled schedule for collector %s", id)
	}
}
