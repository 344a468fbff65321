package events

import (
	"sync"

	"angelupdate/internal/models"
)

// PublisherInterface is the outbound event hook of the core: downstream
// consumers (an admin push channel, audit log, ...) subscribe here. The core
// only emits; delivery and transport are the subscriber's problem.
type PublisherInterface interface {
	CollectorStatusChanged(status models.CollectorStatus)
	CacheCleared(pattern string)
	OnCollectorStatusChanged(fn func(models.CollectorStatus))
	OnCacheCleared(fn func(pattern string))
}

type Publisher struct {
	mu           sync.RWMutex
	collectorFns []func(models.CollectorStatus)
	cacheFns     []func(string)
}

func NewPublisher() PublisherInterface {
	return &Publisher{}
}

func (p *Publisher) CollectorStatusChanged(status models.CollectorStatus) {
	p.mu.RLock()
	fns := p.collectorFns
	p.mu.RUnlock()
	for _, fn := range fns {
		fn(status)
	}
}

func (p *Publisher) CacheCleared(pattern string) {
	p.mu.RLock()
	fns := p.cacheFns
	p.mu.RUnlock()
	for _, fn := range fns {
		fn(pattern)
	}
}

func (p *Publisher) OnCollectorStatusChanged(fn func(models.CollectorStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collectorFns = append(p.collectorFns, fn)
}

func (p *Publisher) OnCacheCleared(fn func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cacheFns = append(p.cacheFns, fn)
}
