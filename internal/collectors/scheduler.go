package collectors

import (
	"github.com/roylee0704/gron"

	"angelupdate/internal/packaging"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

// SchedulerInterface is the background-work lifecycle hook driven by the
// application: collector schedules plus periodic package cleanup.
type SchedulerInterface interface {
	Init()
	Stop()
}

type Scheduler struct {
	config   *structures.Config
	registry RegistryInterface
	builder  packaging.BuilderInterface
	logger   providers.Logger
	cron     *gron.Cron
}

func NewScheduler(config *structures.Config, registry RegistryInterface, builder packaging.BuilderInterface, logger providers.Logger) SchedulerInterface {
	return &Scheduler{
		config:   config,
		registry: registry,
		builder:  builder,
		logger:   logger,
	}
}

func (s *Scheduler) Init() {
	if s.config.Collectors.Enabled {
		s.registry.Init()
	} else {
		s.logger.Infof(providers.TypeApp, "Collectors disabled")
	}

	if s.config.Update.CleanupInterval > 0 && s.config.Update.PackageMaxAgeDays > 0 {
		s.cron = gron.New()
		s.cron.AddFunc(gron.Every(s.config.Update.CleanupInterval), func() {
			deleted := s.builder.Cleanup(s.config.Update.PackageMaxAgeDays)
			if deleted > 0 {
				s.logger.Infof(providers.TypeApp, "Package cleanup removed %d archives", deleted)
			}
		})
		s.cron.Start()
	}
}

func (s *Scheduler) Stop() {
	if s.config.Collectors.Enabled {
		s.registry.Stop()
	}
	if s.cron != nil {
		s.cron.Stop()
	}
}
