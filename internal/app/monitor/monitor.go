package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resonatehq/console/internal/util"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Enable   bool          `flag:"enable" desc:"probe the backends on a schedule" default:"true"`
	Schedule string        `flag:"schedule" desc:"cron expression of the probes" default:"@every 30s"`
	Timeout  time.Duration `flag:"timeout" desc:"timeout of a single round of probes" default:"5s"`
}

// Prober is implemented by the services of both backends.
type Prober interface {
	Health(context.Context) error
}

// Monitor probes the health endpoints of the backends on a cron schedule,
// every probe is tracked in the operation table by the prober itself.
type Monitor struct {
	config  *Config
	probers map[string]Prober
	cron    *cron.Cron
}

func New(config *Config, probers map[string]Prober) (*Monitor, error) {
	schedule, err := util.ParseCron(config.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor schedule %q: %w", config.Schedule, err)
	}

	m := &Monitor{
		config:  config,
		probers: probers,
		cron:    cron.New(),
	}

	m.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = m.Probe(context.Background())
	}))

	return m, nil
}

func (m *Monitor) String() string {
	return "monitor"
}

func (m *Monitor) Start() {
	slog.Info("starting monitor", "schedule", m.config.Schedule, "backends", len(m.probers))
	m.cron.Start()
}

// Stop waits for a running round of probes to complete.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Probe checks all backends concurrently and returns the first failure.
func (m *Monitor) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	var g errgroup.Group
	for name, p := range m.probers { // nosemgrep: range-over-map
		g.Go(func() error {
			if err := p.Health(ctx); err != nil {
				slog.Warn("backend unhealthy", "backend", name, "err", err)
				return fmt.Errorf("%s: %w", name, err)
			}
			slog.Debug("backend healthy", "backend", name)
			return nil
		})
	}

	return g.Wait()
}
