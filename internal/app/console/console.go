package console

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/metrics"
	"github.com/resonatehq/console/internal/services"
	"github.com/resonatehq/console/internal/services/states"
	"github.com/resonatehq/console/internal/services/users"
	"github.com/resonatehq/console/internal/store"
)

type Config struct {
	Store  *store.Config
	Node   *client.Config
	Python *client.Config
}

// Console holds the store and the services of both backends. Commands
// receive an empty console and Setup fills it in once configuration has
// been parsed.
type Console struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    *store.Store
	Users    *users.Service
	States   *states.Service
}

func New() *Console {
	return &Console{}
}

func (c *Console) Setup(config *Config) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	node, err := client.New("node", config.Node, m)
	if err != nil {
		return err
	}

	python, err := client.New("python", config.Python, m)
	if err != nil {
		return err
	}

	s := store.New(config.Store, m)
	s.Start()

	tracker := services.NewTracker(s, m)

	c.Registry = reg
	c.Metrics = m
	c.Store = s
	c.Users = users.New(node, tracker)
	c.States = states.New(python, tracker)

	return nil
}

// Close drains and stops the store. Closing a console that was never set up
// is a no-op.
func (c *Console) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
