// Package health probes the API's backing dependencies so /healthz can
// report more than process liveness.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is the probe surface a pgx pool already satisfies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report is the outcome of probing every registered dependency.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthy reports whether every dependency passed.
func (r Report) Healthy() bool { return r.Status == "ok" }

type dependency struct {
	name  string
	probe func(ctx context.Context) error
}

// Checker probes registered dependencies concurrently, each under its own
// timeout, and aggregates the results into a Report.
type Checker struct {
	// ProbeTimeout bounds each dependency probe. Zero means 2 seconds.
	ProbeTimeout time.Duration

	deps   []dependency
	logger *zap.Logger
}

// New creates a Checker with no dependencies registered. Register them
// before serving traffic; Add is not safe to call concurrently with Check.
func New(logger *zap.Logger) *Checker {
	return &Checker{logger: logger}
}

// Add registers a named probe.
func (c *Checker) Add(name string, probe func(ctx context.Context) error) {
	c.deps = append(c.deps, dependency{name: name, probe: probe})
}

// AddPinger registers a Ping-shaped dependency such as a pgx pool.
func (c *Checker) AddPinger(name string, p Pinger) {
	c.Add(name, p.Ping)
}

// Check probes every dependency. A Checker with nothing registered
// reports ok, which degrades /healthz to a plain liveness endpoint.
func (c *Checker) Check(ctx context.Context) Report {
	timeout := c.ProbeTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	results := make([]string, len(c.deps))
	var wg sync.WaitGroup
	for i, d := range c.deps {
		wg.Add(1)
		go func(i int, d dependency) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := d.probe(probeCtx); err != nil {
				c.logger.Warn("health probe failed",
					zap.String("dependency", d.name),
					zap.Error(err),
				)
				results[i] = err.Error()
				return
			}
			results[i] = "ok"
		}(i, d)
	}
	wg.Wait()

	rep := Report{Status: "ok"}
	if len(c.deps) > 0 {
		rep.Checks = make(map[string]string, len(c.deps))
	}
	for i, d := range c.deps {
		rep.Checks[d.name] = results[i]
		if results[i] != "ok" {
			rep.Status = "degraded"
		}
	}
	return rep
}
