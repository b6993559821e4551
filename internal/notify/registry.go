package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Outcome reports how a single destination fared for one alert.
type Outcome struct {
	Name     string
	Attempts int
	Err      error
}

// Registry fans one alert out to every registered destination. Destinations
// are isolated from each other: a failure in one never blocks or aborts the
// others, and nothing is shared between concurrent sends.
type Registry struct {
	services []Service
	retrier  *Retrier
	logger   zerolog.Logger
}

// NewRegistry returns an empty registry dispatching through retrier.
func NewRegistry(retrier *Retrier, logger zerolog.Logger) *Registry {
	return &Registry{services: make([]Service, 0), retrier: retrier, logger: logger}
}

func (g *Registry) Add(s Service) {
	if s != nil {
		g.services = append(g.services, s)
	}
}

func (g *Registry) Len() int {
	return len(g.services)
}

// Names returns the destination names in registration order.
func (g *Registry) Names() []string {
	names := make([]string, len(g.services))
	for i, s := range g.services {
		names[i] = s.Name()
	}
	return names
}

// Dispatch sends alert to every destination concurrently and returns one
// outcome per destination, in registration order. It only returns once every
// send has reached a final outcome, success or exhausted retries.
func (g *Registry) Dispatch(ctx context.Context, alert Alert) []Outcome {
	outcomes := make([]Outcome, len(g.services))
	var wg sync.WaitGroup
	for i, s := range g.services {
		wg.Add(1)
		go func(i int, svc Service) {
			defer wg.Done()
			attempts, err := g.retrier.Send(ctx, svc, alert)
			outcomes[i] = Outcome{Name: svc.Name(), Attempts: attempts, Err: err}
			if err != nil {
				g.logger.Error().Err(err).Str("service", svc.Name()).Int("attempts", attempts).Msg("alert delivery failed")
			}
		}(i, s)
	}
	wg.Wait()
	return outcomes
}
