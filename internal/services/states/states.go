package states

import (
	"context"

	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/services"
	"github.com/resonatehq/console/pkg/state"
)

// Service talks to the python backend. The list endpoint returns a bare
// array, unlike the users endpoint.
type Service struct {
	client  client.Client
	tracker *services.Tracker
}

func New(client client.Client, tracker *services.Tracker) *Service {
	return &Service{
		client:  client,
		tracker: tracker,
	}
}

// FetchStates loads the state list into the fetchStates operation. Failures
// are recorded but not returned.
func (s *Service) FetchStates(ctx context.Context) {
	_, _ = services.Track(ctx, s.tracker, operations.FetchStates, func(ctx context.Context) ([]state.State, error) {
		var states []state.State
		if err := s.client.Get(ctx, "/states/", &states); err != nil {
			return nil, err
		}
		return states, nil
	})
}

// SaveState creates st and returns the decoded response of the backend.
func (s *Service) SaveState(ctx context.Context, st *state.State) (any, error) {
	return services.Track(ctx, s.tracker, operations.SaveState, func(ctx context.Context) (any, error) {
		var res any
		if err := s.client.Post(ctx, "/states/", st, &res); err != nil {
			return nil, err
		}
		return res, nil
	})
}

func (s *Service) Health(ctx context.Context) error {
	_, err := services.Track(ctx, s.tracker, operations.CheckPythonHealth, func(ctx context.Context) (string, error) {
		if err := s.client.Health(ctx); err != nil {
			return "", err
		}
		return "healthy", nil
	})
	return err
}
