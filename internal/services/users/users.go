package users

import (
	"context"

	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/services"
	"github.com/resonatehq/console/pkg/user"
)

// Service talks to the node backend.
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

// FetchUsers loads the user list into the fetchUsers operation. Failures are
// recorded but not returned.
func (s *Service) FetchUsers(ctx context.Context) {
	_, _ = services.Track(ctx, s.tracker, operations.FetchUsers, func(ctx context.Context) (user.List, error) {
		var list user.List
		if err := s.client.Get(ctx, "/users/", &list); err != nil {
			return user.List{}, err
		}
		return list, nil
	})
}

// SaveUser creates u and returns the decoded response of the backend.
func (s *Service) SaveUser(ctx context.Context, u *user.User) (any, error) {
	return services.Track(ctx, s.tracker, operations.SaveUser, func(ctx context.Context) (any, error) {
		var res any
		if err := s.client.Post(ctx, "/user/", u, &res); err != nil {
			return nil, err
		}
		return res, nil
	})
}

func (s *Service) Health(ctx context.Context) error {
	_, err := services.Track(ctx, s.tracker, operations.CheckNodeHealth, func(ctx context.Context) (string, error) {
		if err := s.client.Health(ctx); err != nil {
			return "", err
		}
		return "healthy", nil
	})
	return err
}
