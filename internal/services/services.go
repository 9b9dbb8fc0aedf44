package services

import (
	"context"
	"log/slog"

	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/metrics"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/store"
	"github.com/resonatehq/console/internal/util"
)

// Dispatcher is the part of the store the services drive.
type Dispatcher interface {
	Dispatch(store.Action) error
	NextSeq() uint64
}

type Tracker struct {
	dispatcher Dispatcher
	metrics    *metrics.Metrics
}

func NewTracker(dispatcher Dispatcher, metrics *metrics.Metrics) *Tracker {
	return &Tracker{
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// Track runs fn as the operation named key: it dispatches a request, then a
// success with the returned data or a failure with the normalized error
// message. The error of fn is returned unchanged.
func Track[T any](ctx context.Context, t *Tracker, key operations.Key, fn func(context.Context) (T, error)) (T, error) {
	util.Assert(key != "", "operation key must not be empty")

	seq := t.dispatcher.NextSeq()

	if err := t.dispatcher.Dispatch(operations.Request(key, seq)); err != nil {
		var zero T
		return zero, err
	}

	t.metrics.OperationsInFlight.WithLabelValues(string(key)).Inc()
	defer t.metrics.OperationsInFlight.WithLabelValues(string(key)).Dec()

	data, err := fn(ctx)
	if err != nil {
		msg := client.Message(err)
		t.metrics.OperationsTotal.WithLabelValues(string(key), "failure").Inc()
		slog.Warn("operation failed", "key", key, "seq", seq, "err", msg)

		if err := t.dispatcher.Dispatch(operations.Failure(key, seq, msg)); err != nil {
			slog.Error("failed to record operation failure", "key", key, "err", err)
		}
		return data, err
	}

	t.metrics.OperationsTotal.WithLabelValues(string(key), "success").Inc()
	slog.Debug("operation succeeded", "key", key, "seq", seq)

	if err := t.dispatcher.Dispatch(operations.Success(key, seq, data)); err != nil {
		return data, err
	}

	return data, nil
}
