package util

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

func Assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

func ToPointer[T any](val T) *T {
	return &val
}

func SafeDeref[T any](val *T) T {
	if val == nil {
		var zero T
		return zero
	}
	return *val
}

func DeferAndLog(f func() error) {
	if err := f(); err != nil {
		slog.Warn("defer failed", "err", err)
	}
}

// ParseCron accepts five or six field expressions as well as descriptors such
// as @every 30s.
func ParseCron(cronExp string) (cron.Schedule, error) {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(cronExp)
}
