package workers

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically reports channel length against
// capacity. Reading len and cap is non-blocking, so sampling never
// interferes with the delivery pipeline.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				w.sample(nc)
			}
		}
	}
}

func (w *ChannelCapacityWorker) sample(nc NamedChannel) {
	v := reflect.ValueOf(nc.Channel)
	if v.Kind() != reflect.Chan {
		w.log.Error("Provided object is not a channel", "name", nc.Name)
		return
	}
	capacity := v.Cap()
	length := v.Len()
	w.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", nc.Name, length, capacity))
	if capacity <= 0 {
		// Unbuffered channel, nothing to report
		return
	}
	capacityLeft := capacity - length
	if capacityLeft > 0 && capacityLeft <= w.lowCapacityThreshold {
		w.log.Warn(fmt.Sprintf("channel %s capacity left : %d", nc.Name, capacityLeft))
	}
}
