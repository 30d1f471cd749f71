package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmkhr/mpdgen/internal/lib/logger/sl"
)

// Dash periodically re-dumps the manifest so that players of a
// dynamic presentation see fresh publish times. The availability
// start time stays fixed across refreshes, that is guaranteed by
// the builder.
type Dash struct {
	log        *slog.Logger
	updateFreq time.Duration
	manifest   Manifest

	// stop
	stopChan chan struct{}

	runMutex sync.Mutex
}

// New returns new dash manager
func New(
	log *slog.Logger,
	updateFreq time.Duration,
	manifest Manifest,
) *Dash {
	return &Dash{
		log:        log,
		updateFreq: updateFreq,
		manifest:   manifest,
		stopChan:   make(chan struct{}, 1),
	}
}

type Manifest interface {
	Dump() error
	CleanUp()
}

// Run starts periodic manifest dumps
func (d *Dash) Run(ctx context.Context) error {
	const op = "Dash.Run"

	log := d.log.With(
		slog.String("op", op),
	)

	// mutex to prevent multiple
	// run call.
	if !d.runMutex.TryLock() {
		return nil
	}
	defer d.runMutex.Unlock()

	log.Info("start dash")

mainloop:
	for {
		if err := d.manifest.Dump(); err != nil {
			log.Error("failed to dump manifest", sl.Err(err))
		} else {
			log.Debug("dumped manifest")
		}

		timer := time.After(d.updateFreq)

		select {
		case <-d.stopChan:
			log.Debug("got stop chan")
			break mainloop
		case <-ctx.Done():
			log.Debug("got context stop")
			break mainloop
		case <-timer:
			log.Debug("timer tick")
		}
	}

	d.log.Info("stopped dash")

	return nil
}

// Stop requests the loop to stop. Safe to call when the loop
// is not running.
func (d *Dash) Stop() {
	select {
	case d.stopChan <- struct{}{}:
	default:
	}
}
