package collector

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/domain"
)

// SnapshotSink receives collected snapshots
type SnapshotSink interface {
	IngestSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// RunObserver is told the outcome of every collection run
type RunObserver interface {
	CollectorRun(err error)
}

// Poller runs a collector on a fixed interval
type Poller struct {
	collector *Collector
	sink      SnapshotSink
	observer  RunObserver
	interval  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. observer may be nil.
func NewPoller(c *Collector, sink SnapshotSink, observer RunObserver, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		collector: c,
		sink:      sink,
		observer:  observer,
		interval:  interval,
	}
}

// Start runs an initial collection and then one per interval until ctx is
// cancelled or Stop is called
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.RunOnce(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Stopping collector")
				return
			case <-ticker.C:
				p.RunOnce(ctx)
			}
		}
	}()

	log.WithField("interval", p.interval).Info("Started collector")
}

// Stop cancels the loop and waits for an in-flight run to finish
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// RunOnce collects and stores a single snapshot
func (p *Poller) RunOnce(ctx context.Context) error {
	start := time.Now()

	snap, err := p.collector.Collect(ctx)
	if err == nil {
		err = p.sink.IngestSnapshot(ctx, snap)
	}
	if p.observer != nil {
		p.observer.CollectorRun(err)
	}

	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("Collection failed")
		}
		return err
	}

	log.WithFields(log.Fields{
		"snapshot":  snap.ID,
		"devices":   len(snap.Host.Devices),
		"processes": len(snap.Host.Processes),
		"took":      time.Since(start).Round(time.Millisecond),
	}).Info("Snapshot collected")
	return nil
}
