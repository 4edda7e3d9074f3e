package connectivity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Prober periodically checks whether the sync endpoint is reachable and feeds
// the result into the Monitor. It supplements the host OS signal (injected
// through the HTTP API) for environments where no such signal exists.
type Prober struct {
	url      string
	interval time.Duration
	client   *http.Client
	monitor  *Monitor
	logger   *zap.Logger
}

// NewProber creates a Prober that HEADs url every interval.
func NewProber(url string, interval, timeout time.Duration, monitor *Monitor, logger *zap.Logger) *Prober {
	return &Prober{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		monitor:  monitor,
		logger:   logger,
	}
}

// Start probes until the context is cancelled. This blocks; run it on its own
// goroutine.
func (p *Prober) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.monitor.Set(p.probe(ctx))
		}
	}
}

// probe reports whether the endpoint answered at all. Any HTTP response
// counts as reachable; only transport errors count as offline.
func (p *Prober) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Error("failed to build probe request", zap.Error(err))
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("connectivity probe failed", zap.Error(err))
		return false
	}
	_ = resp.Body.Close()
	return true
}
