package marketplace

import (
	"context"
	"log/slog"
	"time"

	"github.com/mockprep/mockprep-go/internal/model"
)

// DefaultPollInterval matches how often the web client refreshes notifications.
const DefaultPollInterval = 60 * time.Second

// NotificationSource is what the Poller needs from Client.
type NotificationSource interface {
	Notifications(ctx context.Context) ([]model.Notification, error)
}

// Poller fetches notifications immediately and then on every tick until its
// context is cancelled. Fetch errors are logged and polling continues.
type Poller struct {
	source   NotificationSource
	interval time.Duration
	logger   *slog.Logger
	onUpdate func([]model.Notification)
}

// NewPoller creates a Poller. A non-positive interval uses DefaultPollInterval
// and a nil logger uses slog.Default().
func NewPoller(source NotificationSource, interval time.Duration, logger *slog.Logger, onUpdate func([]model.Notification)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{source: source, interval: interval, logger: logger, onUpdate: onUpdate}
}

// Run blocks until ctx is done and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	ns, err := p.source.Notifications(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("fetching notifications failed", "error", err)
		}
		return
	}
	p.logger.Debug("notifications fetched", "count", len(ns), "unread", Unread(ns))
	if p.onUpdate != nil {
		p.onUpdate(ns)
	}
}
