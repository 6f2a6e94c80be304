package redis

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dashboardInvalidationChannel = "sentimatrix:dashboard:invalidate"

// DashboardInvalidator fans out "emails changed" notices between instances
// over Redis pub/sub. The payload is the sender's instance id so an instance
// ignores its own messages.
type DashboardInvalidator struct {
	rdb        goredis.UniversalClient
	instanceID string
	timeout    time.Duration
	onRemote   func()
}

// NewDashboardInvalidator creates an invalidator. onRemote runs for every
// notice published by another instance.
func NewDashboardInvalidator(rdb goredis.UniversalClient, instanceID string, timeout time.Duration, onRemote func()) *DashboardInvalidator {
	return &DashboardInvalidator{
		rdb:        rdb,
		instanceID: instanceID,
		timeout:    timeout,
		onRemote:   onRemote,
	}
}

// PublishEmailsChanged implements domain.ChangePublisher. Failures are logged
// and dropped; peers fall back to their snapshot TTL.
func (d *DashboardInvalidator) PublishEmailsChanged(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	if err := d.rdb.Publish(ctx, dashboardInvalidationChannel, d.instanceID).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to publish dashboard invalidation", "error", err)
	}
}

// Start listens for notices until ctx is cancelled.
func (d *DashboardInvalidator) Start(ctx context.Context) {
	pubsub := d.rdb.Subscribe(ctx, dashboardInvalidationChannel)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				return
			}
			d.handleInvalidation(msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (d *DashboardInvalidator) handleInvalidation(payload string) {
	switch payload {
	case "":
		slog.Warn("Empty dashboard invalidation message")
		return
	case d.instanceID:
		return
	}

	d.onRemote()
	slog.Debug("Dashboard snapshot invalidated via pub/sub", "origin", payload)
}
