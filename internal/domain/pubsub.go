package domain

import (
	"context"
)

// ChangePublisher tells other instances that stored emails changed, so they
// can drop derived state such as dashboard snapshots. Delivery is best effort.
type ChangePublisher interface {
	PublishEmailsChanged(ctx context.Context)
}
