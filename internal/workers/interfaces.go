// Package workers runs the background jobs of the server: the expired
// session sweeper and the outbound mail dispatcher.
//
// Every worker blocks in Run until its context is cancelled. [Workers]
// starts them together and waits for all of them to stop.
package workers

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
)

// Worker is a long-running background job. Run blocks until ctx is done
// and returns nil on a clean shutdown.
type Worker interface {
	Run(ctx context.Context) error
}

// Sweeper removes expired sessions.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

var _ adapter.Mailer = (*MailDispatcher)(nil)
