package jobs

import (
	"context"
	"sync"
	"time"

	"collectify-be/internal/pkg/logger"
)

const logModule = "RefreshTokenCleanup"

// TokenPurger deletes refresh tokens whose expiry has passed.
type TokenPurger interface {
	PurgeExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// RefreshTokenCleanup periodically removes expired refresh tokens so the
// table only holds tokens that can still be rotated.
type RefreshTokenCleanup struct {
	purger   TokenPurger
	log      logger.ILogger
	schedule time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewRefreshTokenCleanup(purger TokenPurger, schedule time.Duration, log logger.ILogger) *RefreshTokenCleanup {
	return &RefreshTokenCleanup{
		purger:   purger,
		log:      log,
		schedule: schedule,
		timeout:  time.Minute,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs a cleanup immediately, then on every tick.
func (rc *RefreshTokenCleanup) Start() {
	rc.log.Info(logModule, "Starting refresh token cleanup job", map[string]interface{}{"schedule": rc.schedule.String()})
	go rc.cleanupLoop()
}

// Stop blocks until the loop has exited. Safe to call more than once.
func (rc *RefreshTokenCleanup) Stop() {
	rc.stopOnce.Do(func() {
		rc.log.Info(logModule, "Stopping refresh token cleanup job", nil)
		close(rc.stopCh)
	})
	<-rc.done
}

func (rc *RefreshTokenCleanup) cleanupLoop() {
	defer close(rc.done)

	rc.cleanup()

	ticker := time.NewTicker(rc.schedule)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.cleanup()
		case <-rc.stopCh:
			rc.log.Info(logModule, "Refresh token cleanup job stopped", nil)
			return
		}
	}
}

func (rc *RefreshTokenCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	deleted, err := rc.purger.PurgeExpiredRefreshTokens(ctx)
	if err != nil {
		rc.log.Error(logModule, "Error during refresh token cleanup", map[string]interface{}{"error": err.Error()})
		return
	}
	if deleted > 0 {
		rc.log.Info(logModule, "Refresh token cleanup complete", map[string]interface{}{"deleted_count": deleted})
	}
}
