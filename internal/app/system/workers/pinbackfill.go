// internal/app/system/workers/pinbackfill.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultBatchSize is how many milestones one PinBackfill pass attempts.
const DefaultBatchSize = 50

// PinBackfill is a background worker that pins milestones whose pin failed
// or that were written while pinning was disabled.
type PinBackfill struct {
	users    *userstore.Store
	pinner   pinning.Pinner
	log      *zap.Logger
	interval time.Duration
	batch    int64
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewPinBackfill creates a backfill worker.
//
// Parameters:
//   - db: the application database
//   - pinner: the pinning client; Noop makes every pass a no-op
//   - interval: how often to run a pass (e.g., 10 minutes)
//   - timeout: deadline for a single pin call
func NewPinBackfill(db *mongo.Database, pinner pinning.Pinner, logger *zap.Logger, interval, timeout time.Duration) *PinBackfill {
	return &PinBackfill{
		users:    userstore.New(db),
		pinner:   pinner,
		log:      logger,
		interval: interval,
		batch:    DefaultBatchSize,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background backfill loop.
func (w *PinBackfill) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("pin backfill worker started",
		zap.Duration("interval", w.interval),
		zap.Int64("batch", w.batch))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *PinBackfill) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("pin backfill worker stopped")
}

func (w *PinBackfill) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				select {
				case <-w.stopCh:
					cancel()
				case <-ctx.Done():
				}
			}()
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error("pin backfill pass failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunOnce pins one batch and returns how many milestones were pinned.
// Individual pin failures are logged and stamped so the next pass tries
// other milestones first.
func (w *PinBackfill) RunOnce(ctx context.Context) (int, error) {
	pending, err := w.users.ListUnpinnedMilestones(ctx, w.batch)
	if err != nil {
		return 0, err
	}

	pinned := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return pinned, ctx.Err()
		}
		cid, err := w.pin(ctx, p)
		if errors.Is(err, pinning.ErrDisabled) {
			return pinned, nil
		}
		if err != nil {
			w.log.Warn("backfill pin failed",
				zap.String("user_id", p.UserID.Hex()),
				zap.String("milestone_id", p.Milestone.ID),
				zap.Error(err))
			if err := w.users.MarkMilestonePinFailed(ctx, p.UserID, p.Milestone.ID, time.Now()); err != nil {
				w.log.Warn("backfill record failure failed",
					zap.String("user_id", p.UserID.Hex()),
					zap.String("milestone_id", p.Milestone.ID),
					zap.Error(err))
			}
			continue
		}
		if err := w.users.SetMilestonePin(ctx, p.UserID, p.Milestone.ID, cid); err != nil {
			w.log.Warn("backfill record pin failed",
				zap.String("user_id", p.UserID.Hex()),
				zap.String("milestone_id", p.Milestone.ID),
				zap.Error(err))
			continue
		}
		pinned++
	}

	if pinned > 0 {
		w.log.Info("backfilled milestone pins", zap.Int("count", pinned))
	}
	return pinned, nil
}

func (w *PinBackfill) pin(ctx context.Context, p userstore.UnpinnedMilestone) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	doc := models.MilestoneRecord{UserID: p.UserID.Hex(), Milestone: p.Milestone, PinnedAt: time.Now().UTC()}
	return w.pinner.PinJSON(ctx, p.Milestone.PinName(), doc)
}
