package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"deals_bot/pkg/logx"
)

// TaskDealsCheck is the periodic full-check task.
const TaskDealsCheck = "deals:check"

func NewDealsCheckTask() *asynq.Task {
	return asynq.NewTask(TaskDealsCheck, nil)
}

// HandleDealsCheck adapts the scanner to an asynq task handler. An overlapping
// run is skipped, not queued.
func (s *DealScanner) HandleDealsCheck(ctx context.Context, _ *asynq.Task) error {
	_, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			logger(ctx).Warn("skipping scheduled check, previous run still active")
			return nil
		}

		logger(ctx).Error("scheduled check failed", logx.Error(err))
		return err
	}

	return nil
}
