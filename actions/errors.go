package actions

import (
	"context"
	"fmt"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
)

// handleError logs err and wraps it with a prefix telling known errors from
// unknown ones. errors.Is keeps working on the result.
func handleError(ctx context.Context, log logging.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if common.Known(err) {
		log.Warn(ctx, op+" failed", "error", err)
		return fmt.Errorf("error: %w", err)
	}
	log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("unknown error: %w", err)
}

// Revalidator invalidates cached pages after a mutation.
type Revalidator interface {
	Revalidate(path string)
}
