package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
)

func TestHandleError(t *testing.T) {
	ctx := context.Background()
	log := logging.Discard()

	known := handleError(ctx, log, "op", common.ErrNotFound)
	assert.EqualError(t, known, "error: not found")
	assert.ErrorIs(t, known, common.ErrNotFound)

	cause := errors.New("connection reset")
	unknown := handleError(ctx, log, "op", cause)
	assert.EqualError(t, unknown, "unknown error: connection reset")
	assert.ErrorIs(t, unknown, cause)

	assert.NoError(t, handleError(ctx, log, "op", nil))
}
