package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/models"
)

func TestStatusReached(t *testing.T) {
	tests := []struct {
		current, target models.OrderStatus
		want            bool
	}{
		{models.StatusReceived, models.StatusReceived, true},
		{models.StatusReceived, models.StatusPreparing, false},
		{models.StatusDelivered, models.StatusOutForDelivery, true},
		{models.StatusPreparing, models.StatusDelivered, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusReached(tt.current, tt.target), "%s -> %s", tt.current, tt.target)
	}
}

func TestParseWaitQuery(t *testing.T) {
	target, timeout, err := ParseWaitQuery("delivered", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, target)
	assert.Equal(t, DefaultWaitTimeout, timeout)

	_, timeout, err = ParseWaitQuery("preparing", "3")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, timeout)

	_, _, err = ParseWaitQuery("teleported", "")
	assert.ErrorIs(t, err, apierrors.ErrValidation)

	_, _, err = ParseWaitQuery("preparing", "-1")
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestResult(t *testing.T) {
	res, err := Result(7, models.StatusPreparing, ErrTimeout)
	require.NoError(t, err)
	assert.False(t, res.Reached)
	assert.Equal(t, models.StatusPreparing, res.Status)

	res, err = Result(7, models.StatusDelivered, nil)
	require.NoError(t, err)
	assert.True(t, res.Reached)

	boom := errors.New("boom")
	_, err = Result(7, "", boom)
	assert.ErrorIs(t, err, boom)
}
