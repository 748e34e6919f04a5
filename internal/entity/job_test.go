package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-hold-service/internal/entity"
)

func TestCanTransition_ForwardOnly(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.StatePending, entity.StateRunning))
	assert.True(t, entity.CanTransition(entity.StateRunning, entity.StateRunning))
	assert.True(t, entity.CanTransition(entity.StateRunning, entity.StateSucceeded))
	assert.True(t, entity.CanTransition(entity.StateRunning, entity.StateFailed))
	assert.True(t, entity.CanTransition(entity.StatePending, entity.StateFailed))

	assert.False(t, entity.CanTransition(entity.StateRunning, entity.StatePending))
	assert.False(t, entity.CanTransition(entity.StateSucceeded, entity.StateRunning))
	assert.False(t, entity.CanTransition(entity.StateFailed, entity.StateSucceeded))
	assert.False(t, entity.CanTransition(entity.StateSucceeded, entity.StateSucceeded))
}

func TestJob_Finish_SetsStateFromOutcome(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	held := entity.NewJob(validRequest(), now)
	held.Finish(entity.HeldOutcome([]entity.Offer{entity.Offer(`{"id":"1"}`)}, json.RawMessage(`{"id":"order"}`)), now)
	assert.Equal(t, entity.StateSucceeded, held.State)
	require.NotNil(t, held.FinishedAt)

	failed := entity.NewJob(validRequest(), now)
	failed.Finish(entity.NotFoundOutcome(nil), now)
	assert.Equal(t, entity.StateFailed, failed.State)
	assert.Equal(t, entity.OutcomeNotFound, failed.Result.Status)
}

func TestJob_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	j := entity.NewJob(validRequest(), now)

	assert.False(t, j.Expired(now.Add(time.Hour)), "pending jobs never expire")

	j.Finish(entity.NotFoundOutcome(nil), now)
	assert.False(t, j.Expired(now.Add(-time.Minute)))
	assert.True(t, j.Expired(now.Add(time.Minute)))
}

func TestJob_Clone_IsDeep(t *testing.T) {
	now := time.Now()
	j := entity.NewJob(validRequest(), now)
	j.Finish(entity.HoldFailedOutcome([]entity.Offer{entity.Offer(`{"id":"1"}`)}, json.RawMessage(`{"code":1}`)), now)

	c := j.Clone()
	c.Result.Offers[0][2] = 'X'
	c.Result.Status = entity.OutcomeHeld

	assert.Equal(t, `{"id":"1"}`, string(j.Result.Offers[0]))
	assert.Equal(t, entity.OutcomeHoldFailed, j.Result.Status)
}

func TestOutcome_NotFoundMarshalsBare(t *testing.T) {
	b, err := json.Marshal(entity.NotFoundOutcome(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"not_found"}`, string(b))
}
