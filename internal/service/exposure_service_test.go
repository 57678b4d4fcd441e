package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.exposure.Level(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Building Tolerance", plan.Level.Title)
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, "Real Spider Photo", plan.Steps[0].Title)

	_, err = f.exposure.Level(ctx, 10_000)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestCompleteStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	row, err := f.exposure.CompleteStep(ctx, StepCompletion{StepID: 14, AnxietyRating: 7, Notes: "  ok  ", CompletedAt: at})
	require.NoError(t, err)
	assert.Equal(t, uint(11), row.PhobiaID)
	assert.Equal(t, uint(41), row.LevelID)
	assert.True(t, row.IsCompleted)
	require.NotNil(t, row.Notes)
	assert.Equal(t, "ok", *row.Notes)
	completed, ok := row.CompletedAt()
	require.True(t, ok)
	assert.True(t, completed.Equal(at))

	again, err := f.exposure.CompleteStep(ctx, StepCompletion{PhobiaID: 11, LevelID: 41, StepID: 14, AnxietyRating: 3})
	require.NoError(t, err)
	assert.Nil(t, again.Notes)
	assert.NotEqual(t, row.ID, again.ID)
}

func TestCompleteStepValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   StepCompletion
		want error
	}{
		{name: "rating too low", in: StepCompletion{StepID: 1, AnxietyRating: 0}, want: ErrInvalidRating},
		{name: "rating too high", in: StepCompletion{StepID: 1, AnxietyRating: 11}, want: ErrInvalidRating},
		{name: "unknown step", in: StepCompletion{StepID: 99999, AnxietyRating: 5}, want: ErrUnknownStep},
		{name: "wrong level", in: StepCompletion{StepID: 1, LevelID: 2, AnxietyRating: 5}, want: ErrUnknownStep},
		{name: "wrong phobia", in: StepCompletion{StepID: 1, PhobiaID: 2, AnxietyRating: 5}, want: ErrUnknownStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.exposure.CompleteStep(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row, err := f.exposure.LogAttempt(ctx, 2, "")
	require.NoError(t, err)
	assert.False(t, row.IsCompleted)
	assert.Nil(t, row.AnxietyRating)
	assert.Nil(t, row.CompletedDate)

	p, err := f.progress.PhobiaProgress(ctx, mustPhobia(t, f, 1))
	require.NoError(t, err)
	assert.Zero(t, p.Completed)
}
