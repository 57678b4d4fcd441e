package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onesmallstep/internal/model"
)

func TestInsertProgressCountsEveryCompletion(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		row := completedRow(1, 1, 1, now)
		require.NoError(t, progress.InsertProgress(ctx, row))
		assert.NotZero(t, row.ID)

		count, err := progress.GetCompletedStepsCount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	rows, err := progress.GetProgressForPhobia(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestInsertProgressIgnoresGivenID(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()

	first := completedRow(2, 5, 25, time.Now())
	require.NoError(t, progress.InsertProgress(ctx, first))

	again := completedRow(2, 5, 25, time.Now())
	again.ID = first.ID
	require.NoError(t, progress.InsertProgress(ctx, again))
	assert.NotEqual(t, first.ID, again.ID)

	count, err := progress.GetCompletedStepsCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProgressRoundTripsOptionalFields(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)

	withAll := completedRow(3, 9, 50, at)
	notes := "shaky but fine"
	withAll.Notes = &notes
	require.NoError(t, progress.InsertProgress(ctx, withAll))

	attempt := &model.UserProgress{PhobiaID: 3, LevelID: 9, StepID: 51}
	require.NoError(t, progress.InsertProgress(ctx, attempt))

	rows, err := progress.GetProgressForPhobia(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got := rows[0]
	require.NotNil(t, got.AnxietyRating)
	assert.Equal(t, 5, *got.AnxietyRating)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	completed, ok := got.CompletedAt()
	require.True(t, ok)
	assert.Equal(t, at.UnixMilli(), completed.UnixMilli())

	bare := rows[1]
	assert.False(t, bare.IsCompleted)
	assert.Nil(t, bare.AnxietyRating)
	assert.Nil(t, bare.CompletedDate)
	assert.Nil(t, bare.Notes)
}

func TestUpdateProgress(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()

	row := completedRow(4, 13, 60, time.Now())
	require.NoError(t, progress.InsertProgress(ctx, row))

	notes := "corrected"
	row.Notes = &notes
	row.AnxietyRating = nil
	require.NoError(t, progress.UpdateProgress(ctx, row))

	rows, err := progress.GetProgressForPhobia(ctx, 4)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Notes)
	assert.Equal(t, "corrected", *rows[0].Notes)
	assert.Nil(t, rows[0].AnxietyRating)

	assert.Error(t, progress.UpdateProgress(ctx, &model.UserProgress{}))
}

func TestCompletedStepsAcrossPhobias(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, progress.InsertProgress(ctx, completedRow(1, 1, 1, time.Now())))
	require.NoError(t, progress.InsertProgress(ctx, completedRow(2, 5, 25, time.Now())))
	require.NoError(t, progress.InsertProgress(ctx, &model.UserProgress{PhobiaID: 2, LevelID: 5, StepID: 26}))

	rows, err := progress.GetCompletedSteps(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.IsCompleted)
	}
}

func TestTotalStepsCount(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()

	for _, id := range []uint{1, 11, 2, 25} {
		total, err := progress.GetTotalStepsCount(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 12, total, "phobia %d", id)
	}

	total, err := progress.GetTotalStepsCount(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteProgressForPhobiaLeavesOthers(t *testing.T) {
	catalog, progress, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, progress.InsertProgress(ctx, completedRow(1, 1, 1, time.Now())))
	require.NoError(t, progress.InsertProgress(ctx, completedRow(1, 1, 2, time.Now())))
	require.NoError(t, progress.InsertProgress(ctx, completedRow(6, 21, 80, time.Now())))

	deleted, err := progress.DeleteProgressForPhobia(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	rows, err := progress.GetProgressForPhobia(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	others, err := progress.GetProgressForPhobia(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, others, 1)

	p, err := catalog.GetPhobiaByID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, p)
	levels, err := catalog.GetLevelsForPhobia(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, levels, 4)
}

func TestWatchProgressForPhobia(t *testing.T) {
	_, progress, _ := newTestRepos(t)
	ctx := context.Background()

	sub := progress.WatchProgressForPhobia(ctx, 7)
	defer sub.Release()

	first := <-sub.C()
	require.NoError(t, first.Err)
	assert.Empty(t, first.Value)

	require.NoError(t, progress.InsertProgress(ctx, completedRow(7, 25, 90, time.Now())))
	require.Eventually(t, func() bool {
		select {
		case snap := <-sub.C():
			return snap.Err == nil && len(snap.Value) == 1
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	_, err := progress.DeleteProgressForPhobia(ctx, 7)
	require.NoError(t, err)
	select {
	case snap := <-sub.C():
		require.NoError(t, snap.Err)
		assert.Empty(t, snap.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after delete")
	}
}

func TestWatchSurfacesStorageErrors(t *testing.T) {
	db := newTestDB(t)
	_, progress, hub := newTestRepos(t)

	broken := NewProgressRepository(db, hub)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	sub := broken.WatchCompletedSteps(context.Background())
	defer sub.Release()
	snap := <-sub.C()
	assert.Error(t, snap.Err)

	// a healthy repository on the same hub keeps working
	require.NoError(t, progress.InsertProgress(context.Background(), completedRow(1, 1, 1, time.Now())))
}
