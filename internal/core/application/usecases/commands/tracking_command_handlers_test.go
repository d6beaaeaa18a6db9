package commands_test

import (
	"testing"
	"time"

	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func runningSession(t *testing.T, jobID, cleanerID kernel.UUID) *tracking.Session {
	t.Helper()
	s, err := tracking.Start(jobID, cleanerID, 120, now)
	require.NoError(t, err)
	return s
}

func TestNewPauseTrackingCommand_RequiresReason(t *testing.T) {
	_, err := commands.NewPauseTrackingCommand(kernel.NewUUID(), kernel.NewUUID(), "   ")

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestPauseAndResumeTracking(t *testing.T) {
	ctx := t.Context()
	jobID, cleanerID := kernel.NewUUID(), kernel.NewUUID()
	session := runningSession(t, jobID, cleanerID)
	store := new(MockTrackingStore)
	store.On("Modify", ctx, jobID).Return(session, nil).Twice()
	events := new(eventRecorder)

	pause, err := commands.NewPauseTrackingCommand(jobID, cleanerID, "fetching supplies")
	require.NoError(t, err)
	status, err := commands.NewPauseTrackingCommandHandler(store, events, clock.Fixed(now.Add(30*time.Minute))).
		Handle(ctx, pause)
	require.NoError(t, err)
	assert.Equal(t, tracking.Paused, status.State)
	assert.Equal(t, 30, status.CurrentMinutes)
	assert.Equal(t, "fetching supplies", status.PauseReason)

	resume, err := commands.NewResumeTrackingCommand(jobID, cleanerID)
	require.NoError(t, err)
	status, err = commands.NewResumeTrackingCommandHandler(store, events, clock.Fixed(now.Add(45*time.Minute))).
		Handle(ctx, resume)
	require.NoError(t, err)

	assert.Equal(t, tracking.Running, status.State)
	assert.Equal(t, 30, status.CurrentMinutes)
	assert.Equal(t, 15, status.PausedMinutes)
	assert.Equal(t, now.Add(135*time.Minute), status.EstimatedCompletion)
	assert.Equal(t, []string{tracking.EventPaused, tracking.EventResumed}, events.names())
	store.AssertExpectations(t)
}

func TestPauseTracking_OtherCleaner(t *testing.T) {
	ctx := t.Context()
	jobID := kernel.NewUUID()
	session := runningSession(t, jobID, kernel.NewUUID())
	store := new(MockTrackingStore)
	store.On("Modify", ctx, jobID).Return(session, nil).Once()
	events := new(eventRecorder)

	cmd, _ := commands.NewPauseTrackingCommand(jobID, kernel.NewUUID(), "lunch")
	_, err := commands.NewPauseTrackingCommandHandler(store, events, testClock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, tracking.Running, session.State)
	assert.Empty(t, events.names())
}

func TestResumeTracking_NotPaused(t *testing.T) {
	ctx := t.Context()
	jobID, cleanerID := kernel.NewUUID(), kernel.NewUUID()
	store := new(MockTrackingStore)
	store.On("Modify", ctx, jobID).Return(runningSession(t, jobID, cleanerID), nil).Once()

	cmd, _ := commands.NewResumeTrackingCommand(jobID, cleanerID)
	_, err := commands.NewResumeTrackingCommandHandler(store, new(eventRecorder), testClock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrStatusTransition)
}

func TestResumeTracking_NoSession(t *testing.T) {
	ctx := t.Context()
	jobID := kernel.NewUUID()
	store := new(MockTrackingStore)
	store.On("Modify", ctx, jobID).Return(nil, tracking.ErrNoActiveSession).Once()

	cmd, _ := commands.NewResumeTrackingCommand(jobID, kernel.NewUUID())
	_, err := commands.NewResumeTrackingCommandHandler(store, new(eventRecorder), testClock).Handle(ctx, cmd)

	require.ErrorIs(t, err, tracking.ErrNoActiveSession)
}

func TestStopTrackingCommandHandler_CompletesJob(t *testing.T) {
	ctx := t.Context()
	cleanerID := kernel.NewUUID()
	j := inProgressJob(t, kernel.NewUUID(), cleanerID)
	session := runningSession(t, j.ID(), cleanerID)
	stoppedAt := clock.Fixed(now.Add(150 * time.Minute))

	factory, uow, repo := jobUoW(ctx, j)
	expectTx(ctx, uow)
	repo.On("Update", ctx, j).Return(nil).Once()
	store := new(MockTrackingStore)
	store.On("Get", ctx, j.ID()).Return(session, nil).Once()
	store.On("Delete", ctx, j.ID()).Return(nil).Once()
	events := new(eventRecorder)
	completer := commands.NewCompleteJobCommandHandler(factory, store, costs(t), events, stoppedAt, discardLogger)

	cmd, err := commands.NewStopTrackingCommand(j.ID(), cleanerID)
	require.NoError(t, err)
	res, err := commands.NewStopTrackingCommandHandler(store, completer, events, stoppedAt).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 150, res.ActualMinutes)
	assert.Equal(t, int64(156000), res.FinalCost.Minor())
	assert.Equal(t, job.Completed, j.Status())
	assert.Equal(t, []string{"job.completed", tracking.EventStopped}, events.names())
	store.AssertExpectations(t)
}

func TestStopTrackingCommandHandler_CompletionFailureKeepsSession(t *testing.T) {
	ctx := t.Context()
	cleanerID := kernel.NewUUID()
	j := scheduledJob(t, kernel.NewUUID(), cleanerID)
	session := runningSession(t, j.ID(), cleanerID)

	factory, uow, _ := jobUoW(ctx, j)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	store := new(MockTrackingStore)
	store.On("Get", ctx, j.ID()).Return(session, nil).Once()
	events := new(eventRecorder)
	completer := commands.NewCompleteJobCommandHandler(factory, store, costs(t), events, testClock, discardLogger)

	cmd, _ := commands.NewStopTrackingCommand(j.ID(), cleanerID)
	_, err := commands.NewStopTrackingCommandHandler(store, completer, events, testClock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrStatusTransition)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Empty(t, events.names())
}
