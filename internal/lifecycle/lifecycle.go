// Package lifecycle drives print jobs through their state machine:
//
//	pending -> in-progress -> completed | failed
//
// Jobs are created and submitted to the device queue, then reconciled
// against it over time. Terminal states are final.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/printdesk/printd/internal/device"
	"github.com/printdesk/printd/internal/settings"
	"github.com/printdesk/printd/internal/store"
)

type Lifecycle struct {
	jobs    *store.JobStore
	gateway device.Gateway
	log     *slog.Logger
}

func New(jobs *store.JobStore, gateway device.Gateway, log *slog.Logger) *Lifecycle {
	if log == nil {
		log = slog.Default()
	}
	return &Lifecycle{jobs: jobs, gateway: gateway, log: log}
}

// SubmitOutcome reports what happened to the device submission attached
// to a create call. A failed submission is not an error: the job stays
// pending and the message explains why it has not reached the device yet.
type SubmitOutcome struct {
	Job       *store.Job
	Submitted bool
	Message   string
}

// CreateAndSubmit validates the request, persists the job as pending,
// then hands it to the device queue. On submission success the job moves
// to in-progress; on failure it remains pending so a later reconcile or
// resubmission can recover it.
func (l *Lifecycle) CreateAndSubmit(ctx context.Context, userID int64, documentName, documentPath string, rawSettings map[string]any) (*SubmitOutcome, error) {
	if userID == 0 || documentName == "" || documentPath == "" {
		return nil, ErrMissingData
	}

	if rawSettings == nil {
		rawSettings = map[string]any{}
	}
	if ok, errs := settings.Validate(rawSettings); !ok {
		return nil, &ValidationError{Errors: errs}
	}
	resolved := settings.Normalize(rawSettings)

	job := &store.Job{
		UserID:       userID,
		DocumentName: documentName,
		DocumentPath: documentPath,
		PaperType:    resolved.PaperType,
		PrintQuality: resolved.Quality,
		ColorMode:    resolved.ColorMode,
		PaperSize:    resolved.PaperSize,
		Status:       store.StatusPending,
	}
	if err := l.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	result := l.gateway.Submit(ctx, documentPath, resolved)
	if !result.OK {
		// Deliberate degrade: a temporarily unreachable device must not
		// be recorded as a permanent failure.
		l.log.Warn("device submission failed, job stays pending",
			"job_id", job.ID, "reason", result.Message)
		return &SubmitOutcome{
			Job:       job,
			Submitted: false,
			Message:   "your document is queued but could not be sent to the device yet: " + result.Message,
		}, nil
	}

	if err := l.jobs.SetDeviceToken(ctx, job.ID, result.Token); err != nil {
		return nil, err
	}
	if err := l.jobs.UpdateStatus(ctx, job.ID, store.StatusInProgress); err != nil {
		return nil, err
	}
	job.DeviceToken = result.Token
	job.Status = store.StatusInProgress

	l.log.Info("job submitted to device",
		"job_id", job.ID, "user_id", userID, "device_token", result.Token)

	return &SubmitOutcome{Job: job, Submitted: true, Message: result.Message}, nil
}

// Reconcile compares a job's stored status against the live device
// queue. When the job's token has dropped out of the queue the job is
// completed and stamped; otherwise it is left unchanged. Reconciling a
// terminal job is a no-op, so concurrent calls converge on the same
// final state.
func (l *Lifecycle) Reconcile(ctx context.Context, jobID string, callerUserID int64) (*store.Job, error) {
	job, err := l.getOwned(ctx, jobID, callerUserID)
	if err != nil {
		return nil, err
	}

	if job.Status.IsTerminal() {
		return job, nil
	}

	// A job with no token never reached the device queue, and one whose
	// token could not be parsed can never be matched against a queue
	// entry. Neither has anything to reconcile against; completing them
	// on absence would be a guess.
	if job.DeviceToken == "" || job.DeviceToken == device.TokenUnknown {
		return job, nil
	}

	listing := l.gateway.QueryQueue(ctx)
	for _, queued := range listing.Jobs {
		if queued.Token == job.DeviceToken {
			return job, nil
		}
	}

	// Absent from the queue: the device is done with it. This cannot
	// distinguish a finished job from one the device silently dropped.
	now := time.Now().UTC()
	if err := l.jobs.MarkCompleted(ctx, job.ID, store.StatusCompleted, now); err != nil {
		return nil, err
	}
	job.Status = store.StatusCompleted
	job.CompletedAt = &now

	l.log.Info("job reconciled to completed", "job_id", job.ID)

	return job, nil
}

// Get returns a single job after enforcing ownership.
func (l *Lifecycle) Get(ctx context.Context, jobID string, callerUserID int64) (*store.Job, error) {
	return l.getOwned(ctx, jobID, callerUserID)
}

// ListForUser returns the user's own jobs, newest first.
func (l *Lifecycle) ListForUser(ctx context.Context, userID int64) ([]*store.Job, error) {
	return l.jobs.ListByUser(ctx, userID)
}

func (l *Lifecycle) getOwned(ctx context.Context, jobID string, callerUserID int64) (*store.Job, error) {
	job, err := l.jobs.GetByID(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if job.UserID != callerUserID {
		return nil, ErrForbidden
	}
	return job, nil
}
