// Package device adapts the operating system's print-spooling subsystem
// behind a small capability interface. Every operation degrades to a
// structured failure result instead of returning an error: the spooler is
// an unreliable external system and retry policy belongs to the caller.
package device

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/printdesk/printd/internal/config"
	"github.com/printdesk/printd/internal/settings"
)

// TokenUnknown is reported when a submission succeeded but no device job
// token could be parsed from the spooler's response.
const TokenUnknown = "unknown"

// Device reachability classifications reported by Status.
const (
	StatusIdle                 = "idle"
	StatusProcessing           = "processing"
	StatusNotFound             = "not_found"
	StatusNotConfigured        = "not_configured"
	StatusSubsystemUnavailable = "subsystem_unavailable"
)

// SubmissionResult is produced per submit call and is never persisted
// beyond being folded into the job record.
type SubmissionResult struct {
	OK      bool
	Token   string
	Message string
}

// QueueJob is one row of the device queue listing.
type QueueJob struct {
	Rank  string
	Owner string
	Token string
	File  string
}

type QueueListing struct {
	Jobs    []QueueJob
	Message string
}

type CancelResult struct {
	OK      bool
	Message string
}

type StatusResult struct {
	Available bool
	Status    string
	Message   string
}

// Gateway is the OS-agnostic contract over one spooler variant. The
// variant is selected once at startup; callers never branch on OS.
type Gateway interface {
	Submit(ctx context.Context, documentPath string, s settings.Settings) SubmissionResult
	QueryQueue(ctx context.Context) QueueListing
	Cancel(ctx context.Context, token string) CancelResult
	Status(ctx context.Context) StatusResult
}

// New selects the gateway variant named by the device configuration.
func New(cfg config.DeviceConfig, run Runner) (Gateway, error) {
	if run == nil {
		run = NewRunner()
	}
	switch cfg.Spooler {
	case "cups":
		return NewCUPSGateway(cfg, run), nil
	case "windows":
		return NewWindowsGateway(cfg, run), nil
	default:
		return nil, fmt.Errorf("unknown spooler variant: %s", cfg.Spooler)
	}
}

// Submission failure causes. None of these is retryable at this layer.
const (
	causeDeviceNotFound   = "device-not-found"
	causePermissionDenied = "permission-denied"
	causeTimeout          = "timeout"
	causeOther            = "other"
)

// classifyFailure maps a failed spooler invocation to a distinct
// human-readable message.
func classifyFailure(err error, stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s: print command did not finish in time", causeTimeout)
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Sprintf("%s: print subsystem command not installed", causeOther)
	case strings.Contains(lower, "unknown printer"),
		strings.Contains(lower, "invalid destination"),
		strings.Contains(lower, "printer name is invalid"),
		strings.Contains(lower, "unable to locate printer"):
		return fmt.Sprintf("%s: the configured printer was not found", causeDeviceNotFound)
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "not allowed"),
		strings.Contains(lower, "access is denied"):
		return fmt.Sprintf("%s: not permitted to use the printer", causePermissionDenied)
	default:
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Sprintf("%s: %s", causeOther, msg)
	}
}
