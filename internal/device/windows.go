package device

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/printdesk/printd/internal/config"
	"github.com/printdesk/printd/internal/settings"
)

// WindowsGateway drives the Windows print subsystem: the print command
// for submission and PowerShell's print-management cmdlets for queue
// queries, cancellation and printer status.
type WindowsGateway struct {
	printer       string
	run           Runner
	submitTimeout time.Duration
	queryTimeout  time.Duration
}

func NewWindowsGateway(cfg config.DeviceConfig, run Runner) *WindowsGateway {
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &WindowsGateway{
		printer:       cfg.Printer,
		run:           run,
		submitTimeout: submitTimeout,
		queryTimeout:  queryTimeout,
	}
}

// FormatOptions returns an empty string: the Windows print command takes
// no per-job option syntax, so every settings value is unmapped and
// silently omitted. Driver defaults apply.
func (g *WindowsGateway) FormatOptions(s settings.Settings) string {
	return ""
}

func (g *WindowsGateway) Submit(ctx context.Context, documentPath string, s settings.Settings) SubmissionResult {
	if _, err := os.Stat(documentPath); err != nil {
		return SubmissionResult{OK: false, Message: fmt.Sprintf("document not found: %s", documentPath)}
	}
	if ok, errs := settings.Validate(s.Map()); !ok {
		return SubmissionResult{OK: false, Message: "invalid settings: " + strings.Join(errs, "; ")}
	}

	args := []string{"/C", "print"}
	if g.printer != "" {
		args = append(args, "/D:"+g.printer)
	}
	args = append(args, documentPath)

	ctx, cancel := context.WithTimeout(ctx, g.submitTimeout)
	defer cancel()

	_, stderr, err := g.run.Run(ctx, "cmd", args...)
	if err != nil {
		return SubmissionResult{OK: false, Message: classifyFailure(err, string(stderr))}
	}

	// The print command never reports a job id.
	return SubmissionResult{OK: true, Token: TokenUnknown, Message: "submitted to print queue"}
}

// QueryQueue shells out to Get-PrintJob, formatting each job as
// "id|owner|document" to keep the parse trivial.
func (g *WindowsGateway) QueryQueue(ctx context.Context) QueueListing {
	script := fmt.Sprintf(
		`Get-PrintJob -PrinterName '%s' | ForEach-Object { '{0}|{1}|{2}' -f $_.Id, $_.UserName, $_.DocumentName }`,
		g.printer)

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	stdout, stderr, err := g.run.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	if err != nil {
		return QueueListing{Jobs: nil, Message: classifyFailure(err, string(stderr))}
	}

	var jobs []QueueJob
	for i, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		jobs = append(jobs, QueueJob{
			Rank:  fmt.Sprintf("%d", i+1),
			Owner: parts[1],
			Token: parts[0],
			File:  parts[2],
		})
	}

	return QueueListing{Jobs: jobs, Message: fmt.Sprintf("%d job(s) queued", len(jobs))}
}

func (g *WindowsGateway) Cancel(ctx context.Context, token string) CancelResult {
	if token == "" {
		return CancelResult{OK: false, Message: "no device token to cancel"}
	}

	script := fmt.Sprintf(`Remove-PrintJob -PrinterName '%s' -ID %s`, g.printer, token)

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	_, stderr, err := g.run.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	if err != nil {
		return CancelResult{OK: false, Message: classifyFailure(err, string(stderr))}
	}
	return CancelResult{OK: true, Message: "cancel request accepted"}
}

func (g *WindowsGateway) Status(ctx context.Context) StatusResult {
	if g.printer == "" {
		return StatusResult{Available: false, Status: StatusNotConfigured, Message: "no printer configured"}
	}

	script := fmt.Sprintf(`(Get-Printer -Name '%s').PrinterStatus`, g.printer)

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	stdout, stderr, err := g.run.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	lower := strings.ToLower(string(stdout) + string(stderr))

	switch {
	case err != nil && strings.Contains(lower, "no matching printer"), err != nil && strings.Contains(lower, "not found"):
		return StatusResult{Available: false, Status: StatusNotFound, Message: "printer not found"}
	case err != nil:
		return StatusResult{Available: false, Status: StatusSubsystemUnavailable, Message: classifyFailure(err, string(stderr))}
	case strings.Contains(lower, "printing"):
		return StatusResult{Available: true, Status: StatusProcessing, Message: "printer is processing a job"}
	case strings.Contains(lower, "normal"), strings.Contains(lower, "idle"):
		return StatusResult{Available: true, Status: StatusIdle, Message: "printer is idle"}
	default:
		return StatusResult{Available: false, Status: StatusSubsystemUnavailable, Message: strings.TrimSpace(string(stdout))}
	}
}
