package device

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/printdesk/printd/internal/config"
	"github.com/printdesk/printd/internal/settings"
)

// CUPSGateway drives the CUPS/BSD spooler commands: lp for submission,
// lpq for the queue listing, cancel for removal and lpstat for printer
// reachability.
type CUPSGateway struct {
	printer       string
	run           Runner
	submitTimeout time.Duration
	queryTimeout  time.Duration
}

func NewCUPSGateway(cfg config.DeviceConfig, run Runner) *CUPSGateway {
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &CUPSGateway{
		printer:       cfg.Printer,
		run:           run,
		submitTimeout: submitTimeout,
		queryTimeout:  queryTimeout,
	}
}

var cupsPaperSizes = map[string]string{
	settings.PaperSizeA4:     "media=A4",
	settings.PaperSizeLetter: "media=Letter",
	settings.PaperSizeLegal:  "media=Legal",
}

var cupsColorModes = map[string]string{
	settings.ColorModeColor:     "print-color-mode=color",
	settings.ColorModeGrayscale: "print-color-mode=monochrome",
}

var cupsQualities = map[int]string{
	settings.QualityDraft: "Resolution=600dpi",
	settings.QualityFine:  "Resolution=1200dpi",
}

var cupsPaperTypes = map[string]string{
	settings.PaperTypePlain:  "MediaType=stationery",
	settings.PaperTypeGlossy: "MediaType=photographic-glossy",
}

// FormatOptions maps each settings field to one lp option token, in the
// fixed order paperSize, colorMode, quality, paperType. A value with no
// mapping is silently omitted.
func (g *CUPSGateway) FormatOptions(s settings.Settings) string {
	var opts []string
	if v, ok := cupsPaperSizes[s.PaperSize]; ok {
		opts = append(opts, "-o", v)
	}
	if v, ok := cupsColorModes[s.ColorMode]; ok {
		opts = append(opts, "-o", v)
	}
	if v, ok := cupsQualities[s.Quality]; ok {
		opts = append(opts, "-o", v)
	}
	if v, ok := cupsPaperTypes[s.PaperType]; ok {
		opts = append(opts, "-o", v)
	}
	return strings.Join(opts, " ")
}

// lp responds with e.g. "request id is OfficeJet-142 (1 file(s))"; the
// numeric suffix after the last hyphen is the queue's job token. The
// printer name itself may contain digits, so only a trailing "-<digits>"
// counts.
var requestIDPattern = regexp.MustCompile(`request id is \S+-(\d+)`)

func (g *CUPSGateway) Submit(ctx context.Context, documentPath string, s settings.Settings) SubmissionResult {
	if _, err := os.Stat(documentPath); err != nil {
		return SubmissionResult{OK: false, Message: fmt.Sprintf("document not found: %s", documentPath)}
	}
	if ok, errs := settings.Validate(s.Map()); !ok {
		return SubmissionResult{OK: false, Message: "invalid settings: " + strings.Join(errs, "; ")}
	}

	args := []string{}
	if g.printer != "" {
		args = append(args, "-d", g.printer)
	}
	if opts := g.FormatOptions(s); opts != "" {
		args = append(args, strings.Fields(opts)...)
	}
	args = append(args, documentPath)

	ctx, cancel := context.WithTimeout(ctx, g.submitTimeout)
	defer cancel()

	stdout, stderr, err := g.run.Run(ctx, "lp", args...)
	if err != nil {
		return SubmissionResult{OK: false, Message: classifyFailure(err, string(stderr))}
	}

	token := TokenUnknown
	if m := requestIDPattern.FindStringSubmatch(string(stdout)); m != nil {
		token = m[1]
	}

	return SubmissionResult{OK: true, Token: token, Message: "submitted to print queue"}
}

// QueryQueue parses the lpq listing:
//
//	Rank    Owner   Job     File(s)                         Total Size
//	active  alice   142     report.pdf                      10240 bytes
//	1st     bob     143     scan.png                        2048 bytes
func (g *CUPSGateway) QueryQueue(ctx context.Context) QueueListing {
	args := []string{}
	if g.printer != "" {
		args = append(args, "-P", g.printer)
	}

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	stdout, stderr, err := g.run.Run(ctx, "lpq", args...)
	if err != nil {
		return QueueListing{Jobs: nil, Message: classifyFailure(err, string(stderr))}
	}

	var jobs []QueueJob
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Rank") || strings.Contains(line, "no entries") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		jobs = append(jobs, QueueJob{
			Rank:  fields[0],
			Owner: fields[1],
			Token: fields[2],
			File:  fields[3],
		})
	}

	return QueueListing{Jobs: jobs, Message: fmt.Sprintf("%d job(s) queued", len(jobs))}
}

func (g *CUPSGateway) Cancel(ctx context.Context, token string) CancelResult {
	if token == "" {
		return CancelResult{OK: false, Message: "no device token to cancel"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	_, stderr, err := g.run.Run(ctx, "cancel", token)
	if err != nil {
		return CancelResult{OK: false, Message: classifyFailure(err, string(stderr))}
	}
	return CancelResult{OK: true, Message: "cancel request accepted"}
}

func (g *CUPSGateway) Status(ctx context.Context) StatusResult {
	args := []string{"-p"}
	if g.printer != "" {
		args = append(args, g.printer)
	}

	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	stdout, stderr, err := g.run.Run(ctx, "lpstat", args...)
	combined := string(stdout) + string(stderr)
	lower := strings.ToLower(combined)

	switch {
	case err != nil && strings.Contains(lower, "invalid destination"):
		return StatusResult{Available: false, Status: StatusNotFound, Message: "printer not found"}
	case err != nil && strings.Contains(lower, "no destinations"):
		return StatusResult{Available: false, Status: StatusNotConfigured, Message: "no printer configured"}
	case err != nil:
		return StatusResult{Available: false, Status: StatusSubsystemUnavailable, Message: classifyFailure(err, string(stderr))}
	case strings.Contains(lower, "now printing"):
		return StatusResult{Available: true, Status: StatusProcessing, Message: "printer is processing a job"}
	case strings.Contains(lower, "is idle"):
		return StatusResult{Available: true, Status: StatusIdle, Message: "printer is idle"}
	case strings.Contains(lower, "disabled"):
		return StatusResult{Available: false, Status: StatusSubsystemUnavailable, Message: "printer is disabled"}
	default:
		return StatusResult{Available: false, Status: StatusSubsystemUnavailable, Message: strings.TrimSpace(combined)}
	}
}
