package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/printdesk/printd/internal/config"
	"github.com/printdesk/printd/internal/settings"
)

type fakeCall struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []fakeCall
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, fakeCall{name: name, args: args})
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func testConfig() config.DeviceConfig {
	return config.DeviceConfig{
		Spooler:       "cups",
		Printer:       "OfficeJet",
		SubmitTimeout: 30 * time.Second,
		QueryTimeout:  5 * time.Second,
	}
}

func tempDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write temp document: %v", err)
	}
	return path
}

func TestFormatOptionsOrderAndMapping(t *testing.T) {
	g := NewCUPSGateway(testConfig(), &fakeRunner{})
	s := settings.Settings{
		PaperType: settings.PaperTypeGlossy,
		Quality:   1200,
		ColorMode: settings.ColorModeColor,
		PaperSize: settings.PaperSizeLegal,
	}
	got := g.FormatOptions(s)
	want := "-o media=Legal -o print-color-mode=color -o Resolution=1200dpi -o MediaType=photographic-glossy"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatOptionsOmitsUnmappedValues(t *testing.T) {
	g := NewCUPSGateway(testConfig(), &fakeRunner{})
	s := settings.Settings{
		PaperType: "Cardstock", // no mapping
		Quality:   600,
		ColorMode: settings.ColorModeGrayscale,
		PaperSize: settings.PaperSizeA4,
	}
	got := g.FormatOptions(s)
	if strings.Contains(got, "Cardstock") {
		t.Fatalf("unmapped value leaked into options: %q", got)
	}
	if !strings.Contains(got, "media=A4") {
		t.Fatalf("mapped values missing: %q", got)
	}
}

func TestSubmitMissingDocumentNeverInvokesDevice(t *testing.T) {
	run := &fakeRunner{}
	g := NewCUPSGateway(testConfig(), run)

	res := g.Submit(context.Background(), "/nonexistent/doc.pdf", settings.Normalize(nil))
	if res.OK {
		t.Fatal("expected failure for missing document")
	}
	if len(run.calls) != 0 {
		t.Fatalf("device command invoked %d times, want 0", len(run.calls))
	}
}

func TestSubmitInvalidSettingsNeverInvokesDevice(t *testing.T) {
	run := &fakeRunner{}
	g := NewCUPSGateway(testConfig(), run)

	res := g.Submit(context.Background(), tempDocument(t), settings.Settings{
		PaperType: "Foo", Quality: 600,
		ColorMode: settings.ColorModeGrayscale, PaperSize: settings.PaperSizeA4,
	})
	if res.OK {
		t.Fatal("expected failure for invalid settings")
	}
	if len(run.calls) != 0 {
		t.Fatalf("device command invoked %d times, want 0", len(run.calls))
	}
}

func TestSubmitParsesRequestIDToken(t *testing.T) {
	run := &fakeRunner{stdout: "request id is OfficeJet-142 (1 file(s))\n"}
	g := NewCUPSGateway(testConfig(), run)

	res := g.Submit(context.Background(), tempDocument(t), settings.Normalize(nil))
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Token != "142" {
		t.Fatalf("token = %q, want 142", res.Token)
	}
	if len(run.calls) != 1 || run.calls[0].name != "lp" {
		t.Fatalf("unexpected command invocation: %+v", run.calls)
	}
}

func TestSubmitTokenIsTrailingSuffixOfRequestID(t *testing.T) {
	cases := []struct {
		stdout string
		want   string
	}{
		{"request id is OfficeJet-142 (1 file(s))\n", "142"},
		{"request id is OfficeJet4500-7 (1 file(s))\n", "7"},
		{"request id is Front-Desk-2-99 (1 file(s))\n", "99"},
	}
	for _, tc := range cases {
		run := &fakeRunner{stdout: tc.stdout}
		g := NewCUPSGateway(testConfig(), run)
		res := g.Submit(context.Background(), tempDocument(t), settings.Normalize(nil))
		if !res.OK {
			t.Errorf("stdout %q: expected success, got %q", tc.stdout, res.Message)
			continue
		}
		if res.Token != tc.want {
			t.Errorf("stdout %q: token = %q, want %q", tc.stdout, res.Token, tc.want)
		}
	}
}

func TestSubmitUnparseableOutputYieldsUnknownToken(t *testing.T) {
	run := &fakeRunner{stdout: "spooled ok\n"}
	g := NewCUPSGateway(testConfig(), run)

	res := g.Submit(context.Background(), tempDocument(t), settings.Normalize(nil))
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Token != TokenUnknown {
		t.Fatalf("token = %q, want %q", res.Token, TokenUnknown)
	}
}

func TestSubmitClassifiesFailures(t *testing.T) {
	cases := []struct {
		stderr string
		err    error
		want   string
	}{
		{"lp: Unknown printer 'OfficeJet'", errors.New("exit status 1"), "device-not-found"},
		{"lp: Permission denied", errors.New("exit status 1"), "permission-denied"},
		{"", context.DeadlineExceeded, "timeout"},
		{"lp: something odd", errors.New("exit status 1"), "other"},
	}
	for _, tc := range cases {
		run := &fakeRunner{stderr: tc.stderr, err: tc.err}
		g := NewCUPSGateway(testConfig(), run)
		res := g.Submit(context.Background(), tempDocument(t), settings.Normalize(nil))
		if res.OK {
			t.Errorf("stderr %q: expected failure", tc.stderr)
			continue
		}
		if !strings.HasPrefix(res.Message, tc.want) {
			t.Errorf("stderr %q: message %q, want prefix %q", tc.stderr, res.Message, tc.want)
		}
	}
}

func TestQueryQueueParsesListing(t *testing.T) {
	run := &fakeRunner{stdout: "Rank    Owner   Job     File(s)                         Total Size\n" +
		"active  alice   142     report.pdf                      10240 bytes\n" +
		"1st     bob     143     scan.png                        2048 bytes\n"}
	g := NewCUPSGateway(testConfig(), run)

	listing := g.QueryQueue(context.Background())
	if len(listing.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(listing.Jobs))
	}
	first := listing.Jobs[0]
	if first.Rank != "active" || first.Owner != "alice" || first.Token != "142" || first.File != "report.pdf" {
		t.Fatalf("unexpected first row: %+v", first)
	}
}

func TestQueryQueueFailureYieldsEmptyListing(t *testing.T) {
	run := &fakeRunner{stderr: "lpq: connection refused", err: errors.New("exit status 1")}
	g := NewCUPSGateway(testConfig(), run)

	listing := g.QueryQueue(context.Background())
	if len(listing.Jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(listing.Jobs))
	}
	if listing.Message == "" {
		t.Fatal("expected a failure message")
	}
}

func TestCancelEmptyToken(t *testing.T) {
	run := &fakeRunner{}
	g := NewCUPSGateway(testConfig(), run)

	res := g.Cancel(context.Background(), "")
	if res.OK {
		t.Fatal("expected failure for empty token")
	}
	if len(run.calls) != 0 {
		t.Fatal("cancel command should not run for empty token")
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		stdout    string
		stderr    string
		err       error
		want      string
		available bool
	}{
		{"printer OfficeJet is idle.  enabled since Mon\n", "", nil, StatusIdle, true},
		{"printer OfficeJet now printing OfficeJet-142.\n", "", nil, StatusProcessing, true},
		{"", "lpstat: Invalid destination name in list \"OfficeJet\"!", errors.New("exit status 1"), StatusNotFound, false},
		{"", "lpstat: No destinations added.", errors.New("exit status 1"), StatusNotConfigured, false},
		{"", "lpstat: Connection refused", errors.New("exit status 1"), StatusSubsystemUnavailable, false},
	}
	for _, tc := range cases {
		run := &fakeRunner{stdout: tc.stdout, stderr: tc.stderr, err: tc.err}
		g := NewCUPSGateway(testConfig(), run)
		res := g.Status(context.Background())
		if res.Status != tc.want || res.Available != tc.available {
			t.Errorf("stdout %q stderr %q: got (%s, %v), want (%s, %v)",
				tc.stdout, tc.stderr, res.Status, res.Available, tc.want, tc.available)
		}
	}
}

func TestWindowsSubmitReportsUnknownToken(t *testing.T) {
	cfg := testConfig()
	cfg.Spooler = "windows"
	run := &fakeRunner{stdout: "C:\\doc.pdf is currently being printed\n"}
	g := NewWindowsGateway(cfg, run)

	res := g.Submit(context.Background(), tempDocument(t), settings.Normalize(nil))
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Token != TokenUnknown {
		t.Fatalf("token = %q, want %q", res.Token, TokenUnknown)
	}
	if len(run.calls) != 1 || run.calls[0].name != "cmd" {
		t.Fatalf("unexpected invocation: %+v", run.calls)
	}
}

func TestWindowsQueryQueueParsesRows(t *testing.T) {
	cfg := testConfig()
	cfg.Spooler = "windows"
	run := &fakeRunner{stdout: "142|alice|report.pdf\r\n143|bob|scan.png\r\n"}
	g := NewWindowsGateway(cfg, run)

	listing := g.QueryQueue(context.Background())
	if len(listing.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(listing.Jobs))
	}
	if listing.Jobs[0].Token != "142" || listing.Jobs[0].Owner != "alice" {
		t.Fatalf("unexpected row: %+v", listing.Jobs[0])
	}
}

func TestNewSelectsVariant(t *testing.T) {
	cfg := testConfig()
	g, err := New(cfg, &fakeRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.(*CUPSGateway); !ok {
		t.Fatalf("expected CUPS gateway, got %T", g)
	}

	cfg.Spooler = "windows"
	g, err = New(cfg, &fakeRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.(*WindowsGateway); !ok {
		t.Fatalf("expected Windows gateway, got %T", g)
	}

	cfg.Spooler = "haiku"
	if _, err := New(cfg, &fakeRunner{}); err == nil {
		t.Fatal("expected error for unknown spooler")
	}
}
