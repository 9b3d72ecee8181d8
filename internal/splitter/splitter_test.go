package splitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const busLog = `<?xml version="1.0" encoding="utf-8"?>
<CommunicationLog xmlns="http://knx.org/xml/telegrams/01" CreatedBy="ETS6">
  <RecordStart Timestamp="2024-03-01T10:00:00" />
  <Telegram Timestamp="t1" RawData="0000000000000000000000BC110C0701E1008001" />
  <Telegram Timestamp="t2" RawData="0000000000000000000000CC" />
  <Telegram Timestamp="t3" RawData="0000000000000000000000BC12012305E1008001" />
  <Telegram Timestamp="t4" RawData="0000000000000000000000CC" />
  <Telegram Timestamp="t5" />
  <Telegram Timestamp="t6" RawData="00000000000000000000" />
</CommunicationLog>
`

// writeInput writes content to a log file in a fresh temp dir.
func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bus.xml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestRun_WritesBothFiles(t *testing.T) {
	outDir := t.TempDir()
	s := New(Config{
		InputPath: writeInput(t, busLog),
		Filters:   NewFilterSet("0/7/"),
		OutputDir: outDir,
	})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.FilteredFile != filepath.Join(outDir, "knx_tel_0_7.xml") {
		t.Errorf("FilteredFile = %q", report.FilteredFile)
	}
	if report.OtherFile != filepath.Join(outDir, "knx_tel.xml") {
		t.Errorf("OtherFile = %q", report.OtherFile)
	}
	if report.Telegrams != 6 || report.Skipped != 1 || report.Filtered != 3 || report.Other != 2 {
		t.Errorf("report = %+v", report.Stats)
	}
	if report.Acknowledgements != 2 || report.Undecodable != 1 {
		t.Errorf("report = %+v", report.Stats)
	}
	if !strings.HasPrefix(report.RunID, "run-") || len(report.RunID) != 12 {
		t.Errorf("RunID = %q, want run-xxxxxxxx", report.RunID)
	}

	filtered := readOutput(t, report.FilteredFile)
	for _, want := range []string{
		`<CommunicationLog xmlns="http://knx.org/xml/telegrams/01" CreatedBy="ETS6">`,
		`Timestamp="t1"`,
		`<!-- GA: 0/7/1`,
		`; QA: 1.1.12 -->`,
		`Timestamp="t2"`,
		`<!-- GA: IGNORE (unbestimmt) ; QA:  -->`,
		`    <RecordStart Timestamp="2024-03-01T10:00:00" />`,
	} {
		if !strings.Contains(filtered, want) {
			t.Errorf("filtered output missing %q:\n%s", want, filtered)
		}
	}
	for _, unwanted := range []string{`Timestamp="t3"`, `Timestamp="t5"`} {
		if strings.Contains(filtered, unwanted) {
			t.Errorf("filtered output contains %q", unwanted)
		}
	}

	other := readOutput(t, report.OtherFile)
	for _, want := range []string{`Timestamp="t3"`, `<!-- GA: 2/3/5`, `; QA: 1.2.1 -->`, `Timestamp="t4"`, `<RecordStart Timestamp="2024-03-01T10:00:00" />`} {
		if !strings.Contains(other, want) {
			t.Errorf("other output missing %q:\n%s", want, other)
		}
	}
	if strings.Contains(other, `Timestamp="t1"`) {
		t.Error("other output contains a filtered telegram")
	}
}

func TestRun_EmptyLogWritesRootOnly(t *testing.T) {
	outDir := t.TempDir()
	s := New(Config{
		InputPath: writeInput(t, `<CommunicationLog CreatedBy="ETS6"></CommunicationLog>`),
		Filters:   NewFilterSet("0/7/"),
		OutputDir: outDir,
	})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<CommunicationLog CreatedBy=\"ETS6\"></CommunicationLog>\n"
	for _, path := range []string{report.FilteredFile, report.OtherFile} {
		if got := readOutput(t, path); got != want {
			t.Errorf("%s =\n%s\nwant\n%s", filepath.Base(path), got, want)
		}
	}
}

func TestRun_DiscardOthers(t *testing.T) {
	outDir := t.TempDir()
	s := New(Config{
		InputPath:     writeInput(t, busLog),
		Filters:       NewFilterSet("0/7/"),
		OutputDir:     outDir,
		DiscardOthers: true,
	})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.OtherFile != "" {
		t.Errorf("OtherFile = %q, want empty", report.OtherFile)
	}
	if _, err := os.Stat(filepath.Join(outDir, OtherFilename)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("other file should not exist, stat error = %v", err)
	}
	if _, err := os.Stat(report.FilteredFile); err != nil {
		t.Errorf("filtered file missing: %v", err)
	}
}

func TestRun_CustomOtherFile(t *testing.T) {
	outDir := t.TempDir()
	s := New(Config{
		InputPath: writeInput(t, busLog),
		Filters:   NewFilterSet("0/7/"),
		OutputDir: outDir,
		OtherFile: "rest.xml",
	})

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "rest.xml")); err != nil {
		t.Errorf("custom other file missing: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "no input",
			cfg:     Config{},
			wantErr: ErrNoInput,
		},
		{
			name:    "missing input",
			cfg:     Config{InputPath: filepath.Join(t.TempDir(), "missing.xml")},
			wantErr: ErrReadInput,
		},
		{
			name:    "malformed input",
			cfg:     Config{InputPath: writeInput(t, "<CommunicationLog><Telegram")},
			wantErr: ErrReadInput,
		},
		{
			name:    "unwritable output",
			cfg:     Config{InputPath: writeInput(t, busLog), OutputDir: blocker},
			wantErr: ErrWriteOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := New(tt.cfg).Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if report != nil {
				t.Errorf("Run() report = %+v, want nil", report)
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	outDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{InputPath: writeInput(t, busLog), OutputDir: outDir}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("cancelled run wrote %d files", len(entries))
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Filters: NewFilterSet("1/2/")})
	if got := s.FilteredPath(); got != "knx_tel_1_2.xml" {
		t.Errorf("FilteredPath() = %q", got)
	}
	if got := s.OtherPath(); got != OtherFilename {
		t.Errorf("OtherPath() = %q", got)
	}
}
