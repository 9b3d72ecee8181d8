// knxsplit splits an ETS telegram log into the telegrams addressed to a set
// of group address prefixes and everything else.
//
// Each telegram in the output carries a comment naming its decoded group
// address and sender, so the files can be read without a bus monitor:
//
//	knxsplit -g 0/7/ --g1 1/2/ bus-monitor.xml
//
// writes knx_tel_0_7-1_2.xml and knx_tel.xml into the output directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/config"
	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/logging"
	"github.com/nerrad567/knx-log-splitter/internal/progress"
	"github.com/nerrad567/knx-log-splitter/internal/splitter"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// extraFilters is the number of --gN flags.
const extraFilters = 9

// defaultFilter is the primary group address filter.
const defaultFilter = "0/7/"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type splitFlags struct {
	groupAddress  string
	extra         [extraFilters]string
	verbose       bool
	discardOthers bool
	configPath    string
	outputDir     string
	noProgress    bool
}

func newRootCmd() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "knxsplit <input-file>",
		Short: "Split an ETS telegram log by group address",
		Long: `Split an ETS telegram log into the telegrams addressed to the given group
address prefixes and all remaining telegrams.

Every data telegram is annotated with its decoded group address (GA) and
sender (QA). Acknowledgements follow the telegram they acknowledge.`,
		Example: `  # Split on the default 0/7/ prefix
  knxsplit bus-monitor.xml

  # Keep main groups 1 and 4, drop everything else
  knxsplit -g 1/ --g1 4/ --discard-others bus-monitor.xml`,
		Args:          cobra.ExactArgs(1),
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.groupAddress, "group-address", "g", defaultFilter, "Primary group address prefix")
	for i := range flags.extra {
		f.StringVar(&flags.extra[i], fmt.Sprintf("g%d", i+1), "", fmt.Sprintf("Additional group address prefix %d", i+1))
	}
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Trace every decode step (debug logging)")
	f.BoolVar(&flags.discardOthers, "discard-others", false, "Do not write the file of non-matching telegrams")
	f.StringVarP(&flags.configPath, "config", "c", os.Getenv(config.EnvConfigPath), "Configuration file (optional)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for the output files")
	f.BoolVar(&flags.noProgress, "no-progress", false, "Hide the progress bar")

	return cmd
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context cancelled on interrupt
//   - cmd: The invoking command, used to tell set flags from defaults
//   - flags: Parsed command-line flags
//   - input: Path of the telegram log
//
// Returns:
//   - error: nil on success, or the config, read, parse or write failure
func run(ctx context.Context, cmd *cobra.Command, flags *splitFlags, input string) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version)
	log.Debug("starting knxsplit",
		"version", version,
		"commit", commit,
		"config", flags.configPath,
	)

	s := splitter.New(splitter.Config{
		InputPath:     input,
		Filters:       splitter.NewFilterSet(cfg.Splitter.Filters...),
		OutputDir:     cfg.Splitter.OutputDir,
		OtherFile:     cfg.Splitter.OtherFile,
		DiscardOthers: cfg.Splitter.DiscardOthers,
	})
	s.SetLogger(log)

	// Debug records share stderr with the bar.
	if cfg.Splitter.Progress && !flags.verbose {
		s.SetProgress(progress.New(os.Stderr, "splitting"))
	}

	inv, err := openInventory(ctx, cfg.Inventory, log)
	if err != nil {
		log.Warn("address inventory unavailable", "error", err)
	}
	if inv != nil {
		defer inv.close()
		s.SetRecorder(inv.recorder)
	}

	report, err := s.Run(ctx)
	if err != nil {
		return err
	}

	if inv != nil {
		inv.finish(ctx, report)
	}
	publishReport(ctx, cfg, report, log)

	return nil
}

// loadConfig loads the config file and applies command-line flags on top.
//
// Filter precedence: any of -g/--gN given on the command line replaces the
// configured filters; otherwise the configured filters apply.
func loadConfig(cmd *cobra.Command, flags *splitFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if filters, ok := cliFilters(cmd, flags); ok {
		cfg.Splitter.Filters = filters
	}
	if flags.outputDir != "" {
		cfg.Splitter.OutputDir = flags.outputDir
	}
	if flags.discardOthers {
		cfg.Splitter.DiscardOthers = true
	}
	if flags.noProgress {
		cfg.Splitter.Progress = false
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return cfg, nil
}

// cliFilters returns the filters given on the command line, and whether
// any filter flag was set at all.
func cliFilters(cmd *cobra.Command, flags *splitFlags) ([]string, bool) {
	set := cmd.Flags().Changed("group-address")
	var filters []string
	if flags.groupAddress != "" {
		filters = append(filters, flags.groupAddress)
	}
	for i, extra := range flags.extra {
		if cmd.Flags().Changed(fmt.Sprintf("g%d", i+1)) {
			set = true
		}
		if extra != "" {
			filters = append(filters, extra)
		}
	}
	return filters, set
}
