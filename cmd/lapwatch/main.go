// Package main provides the CLI entrypoint for lapwatch.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/lapwatch/internal/config"
	"github.com/verte-zerg/lapwatch/internal/logging"
	"github.com/verte-zerg/lapwatch/internal/model"
	"github.com/verte-zerg/lapwatch/internal/report"
	"github.com/verte-zerg/lapwatch/internal/share"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
	"github.com/verte-zerg/lapwatch/internal/store"
	"github.com/verte-zerg/lapwatch/internal/tui"
)

const (
	minTick = time.Millisecond
	maxTick = time.Second
)

var (
	runTick      time.Duration
	runExportDir string
	runTargets   []string
	runLogLevel  string
	runLogFile   string

	historySince string
	historyLast  int

	showCSV   bool
	showPlot  bool
	showColor bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lapwatch",
		Short:         "Terminal lap stopwatch",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runStopwatchCmd,
	}

	rootCmd.Flags().DurationVar(&runTick, "tick", stopwatch.DefaultTickInterval, "display refresh interval")
	rootCmd.Flags().StringVar(&runExportDir, "export-dir", config.DefaultExportDir(), "directory for CSV exports")
	rootCmd.Flags().StringSliceVar(&runTargets, "share", []string{share.TargetFile}, "export targets: file, clipboard, archive")
	rootCmd.PersistentFlags().StringVar(&runLogLevel, "log-level", logging.DefaultLevel, "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&runLogFile, "log-file", config.DefaultLogPath(), "log file used while the stopwatch is open")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runStopwatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("lapwatch needs an interactive terminal")
	}

	logger, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	var archive share.Archiver
	if share.Needs(cfg.Targets, share.TargetArchive) {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Warn("failed to close archive", "err", cerr)
			}
		}()
		archive = st
	}

	target, err := share.Build(cfg.Targets, cfg.ExportDir, archive)
	if err != nil {
		return err
	}

	logger.Info("stopwatch started", "tick", cfg.TickInterval, "targets", strings.Join(cfg.Targets, ","))
	m := tui.NewModel(tui.Options{
		TickInterval: cfg.TickInterval,
		Target:       target,
		Logger:       logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("stopwatch closed")
	return nil
}

// resolveConfig layers the config file under explicitly set flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Stopwatch.Tick != nil && !cmd.Flags().Changed("tick") {
		runTick = fileCfg.Stopwatch.Tick.Duration
	}
	applyStringConfig(cmd, "export-dir", &runExportDir, fileCfg.Export.Dir)
	applySliceConfig(cmd, "share", &runTargets, fileCfg.Export.Targets)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &runLogFile, fileCfg.Log.File)

	cfg := model.Config{
		TickInterval: runTick,
		ExportDir:    config.ExpandHome(runExportDir),
		Targets:      runTargets,
		LogLevel:     runLogLevel,
		LogFile:      config.ExpandHome(runLogFile),
	}
	if err := validateConfig(&cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived exports",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N exports")
	cmd.AddCommand(newHistoryShowCmd())
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter, err := historyFilter(historySince, historyLast)
	if err != nil {
		return err
	}
	logger, err := newStderrLogger(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer closeStore(st, logger)

	exports, err := st.ListExports(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}
	logger.Debug("listed exports", "count", len(exports))
	return report.RenderHistory(cmd.OutOrStdout(), exports)
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Show the laps of an archived export",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolVar(&showCSV, "csv", false, "print the exported CSV unchanged")
	cmd.Flags().BoolVar(&showPlot, "plot", false, "plot lap times")
	cmd.Flags().BoolVar(&showColor, "color", false, "force colored plot output")
	return cmd
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	logger, err := newStderrLogger(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer closeStore(st, logger)

	detail, err := st.GetExport(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, store.ErrAmbiguousRef) {
			return fmt.Errorf("%w (use a longer ref)", err)
		}
		return err
	}
	return renderDetail(cmd.OutOrStdout(), detail, showCSV, showPlot, showColor)
}

func renderDetail(w io.Writer, detail model.ExportDetail, asCSV, plot, color bool) error {
	if asCSV {
		_, err := io.WriteString(w, detail.CSV)
		return err
	}
	if _, err := fmt.Fprintf(w, "Export %s  %s\n\n", detail.Ref, detail.ExportedAt.Local().Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	snap := stopwatch.Snapshot{Total: detail.Total, Laps: detail.Laps}
	if err := report.RenderLaps(w, snap); err != nil {
		return err
	}
	if !plot || len(detail.Laps) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return report.PlotLaps(w, detail.Laps, 0, 0, color)
}

func historyFilter(since string, last int) (model.HistoryFilter, error) {
	if last < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Last: last}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	return filter, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lapwatch configuration
# Uncomment a value to enable it. CLI flags override config values.

[stopwatch]
# tick = %q              # Display refresh interval (%s to %s)

[export]
# dir = %q
# targets = ["file"]      # Any of "file", "clipboard", "archive"

[log]
# level = %q           # debug, info, warn or error
# file = %q
`,
		stopwatch.DefaultTickInterval.String(),
		minTick,
		maxTick,
		config.DefaultExportDir(),
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg *model.Config) error {
	if cfg.TickInterval < minTick || cfg.TickInterval > maxTick {
		return fmt.Errorf("--tick must be between %s and %s", minTick, maxTick)
	}
	targets, err := share.ParseTargets(cfg.Targets)
	if err != nil {
		return err
	}
	cfg.Targets = targets
	if share.Needs(targets, share.TargetFile) && strings.TrimSpace(cfg.ExportDir) == "" {
		return fmt.Errorf("--export-dir must not be empty when sharing to a file")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.LogFile) == "" {
		return fmt.Errorf("--log-file must not be empty")
	}
	return nil
}

// newStderrLogger builds the logger for non-interactive commands, honouring
// the configured level unless --log-level was given.
func newStderrLogger(cmd *cobra.Command) (*log.Logger, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)
	return logging.New(cmd.ErrOrStderr(), runLogLevel)
}

func closeStore(st *store.Store, logger *log.Logger) {
	if cerr := st.Close(); cerr != nil {
		logger.Warn("failed to close archive", "err", cerr)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
