package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	termsnap "github.com/danielgatis/go-termsnap"
)

const defaultLogLevel = "warn"

// app carries the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	cfg    Config
	logger *log.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.NewWithOptions(stderr, log.Options{Prefix: "termsnap"}),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "termsnap",
		Short:         "Render terminal output as styled PNG snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/termsnap/config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newRenderCmd(a),
		newExecCmd(a),
		newThemesCmd(a),
		newBackgroundsCmd(a),
		newFontsCmd(a),
		newSettingsCmd(a),
		newDetectCmd(a),
	)
	return root
}

// init loads the config file and applies the log level.
func (a *app) init() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := defaultLogLevel
	if cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	a.logger.SetLevel(lvl)
	return nil
}

// store opens the persisted settings. Without a usable settings directory
// the store lives in memory for the duration of the command.
func (a *app) store() *termsnap.SettingsStore {
	dir := a.cfg.SettingsDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			a.logger.Warn("no settings directory, settings will not persist", "err", err)
			return termsnap.NewSettingsStore(termsnap.NewMemoryStorage(), termsnap.WithStoreLogger(a.logger))
		}
		dir = filepath.Join(base, "termsnap")
	}
	return termsnap.NewSettingsStore(termsnap.FileStorage{Dir: dir}, termsnap.WithStoreLogger(a.logger))
}

// readInput reads the named file, or stdin when there is no name or it is "-".
func (a *app) readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
