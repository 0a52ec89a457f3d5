package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
)

func newExecCmd(a *app) *cobra.Command {
	var (
		flags renderFlags
		cols  uint16
		rows  uint16
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command in a pseudo-terminal and render its output",
		Long: `Run a command under a pseudo-terminal so it keeps its colors, then
render everything it printed. The window title defaults to the command name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runInPTY(cmd, args, cols, rows)
			if err != nil {
				return err
			}
			a.logger.Debug("command finished", "cmd", args[0], "bytes", len(out))

			s, err := flags.settings(a, cmd.Flags(), cleanPTYOutput(string(out)))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") && a.cfg.Render.Title == "" {
				s.WindowTitle = args[0]
			}
			return flags.emit(cmd.Context(), a, s)
		},
	}

	// Flags after the command name belong to the command.
	cmd.Flags().SetInterspersed(false)
	flags.register(cmd.Flags())
	cmd.Flags().Uint16Var(&cols, "cols", 100, "terminal width the command sees")
	cmd.Flags().Uint16Var(&rows, "rows", 40, "terminal height the command sees")
	return cmd
}

// runInPTY runs args[0] with a pseudo-terminal as its controlling terminal
// and returns everything it wrote. A non-zero exit status is not an error:
// failing commands are worth a snapshot too.
func runInPTY(cmd *cobra.Command, args []string, cols, rows uint16) ([]byte, error) {
	c := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
	c.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	ptmx, err := pty.StartWithSize(c, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", args[0], err)
	}
	defer ptmx.Close()

	var buf bytes.Buffer
	// Linux reports EIO once the child side closes.
	if _, err := io.Copy(&buf, ptmx); err != nil && !errors.Is(err, syscall.EIO) {
		return nil, fmt.Errorf("reading output: %w", err)
	}

	if err := c.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s exited with status %d\n", args[0], exitErr.ExitCode())
	}
	return buf.Bytes(), nil
}
