package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	termsnap "github.com/danielgatis/go-termsnap"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or clear persisted settings",
	}

	var withText bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.store()
			s := store.Load()
			if s == nil {
				return errors.New("no persisted settings")
			}
			if !withText {
				s.Text = ""
			}

			raw, err := sjson.Set("", "settings", s)
			if err == nil {
				if ts, ok := store.LastSaved(); ok {
					raw, err = sjson.Set(raw, "lastSaved", ts.Local().Format("2006-01-02 15:04:05"))
				}
			}
			if err != nil {
				return err
			}

			out := pretty.Pretty([]byte(raw))
			if f, ok := a.stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				out = pretty.Color(out, pretty.TerminalStyle)
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
	show.Flags().BoolVar(&withText, "text", false, "include the session text")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the persisted settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.store().Clear()
			fmt.Fprintln(a.stdout, "settings cleared")
		},
	}

	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Persist the built-in settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.store().Save(termsnap.DefaultSettings())
		},
	}

	cmd.AddCommand(show, clearCmd, defaults)
	return cmd
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [file]",
		Short: "Print the shell a session was typed in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, termsnap.DetectShell(text))
			return nil
		},
	}
}
