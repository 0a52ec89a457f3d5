package termsnap

import (
	"testing"
)

func TestHighlight_PreservesText(t *testing.T) {
	inputs := []struct {
		shell ShellType
		text  string
	}{
		{ShellBash, "$ echo \"hello\" # greet\nhello"},
		{ShellZsh, "for i in 1 2 3; do echo $i; done"},
		{ShellPowerShell, "PS C:\\> Get-ChildItem -Path . | Where-Object { $_.Length -gt 10 }"},
		{ShellAuto, "$ ls -la\ntotal 0\n"},
	}

	for _, in := range inputs {
		runs := Highlight(in.text, in.shell, nil)
		if got := PlainText(runs); got != in.text {
			t.Errorf("%s: PlainText = %q, want %q", in.shell, got, in.text)
		}
		for i, r := range runs {
			if r.Text == "" {
				t.Errorf("%s: run %d is empty", in.shell, i)
			}
		}
	}
}

func TestHighlight_ColorsTokens(t *testing.T) {
	theme := DefaultTheme()
	runs := Highlight("echo \"quoted\" # note", ShellBash, theme)

	var comment, str *StyledRun
	for i := range runs {
		switch runs[i].Text {
		case "# note":
			comment = &runs[i]
		case "\"quoted\"":
			str = &runs[i]
		}
	}

	if comment == nil {
		t.Fatalf("no comment run in %q", PlainText(runs))
	}
	if got := ColorHex(comment.Fg); got != theme.Hex(SlotBrightBlack) {
		t.Errorf("comment color = %s, want %s", got, theme.Hex(SlotBrightBlack))
	}
	if !comment.Italic() {
		t.Error("comment is not italic")
	}

	if str == nil {
		t.Fatalf("no string run in %q", PlainText(runs))
	}
	if got := ColorHex(str.Fg); got != theme.Hex(SlotGreen) {
		t.Errorf("string color = %s, want %s", got, theme.Hex(SlotGreen))
	}
}

func TestHighlight_Empty(t *testing.T) {
	if runs := Highlight("", ShellBash, nil); len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestHighlight_UnknownShellFallsBack(t *testing.T) {
	runs := Highlight("just text", ShellType("no-such-grammar"), nil)
	if len(runs) != 1 || runs[0].Text != "just text" || runs[0].Fg != nil {
		t.Errorf("runs = %+v, want a single default run", runs)
	}
}

func TestHighlight_RethemeAppliesToTokens(t *testing.T) {
	text := "# comment only"
	dracula := Highlight(text, ShellBash, ThemeByName("Dracula"))
	nord := Retheme(dracula, ThemeByName("Nord"))

	if got, want := ColorHex(nord[0].Fg), ThemeByName("Nord").Hex(SlotBrightBlack); got != want {
		t.Errorf("rethemed comment = %s, want %s", got, want)
	}
}

func TestRenderRuns(t *testing.T) {
	theme := DefaultTheme()

	// Escapes always go through the SGR interpreter.
	runs := RenderRuns("\x1b[31m# red\x1b[0m", true, ShellBash, theme)
	if len(runs) != 1 || ColorHex(runs[0].Fg) != theme.Hex(SlotRed) {
		t.Errorf("escaped text runs = %+v, want one red run", runs)
	}

	// Highlighting off keeps plain text as one default run.
	runs = RenderRuns("# comment", false, ShellBash, theme)
	if len(runs) != 1 || runs[0].Fg != nil {
		t.Errorf("plain runs = %+v, want one default run", runs)
	}

	// Highlighting on colors the comment.
	runs = RenderRuns("# comment", true, ShellBash, theme)
	if len(runs) == 0 || ColorHex(runs[0].Fg) != theme.Hex(SlotBrightBlack) {
		t.Errorf("highlighted runs = %+v, want a comment color", runs)
	}
}
