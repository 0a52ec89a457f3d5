package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type harness struct {
	t      *testing.T
	dir    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "config.toml")
	data := fmt.Sprintf("settings_dir = %q\noutput_dir = %q\n", filepath.Join(dir, "state"), filepath.Join(dir, "out"))
	if err := os.WriteFile(config, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return &harness{t: t, dir: dir, config: config}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--config", h.config}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestDetectCmd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("PS C:\\> dir\n", "detect")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if strings.TrimSpace(out) != "powershell" {
		t.Errorf("detect = %q, want powershell", out)
	}
}

func TestRenderCmd_HTML(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("\x1b[31mred\x1b[0m a<b", "render", "--html", "--chrome", "windows")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "a&lt;b") {
		t.Errorf("HTML does not contain the escaped text: %s", out)
	}
	if !strings.Contains(out, "Terminal") {
		t.Error("HTML has no window title")
	}
}

func TestRenderCmd_PNG(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("hello", "render", "-o", "shot.png", "--scale", "1"); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(filepath.Join(h.dir, "out", "shot.png"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1280 || b.Dy() != 280 {
		t.Errorf("size = %dx%d, want 1280x280", b.Dx(), b.Dy())
	}
}

func TestRenderCmd_InvalidFlag(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("x", "render", "--chrome", "amiga")
	if err == nil || !strings.Contains(err.Error(), "unknown chrome") {
		t.Errorf("err = %v, want unknown chrome", err)
	}
}

func TestSettingsCmd(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("", "settings", "show"); err == nil {
		t.Error("settings show with nothing stored = nil, want error")
	}

	if _, err := h.run("x", "render", "--html", "--save", "--theme", "Nord"); err != nil {
		t.Fatalf("render --save: %v", err)
	}
	out, err := h.run("", "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, "Nord") {
		t.Errorf("settings show = %s, want the saved theme", out)
	}

	// Stored settings become the base of the next render.
	out, err = h.run("y", "render", "--html")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "#2e3440") {
		t.Error("render did not use the stored Nord theme")
	}

	if _, err := h.run("", "settings", "clear"); err != nil {
		t.Fatalf("settings clear: %v", err)
	}
	if _, err := h.run("", "settings", "show"); err == nil {
		t.Error("settings show after clear = nil, want error")
	}
}

func TestListCmds(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		cmd  string
		want string
	}{
		{"themes", "Dracula"},
		{"backgrounds", "gradient-purple"},
		{"fonts", "fira-code"},
	}
	for _, tt := range tests {
		out, err := h.run("", tt.cmd)
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s output lacks %q", tt.cmd, tt.want)
		}
	}
}

func TestBadConfig(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.config, []byte("log_level = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.run("", "themes")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("err = %v, want invalid log level", err)
	}
}

func TestExecCmd_CommandFlags(t *testing.T) {
	cmd := newExecCmd(newApp(strings.NewReader(""), io.Discard, io.Discard))

	if err := cmd.ParseFlags([]string{"--cols", "80", "ls", "-la", "--color"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if got := cmd.Flags().Args(); !slices.Equal(got, []string{"ls", "-la", "--color"}) {
		t.Errorf("args = %q, want [ls -la --color]", got)
	}
	if cols, _ := cmd.Flags().GetUint16("cols"); cols != 80 {
		t.Errorf("cols = %d, want 80", cols)
	}
}
