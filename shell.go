package termsnap

import "strings"

// ShellType selects the highlighting grammar for plain session text.
type ShellType string

const (
	ShellBash       ShellType = "bash"
	ShellZsh        ShellType = "zsh"
	ShellPowerShell ShellType = "powershell"
	ShellAuto       ShellType = "auto"
)

// shellDetectLines bounds how far DetectShell looks into the text.
const shellDetectLines = 10

// DetectShell guesses the shell of a pasted session from its prompts.
// Only the first 10 lines are inspected and the first matching line wins:
// a "$" or "#" prompt means bash, a ">" prompt or a "PS ...>" prompt means
// PowerShell. Anything else is bash.
func DetectShell(text string) ShellType {
	rest := text
	for i := 0; i < shellDetectLines; i++ {
		line, tail, more := strings.Cut(rest, "\n")

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "$"), strings.HasPrefix(trimmed, "#"):
			return ShellBash
		case strings.HasPrefix(trimmed, ">"):
			return ShellPowerShell
		case strings.Contains(line, "PS ") && strings.Contains(line, ">"):
			return ShellPowerShell
		}

		if !more {
			break
		}
		rest = tail
	}
	return ShellBash
}

// resolve maps a shell selection to a concrete grammar, detecting auto from text.
func (s ShellType) resolve(text string) ShellType {
	switch s {
	case ShellAuto, "":
		return DetectShell(text)
	case ShellZsh:
		return ShellBash
	default:
		return s
	}
}

// Valid reports whether s is one of the known shell types.
func (s ShellType) Valid() bool {
	switch s {
	case ShellBash, ShellZsh, ShellPowerShell, ShellAuto:
		return true
	}
	return false
}
