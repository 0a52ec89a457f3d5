package termsnap

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// tokenStyle colors one chroma token class with a theme palette slot.
type tokenStyle struct {
	token chroma.TokenType
	sub   bool
	slot  int
	flags StyleFlags
}

// tokenStyles is checked in order; the first match styles the token.
var tokenStyles = []tokenStyle{
	{token: chroma.Comment, slot: SlotBrightBlack, flags: StyleItalic},
	{token: chroma.GenericPrompt, slot: SlotBrightBlack},
	{token: chroma.Keyword, slot: SlotMagenta},
	{token: chroma.NameBuiltin, sub: true, slot: SlotCyan},
	{token: chroma.NameFunction, sub: true, slot: SlotBlue},
	{token: chroma.NameVariable, sub: true, slot: SlotYellow},
	{token: chroma.LiteralString, sub: true, slot: SlotGreen},
	{token: chroma.LiteralNumber, sub: true, slot: SlotBrightYellow},
	{token: chroma.Operator, slot: SlotRed},
}

// Highlight colors plain session text with the grammar of shell, mapping
// token classes onto the theme palette. zsh uses the bash grammar and auto
// runs DetectShell. If the text cannot be tokenized, it is returned as a
// single default run. A nil theme means DefaultTheme.
func Highlight(text string, shell ShellType, theme *Theme) []StyledRun {
	if text == "" {
		return nil
	}
	if theme == nil {
		theme = DefaultTheme()
	}

	lexer := lexers.Get(string(shell.resolve(text)))
	if lexer == nil {
		return []StyledRun{{Text: text}}
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return []StyledRun{{Text: text}}
	}

	var (
		runs    []StyledRun
		state   StyleState
		pending strings.Builder
	)
	for _, tok := range iterator.Tokens() {
		if tok.Value == "" {
			continue
		}
		next := tokenState(tok.Type, theme)
		if !next.Equal(state) && pending.Len() > 0 {
			runs = append(runs, state.run(pending.String()))
			pending.Reset()
		}
		state = next
		pending.WriteString(tok.Value)
	}
	if pending.Len() > 0 {
		runs = append(runs, state.run(pending.String()))
	}

	// Lexers may add a final newline.
	if joined := PlainText(runs); joined != text {
		if joined != text+"\n" {
			return []StyledRun{{Text: text}}
		}
		last := &runs[len(runs)-1]
		last.Text = strings.TrimSuffix(last.Text, "\n")
		if last.Text == "" {
			runs = runs[:len(runs)-1]
		}
	}
	return runs
}

func tokenState(tt chroma.TokenType, theme *Theme) StyleState {
	for _, ts := range tokenStyles {
		match := tt.InCategory(ts.token)
		if ts.sub {
			match = tt.InSubCategory(ts.token)
		}
		if match {
			return StyleState{Fg: paletteColor(ts.slot, theme), Flags: ts.flags}
		}
	}
	return StyleState{}
}

// RenderRuns produces the runs for text the way a preview shows them: text
// carrying escape sequences, or any text when highlighting is off, goes through
// Interpret; plain text with highlighting on goes through Highlight.
func RenderRuns(text string, highlight bool, shell ShellType, theme *Theme) []StyledRun {
	if !highlight || strings.IndexByte(text, ESC) >= 0 {
		return Interpret(text, theme)
	}
	return Highlight(text, shell, theme)
}
