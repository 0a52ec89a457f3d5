package termsnap

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Persisted settings record.
const (
	StorageKey     = "terminalsnap-settings"
	StorageVersion = 1
)

// SampleOutput is the session text of a fresh configuration.
const SampleOutput = `$ npm install -g terminal-snap
npm WARN deprecated package@1.0.0: This package is no longer maintained
added 245 packages in 15s

$ git status
On branch main
Your branch is up to date with 'origin/main'.

Changes not staged for commit:
  (use "git add <file>..." to update what will be committed)
  (use "git restore <file>..." to discard changes in working directory)
        modified:   src/components/TerminalPreview.tsx

$ git add .
$ git commit -m "feat: add terminal preview component"
[main a1b2c3d] feat: add terminal preview component
 1 file changed, 45 insertions(+), 12 deletions(-)

$ git push
Enumerating objects: 5, done.
Counting objects: 100% (5/5), done.
Delta compression using up to 4 threads
Compressing objects: 100% (3/3), done.
Writing objects: 100% (3/3), 312 bytes | 312.00 KiB/s, done.
To https://github.com/user/terminal-snap.git
   a1b2c3d..f4e5d6a  main -> main`

// Settings is a full configuration snapshot. Registry entries are referenced
// by name or id and resolved on use.
type Settings struct {
	Text         string             `json:"text"`
	ThemeName    string             `json:"theme"`
	BackgroundID string             `json:"background"`
	FontID       string             `json:"fontFamily"`
	OSChrome     OSChrome           `json:"osChrome"`
	ShellType    ShellType          `json:"shellType"`
	Highlight    bool               `json:"highlight"`
	WindowTitle  string             `json:"windowTitle,omitempty"`
	Orientation  Orientation        `json:"orientation"`
	Padding      OrientationPadding `json:"padding"`
	DropShadow   bool               `json:"dropShadow"`
	Transparent  bool               `json:"transparentBackground"`
}

// DefaultSettings returns the settings of a fresh configuration.
func DefaultSettings() Settings {
	layout := DefaultLayout()
	return Settings{
		Text:         SampleOutput,
		ThemeName:    DefaultTheme().Name,
		BackgroundID: layout.Background.ID,
		FontID:       layout.Font.ID,
		OSChrome:     layout.OSChrome,
		ShellType:    ShellAuto,
		WindowTitle:  layout.WindowTitle,
		Orientation:  layout.Orientation,
		Padding:      layout.Padding,
		DropShadow:   layout.DropShadow,
		Transparent:  layout.Transparent,
	}
}

// Theme resolves ThemeName against the theme registry.
func (s Settings) Theme() *Theme {
	return ThemeByName(s.ThemeName)
}

// Layout resolves the settings into a LayoutConfig.
func (s Settings) Layout() LayoutConfig {
	return LayoutConfig{
		Orientation: s.Orientation,
		Padding:     s.Padding,
		OSChrome:    s.OSChrome,
		WindowTitle: s.WindowTitle,
		DropShadow:  s.DropShadow,
		Transparent: s.Transparent,
		Background:  BackgroundByID(s.BackgroundID),
		Font:        FontByID(s.FontID),
	}
}

// Compose builds the visual tree of the settings' text.
func (s Settings) Compose() *Node {
	theme := s.Theme()
	return Compose(RenderRuns(s.Text, s.Highlight, s.ShellType, theme), s.Layout(), theme)
}

// SettingsStore persists Settings as a versioned record in a Storage.
// Storage and parse failures never reach the caller: they are logged as
// warnings and read as "no stored settings" or "save skipped".
type SettingsStore struct {
	storage Storage
	logger  *log.Logger
	now     func() time.Time
}

// StoreOption configures a SettingsStore.
type StoreOption func(*SettingsStore)

// WithStoreLogger sets the logger. Defaults to a logger that discards everything.
func WithStoreLogger(l *log.Logger) StoreOption {
	return func(s *SettingsStore) {
		s.logger = l
	}
}

// NewSettingsStore creates a store on top of storage.
func NewSettingsStore(storage Storage, opts ...StoreOption) *SettingsStore {
	s := &SettingsStore{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Save writes settings with the current version and a lastSaved timestamp.
func (s *SettingsStore) Save(settings Settings) {
	raw, err := sjson.Set("", "version", StorageVersion)
	if err == nil {
		raw, err = sjson.Set(raw, "settings", settings)
	}
	if err == nil {
		raw, err = sjson.Set(raw, "lastSaved", s.now().UTC().Format(time.RFC3339))
	}
	if err != nil {
		s.logger.Warn("failed to encode settings", "err", err)
		return
	}

	if err := s.storage.Set(StorageKey, raw); err != nil {
		s.logger.Warn("failed to save settings", "err", err)
	}
}

// Load returns the stored settings, or nil when there are none, the record
// is unreadable or its version is not StorageVersion. Fields missing from the
// record keep their DefaultSettings values.
func (s *SettingsStore) Load() *Settings {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to load settings", "err", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	if !gjson.Valid(raw) {
		s.logger.Warn("failed to load settings", "err", "malformed record")
		return nil
	}

	record := gjson.Parse(raw)
	if v := record.Get("version"); v.Type != gjson.Number || v.Num != float64(StorageVersion) {
		s.logger.Info("settings version mismatch, ignoring stored settings", "version", v.Raw)
		return nil
	}

	settings := DefaultSettings()
	fillSettings(&settings, record.Get("settings"))
	return &settings
}

// LastSaved returns the timestamp of the stored record.
func (s *SettingsStore) LastSaved() (time.Time, bool) {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, gjson.Get(raw, "lastSaved").String())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clear removes the stored record.
func (s *SettingsStore) Clear() {
	if err := s.storage.Remove(StorageKey); err != nil {
		s.logger.Warn("failed to clear settings", "err", err)
	}
}

// SettingsFromJSON reads a settings object in the persisted field layout.
// Missing, mistyped or malformed fields keep their DefaultSettings values.
func SettingsFromJSON(raw string) Settings {
	settings := DefaultSettings()
	if gjson.Valid(raw) {
		fillSettings(&settings, gjson.Parse(raw))
	}
	return settings
}

// fillSettings overwrites the fields of dst present in p with matching types.
// Theme and background may be stored as whole objects; their name and id are used.
func fillSettings(dst *Settings, p gjson.Result) {
	if !p.IsObject() {
		return
	}

	str := func(v gjson.Result, out *string) {
		if v.Type == gjson.String {
			*out = v.String()
		}
	}
	boolean := func(v gjson.Result, out *bool) {
		if v.IsBool() {
			*out = v.Bool()
		}
	}
	integer := func(v gjson.Result, out *int) {
		if v.Type == gjson.Number {
			*out = int(v.Int())
		}
	}

	str(p.Get("text"), &dst.Text)
	if theme := p.Get("theme"); theme.IsObject() {
		str(theme.Get("name"), &dst.ThemeName)
	} else {
		str(theme, &dst.ThemeName)
	}
	if bg := p.Get("background"); bg.IsObject() {
		str(bg.Get("id"), &dst.BackgroundID)
	} else {
		str(bg, &dst.BackgroundID)
	}
	str(p.Get("fontFamily"), &dst.FontID)

	var chrome, shell, orientation string
	str(p.Get("osChrome"), &chrome)
	str(p.Get("shellType"), &shell)
	str(p.Get("orientation"), &orientation)
	if chrome != "" {
		dst.OSChrome = OSChrome(chrome)
	}
	if shell != "" {
		dst.ShellType = ShellType(shell)
	}
	if orientation != "" {
		dst.Orientation = Orientation(orientation)
	}

	boolean(p.Get("highlight"), &dst.Highlight)
	str(p.Get("windowTitle"), &dst.WindowTitle)
	boolean(p.Get("dropShadow"), &dst.DropShadow)
	boolean(p.Get("transparentBackground"), &dst.Transparent)

	integer(p.Get("padding.landscape.horizontal"), &dst.Padding.Landscape.Horizontal)
	integer(p.Get("padding.landscape.vertical"), &dst.Padding.Landscape.Vertical)
	integer(p.Get("padding.portrait.horizontal"), &dst.Padding.Portrait.Horizontal)
	integer(p.Get("padding.portrait.vertical"), &dst.Padding.Portrait.Vertical)
}
