package termsnap

// BackgroundPreset is a paint for the outer frame: a CSS background value plus
// a solid color used for swatches and as the raster fallback.
type BackgroundPreset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CSS          string `json:"css"`
	PreviewColor string `json:"previewColor"`
}

// backgrounds is the registry; the first entry is the fallback.
var backgrounds = []BackgroundPreset{
	{
		ID:           "gradient-purple",
		Name:         "Purple Gradient",
		CSS:          "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		PreviewColor: "#667eea",
	},
	{
		ID:           "gradient-blue",
		Name:         "Blue Gradient",
		CSS:          "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		PreviewColor: "#667eea",
	},
	{
		ID:           "gradient-pink",
		Name:         "Pink Gradient",
		CSS:          "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
		PreviewColor: "#f093fb",
	},
	{
		ID:           "gradient-green",
		Name:         "Green Gradient",
		CSS:          "linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
		PreviewColor: "#4facfe",
	},
	{
		ID:           "gradient-orange",
		Name:         "Orange Gradient",
		CSS:          "linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
		PreviewColor: "#fa709a",
	},
	{
		ID:           "solid-white",
		Name:         "White",
		CSS:          "#ffffff",
		PreviewColor: "#ffffff",
	},
	{
		ID:           "solid-gray",
		Name:         "Light Gray",
		CSS:          "#f5f5f5",
		PreviewColor: "#f5f5f5",
	},
	{
		ID:           "solid-dark",
		Name:         "Dark Gray",
		CSS:          "#1a1a1a",
		PreviewColor: "#1a1a1a",
	},
	{
		ID:           "gradient-dark",
		Name:         "Dark Gradient",
		CSS:          "linear-gradient(135deg, #1e3c72 0%, #2a5298 100%)",
		PreviewColor: "#1e3c72",
	},
	{
		ID:           "gradient-rainbow",
		Name:         "Rainbow Gradient",
		CSS:          "linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
		PreviewColor: "#667eea",
	},
	{
		ID:           "macos-sonoma-purple",
		Name:         "Sonoma Purple",
		CSS:          "radial-gradient(ellipse at 20% 30%, #8b5cf6 0%, transparent 50%), radial-gradient(ellipse at 80% 70%, #ec4899 0%, transparent 50%), linear-gradient(135deg, #1e1b4b 0%, #0f172a 100%)",
		PreviewColor: "#8b5cf6",
	},
	{
		ID:           "macos-sequoia-blue",
		Name:         "Sequoia Blue",
		CSS:          "radial-gradient(ellipse at 30% 20%, #3b82f6 0%, transparent 60%), radial-gradient(ellipse at 70% 80%, #06b6d4 0%, transparent 60%), linear-gradient(to bottom, #0c4a6e 0%, #020617 100%)",
		PreviewColor: "#3b82f6",
	},
	{
		ID:           "macos-green-aurora",
		Name:         "Green Aurora",
		CSS:          "radial-gradient(ellipse at 50% 0%, #10b981 0%, transparent 70%), radial-gradient(ellipse at 0% 100%, #059669 0%, transparent 60%), radial-gradient(ellipse at 100% 100%, #0d9488 0%, transparent 60%), linear-gradient(to bottom, #064e3b 0%, #0f172a 100%)",
		PreviewColor: "#10b981",
	},
	{
		ID:           "macos-sunset-orange",
		Name:         "Sunset Orange",
		CSS:          "radial-gradient(ellipse at 50% 40%, #f97316 0%, transparent 50%), radial-gradient(ellipse at 20% 80%, #fb923c 0%, transparent 60%), radial-gradient(ellipse at 80% 60%, #fbbf24 0%, transparent 50%), linear-gradient(135deg, #7c2d12 0%, #1c1917 100%)",
		PreviewColor: "#f97316",
	},
	{
		ID:           "macos-pink-flow",
		Name:         "Pink Flow",
		CSS:          "radial-gradient(ellipse at 30% 50%, #ec4899 0%, transparent 60%), radial-gradient(ellipse at 70% 30%, #a855f7 0%, transparent 60%), radial-gradient(ellipse at 50% 90%, #f472b6 0%, transparent 50%), linear-gradient(to bottom, #831843 0%, #0f172a 100%)",
		PreviewColor: "#ec4899",
	},
}

// Backgrounds returns a copy of every registered background preset.
func Backgrounds() []BackgroundPreset {
	out := make([]BackgroundPreset, len(backgrounds))
	copy(out, backgrounds)
	return out
}

// BackgroundByID looks up a preset by id. Unknown ids, including "", resolve to the first preset.
func BackgroundByID(id string) BackgroundPreset {
	for _, bg := range backgrounds {
		if bg.ID == id {
			return bg
		}
	}
	return backgrounds[0]
}
