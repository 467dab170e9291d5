package models

// DisplayMode selects how a group's roots are presented.
type DisplayMode string

const (
	// DisplayFlat shows each declared root as an immediate child of its group.
	DisplayFlat DisplayMode = "flat"
	// DisplayFullPaths merges roots that share path prefixes into a nested
	// segment tree.
	DisplayFullPaths DisplayMode = "full"
)

// Settings is an immutable snapshot of the display options. Callers pass a
// snapshot into the materializer and resolver on each call rather than
// reading ambient state piecemeal; the service swaps the whole snapshot
// atomically on a change notification.
type Settings struct {
	DisplayMode      DisplayMode `mapstructure:"display_mode"`
	AutoReveal       bool        `mapstructure:"auto_reveal"`
	CollapseInactive bool        `mapstructure:"collapse_inactive"`
	Debug            bool        `mapstructure:"debug"`
}

// DefaultSettings returns the settings used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		DisplayMode:      DisplayFlat,
		AutoReveal:       true,
		CollapseInactive: false,
	}
}
