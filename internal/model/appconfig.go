package model

// AppConfig holds host-level preferences and default planning settings
// (spec §6 "Host control surface"), independent of any one job.
type AppConfig struct {
	DefaultRes                 float64 `json:"default_res"`
	DefaultStockCutWidth       float64 `json:"default_stock_cut_width"`
	DefaultEWRMax              float64 `json:"default_ewr_max"`
	DefaultToolNaturalDiameter float64 `json:"default_tool_natural_diameter"`
	DefaultToolNaturalLength   float64 `json:"default_tool_natural_length"`
	DefaultFeedDepth           float64 `json:"default_feed_depth"`
	DefaultGCodeProfile        string  `json:"default_gcode_profile"`

	AutoSaveInterval int      `json:"auto_save_interval"` // minutes, 0 = disabled
	RecentJobs       []string `json:"recent_jobs"`
	Theme            string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig matching DefaultConfig()'s values.
func DefaultAppConfig() AppConfig {
	d := DefaultConfig()
	return AppConfig{
		DefaultRes:                 d.Res,
		DefaultStockCutWidth:       d.StockCutWidth,
		DefaultEWRMax:              d.EWRMax,
		DefaultToolNaturalDiameter: d.ToolNaturalDiameter,
		DefaultToolNaturalLength:   d.ToolNaturalLength,
		DefaultFeedDepth:           d.FeedDepth,
		DefaultGCodeProfile:        d.GCodeProfile,
		AutoSaveInterval:           0,
		RecentJobs:                 []string{},
		Theme:                      "system",
	}
}

// ApplyToConfig copies the default values from AppConfig into a Config. Used
// when creating a new job so it inherits the user's saved defaults.
func (c AppConfig) ApplyToConfig(s *Config) {
	s.Res = c.DefaultRes
	s.StockCutWidth = c.DefaultStockCutWidth
	s.EWRMax = c.DefaultEWRMax
	s.ToolNaturalDiameter = c.DefaultToolNaturalDiameter
	s.ToolNaturalLength = c.DefaultToolNaturalLength
	s.FeedDepth = c.DefaultFeedDepth
	s.GCodeProfile = c.DefaultGCodeProfile
}
