// Package model holds the planner's plain data types: machining
// configuration, electrode/stock inventory, and the path/tool-state
// records produced by a plan (spec §3, §6 "Host control surface").
package model

// Config holds the host-recognized planning options (spec §6).
type Config struct {
	// Res is the voxel resolution in mm; drives grid memory and jump-flood
	// pass count.
	Res float64 `json:"res"`

	// Stock geometry.
	StockDiameter   float64 `json:"stock_diameter"`    // mm
	StockLength     float64 `json:"stock_length"`      // mm
	StockTopBuffer  float64 `json:"stock_top_buffer"`  // mm
	StockCutWidth   float64 `json:"stock_cut_width"`   // mm, part-off kerf width
	SimWorkBuffer   float64 `json:"sim_work_buffer"`   // mm, extra stock simulated below target

	// EWRMax is the electrode-wear-ratio upper bound used to budget tool
	// consumption per planar-sweep scan.
	EWRMax float64 `json:"ewr_max"`

	// Electrode (tool) parameters.
	ToolNaturalDiameter float64 `json:"tool_natural_diameter"` // mm
	ToolNaturalLength   float64 `json:"tool_natural_length"`   // mm

	// FeedDepth is the planar-sweep layer thickness in mm.
	FeedDepth float64 `json:"feed_depth"`

	// ProtectedZ, if HasProtectedZ, is the z-plane (work coords, mm) below
	// which remaining work is fixed as stock kept for the next session.
	ProtectedZ    float64 `json:"protected_z,omitempty"`
	HasProtectedZ bool    `json:"has_protected_z"`

	// GCodeProfile names the post-processor profile used by the emitter.
	GCodeProfile string `json:"gcode_profile"`
}

// DefaultConfig returns a Config populated with sensible defaults for a
// small wire-EDM job.
func DefaultConfig() Config {
	return Config{
		Res:                 0.5,
		StockDiameter:       15.0,
		StockLength:         20.0,
		StockTopBuffer:      2.0,
		StockCutWidth:       0.3,
		SimWorkBuffer:       2.0,
		EWRMax:              0.3,
		ToolNaturalDiameter: 0.25,
		ToolNaturalLength:   40.0,
		FeedDepth:           1.0,
		GCodeProfile:        "Generic",
	}
}

// GCodeProfile defines a post-processor configuration for a machine
// controller, carried over from the teacher's rectangular cut-list
// post-processors and reused verbatim by the path-point emitter (spec §6).
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`
	SpindleStart string   `json:"spindle_start"`
	SpindleStop  string   `json:"spindle_stop"`
	HomeAll      string   `json:"home_all"`

	// Motion settings
	AbsoluteMode string `json:"absolute_mode"`
	RapidMove    string `json:"rapid_move"` // G0 or equivalent
	FeedMove     string `json:"feed_move"`  // G1 or equivalent

	// End codes
	EndCode []string `json:"end_code"`

	// Comment style
	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	// Number formatting
	DecimalPlaces int `json:"decimal_places"`

	// IsBuiltIn marks a profile shipped with the planner rather than
	// imported/user-authored; cleared on import (internal/store/profiles.go).
	IsBuiltIn bool `json:"is_built_in,omitempty"`
}

// GCodeProfiles are the built-in post-processor profiles.
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		AbsoluteMode:  "G90",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28",
		AbsoluteMode:  "G90",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "Generic",
		Description:   "Generic 5-axis GCode (X Y Z B C)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28",
		AbsoluteMode:  "G90",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
}

// GetProfile returns a named profile, or Generic if name is unknown.
func GetProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}

// GetProfileNames lists all built-in profile names.
func GetProfileNames() []string {
	names := make([]string, len(GCodeProfiles))
	for i, p := range GCodeProfiles {
		names[i] = p.Name
	}
	return names
}
