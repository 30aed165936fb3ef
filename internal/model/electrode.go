package model

import "github.com/google/uuid"

// ElectrodeProfile is a reusable electrode (tool) configuration, carried
// over from the teacher's ToolProfile: a named bundle of the parameters a
// Config needs from a physical tool.
type ElectrodeProfile struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	NaturalDiameter     float64 `json:"natural_diameter"` // mm
	NaturalLength       float64 `json:"natural_length"`   // mm
	EWRMax              float64 `json:"ewr_max"`
}

// NewElectrodeProfile creates an ElectrodeProfile with a generated ID.
func NewElectrodeProfile(name string, diameter, length, ewrMax float64) ElectrodeProfile {
	return ElectrodeProfile{
		ID:              uuid.New().String()[:8],
		Name:            name,
		NaturalDiameter: diameter,
		NaturalLength:   length,
		EWRMax:          ewrMax,
	}
}

// ApplyToConfig copies this electrode's parameters into the given Config.
func (ep ElectrodeProfile) ApplyToConfig(c *Config) {
	c.ToolNaturalDiameter = ep.NaturalDiameter
	c.ToolNaturalLength = ep.NaturalLength
	c.EWRMax = ep.EWRMax
}

// StockPreset is a reusable cylindrical stock blank definition.
type StockPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Diameter float64 `json:"diameter"` // mm
	Length   float64 `json:"length"`   // mm
	Material string  `json:"material"`
}

// NewStockPreset creates a StockPreset with a generated ID.
func NewStockPreset(name string, diameter, length float64, material string) StockPreset {
	return StockPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Diameter: diameter,
		Length:   length,
		Material: material,
	}
}

// ApplyToConfig copies this preset's stock geometry into the given Config.
func (sp StockPreset) ApplyToConfig(c *Config) {
	c.StockDiameter = sp.Diameter
	c.StockLength = sp.Length
}

// Inventory holds the user's saved electrode profiles and stock presets.
type Inventory struct {
	Electrodes []ElectrodeProfile `json:"electrodes"`
	Stocks     []StockPreset      `json:"stocks"`
}

// DefaultInventory returns an inventory populated with common defaults.
func DefaultInventory() Inventory {
	return Inventory{
		Electrodes: []ElectrodeProfile{
			NewElectrodeProfile("0.25mm Brass Wire", 0.25, 40.0, 0.3),
			NewElectrodeProfile("0.3mm Brass Wire", 0.3, 40.0, 0.3),
			NewElectrodeProfile("0.2mm Tungsten Wire", 0.2, 30.0, 0.15),
			NewElectrodeProfile("1mm Copper Rod", 1.0, 50.0, 0.5),
		},
		Stocks: []StockPreset{
			NewStockPreset("15mm Tool Steel Round", 15.0, 50.0, "D2 Tool Steel"),
			NewStockPreset("10mm Carbide Round", 10.0, 40.0, "Tungsten Carbide"),
			NewStockPreset("25mm Stainless Round", 25.0, 75.0, "Stainless 304"),
		},
	}
}

// FindElectrodeByID returns a pointer to the electrode with the given ID, or nil.
func (inv *Inventory) FindElectrodeByID(id string) *ElectrodeProfile {
	for i := range inv.Electrodes {
		if inv.Electrodes[i].ID == id {
			return &inv.Electrodes[i]
		}
	}
	return nil
}

// FindStockByID returns a pointer to the stock preset with the given ID, or nil.
func (inv *Inventory) FindStockByID(id string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == id {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// ElectrodeNames returns electrode profile names for UI dropdowns.
func (inv *Inventory) ElectrodeNames() []string {
	names := make([]string, len(inv.Electrodes))
	for i, e := range inv.Electrodes {
		names[i] = e.Name
	}
	return names
}

// StockNames returns stock preset names for UI dropdowns.
func (inv *Inventory) StockNames() []string {
	names := make([]string, len(inv.Stocks))
	for i, s := range inv.Stocks {
		names[i] = s.Name
	}
	return names
}
