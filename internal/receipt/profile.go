package receipt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the store header and the paper geometry of a receipt.
type Profile struct {
	StoreName     string   `yaml:"store_name"`
	StoreAddress  string   `yaml:"store_address"`
	Footer        []string `yaml:"footer"`
	Columns       int      `yaml:"columns"`
	WidthPx       int      `yaml:"width_px"`
	BaseHeightPx  int      `yaml:"base_height_px"`
	PerLineHeight int      `yaml:"per_line_height_px"`
}

// DefaultProfile is a 58mm thermal roll.
func DefaultProfile() Profile {
	return Profile{
		StoreName:     "BENGKEL SHOFA",
		StoreAddress:  "Jl. Cijaku Lebak Banten",
		Footer:        []string{"TERIMA KASIH", "ATAS KUNJUNGAN ANDA"},
		Columns:       32,
		WidthPx:       164,
		BaseHeightPx:  330,
		PerLineHeight: 45,
	}
}

// LoadProfile reads a YAML profile from path. Fields left out of the file
// keep their DefaultProfile values. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read receipt profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("failed to parse receipt profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid receipt profile %s: %w", path, err)
	}
	return profile, nil
}

func (p Profile) Validate() error {
	if p.StoreName == "" {
		return fmt.Errorf("store_name cannot be empty")
	}
	if p.Columns < 16 {
		return fmt.Errorf("columns must be at least 16, got %d", p.Columns)
	}
	if p.WidthPx <= 0 || p.BaseHeightPx <= 0 || p.PerLineHeight <= 0 {
		return fmt.Errorf("page geometry must be positive")
	}
	return nil
}

// Height is the page height needed for lineItems rows, so the generated
// page is neither truncated nor padded.
func (p Profile) Height(lineItems int) int {
	return p.BaseHeightPx + lineItems*p.PerLineHeight
}
