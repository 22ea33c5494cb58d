package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZoneRecord is a static axis-aligned region of the world.
type ZoneRecord struct {
	ZoneID     int32   `yaml:"zone_id"`
	Name       string  `yaml:"name"`
	MinX       float64 `yaml:"min_x"`
	MinY       float64 `yaml:"min_y"`
	MinZ       float64 `yaml:"min_z"`
	MaxX       float64 `yaml:"max_x"`
	MaxY       float64 `yaml:"max_y"`
	MaxZ       float64 `yaml:"max_z"`
	SafeZone   bool    `yaml:"safe_zone"`
	PvpEnabled bool    `yaml:"pvp_enabled"`
	LevelMin   int     `yaml:"level_min"`
	LevelMax   int     `yaml:"level_max"`
}

type zoneListFile struct {
	Zones []ZoneRecord `yaml:"zones"`
}

// LoadZoneList loads the static zone catalog from a YAML file.
func LoadZoneList(path string) ([]ZoneRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone list: %w", err)
	}
	var f zoneListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse zone list: %w", err)
	}
	return f.Zones, nil
}
