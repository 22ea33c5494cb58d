package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcSpawn places count instances of a template at a position.
type NpcSpawn struct {
	TemplateID int32   `yaml:"template_id"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Z          float64 `yaml:"z"`
	Count      int     `yaml:"count"`
}

// ResourceSpawn places one resource node at a position.
type ResourceSpawn struct {
	TemplateID int32   `yaml:"template_id"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Z          float64 `yaml:"z"`
}

type spawnListFile struct {
	NpcSpawns      []NpcSpawn      `yaml:"npc_spawns"`
	ResourceSpawns []ResourceSpawn `yaml:"resource_spawns"`
}

// SpawnList holds the static world population.
type SpawnList struct {
	NpcSpawns      []NpcSpawn
	ResourceSpawns []ResourceSpawn
}

// LoadSpawnList loads NPC and resource placements from a YAML file.
func LoadSpawnList(path string) (*SpawnList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	return &SpawnList{
		NpcSpawns:      f.NpcSpawns,
		ResourceSpawns: f.ResourceSpawns,
	}, nil
}
