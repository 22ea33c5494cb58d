package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YieldRow is one possible yield from harvesting a resource node.
type YieldRow struct {
	ItemID int32   `yaml:"item_id"`
	Min    int32   `yaml:"min"`
	Max    int32   `yaml:"max"`
	Chance float64 `yaml:"chance"` // 0..1
}

// ResourceTemplate defines a harvestable node kind (rock, tree, fishing spot).
type ResourceTemplate struct {
	TemplateID    int32      `yaml:"template_id"`
	Name          string     `yaml:"name"`
	SkillRequired string     `yaml:"skill_required"` // mining, woodcutting, fishing…
	LevelRequired int        `yaml:"level_required"`
	BonusLevelReq int        `yaml:"bonus_level_req"` // 0 = no bonus tier
	XPPerHarvest  float64    `yaml:"xp_per_harvest"`
	RespawnMs     int64      `yaml:"respawn_ms"`
	DepleteChance float64    `yaml:"deplete_chance"` // 0..1 per successful harvest
	Yields        []YieldRow `yaml:"yields"`
}

type resourceListFile struct {
	Resources []ResourceTemplate `yaml:"resources"`
}

// ResourceTable holds resource templates indexed by template ID.
type ResourceTable struct {
	resources map[int32]*ResourceTemplate
}

func (t *ResourceTable) Get(templateID int32) *ResourceTemplate {
	return t.resources[templateID]
}

func (t *ResourceTable) Count() int {
	return len(t.resources)
}

// LoadResourceTable loads resource templates from a YAML file.
func LoadResourceTable(path string) (*ResourceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource list: %w", err)
	}
	var f resourceListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse resource list: %w", err)
	}
	t := &ResourceTable{resources: make(map[int32]*ResourceTemplate, len(f.Resources))}
	for i := range f.Resources {
		t.resources[f.Resources[i].TemplateID] = &f.Resources[i]
	}
	return t, nil
}

// NewResourceTable builds a table from in-memory templates (tests).
func NewResourceTable(tpls []ResourceTemplate) *ResourceTable {
	t := &ResourceTable{resources: make(map[int32]*ResourceTemplate, len(tpls))}
	for i := range tpls {
		tpl := tpls[i]
		t.resources[tpl.TemplateID] = &tpl
	}
	return t
}
