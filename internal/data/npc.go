package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DropRow is a single possible drop from an NPC. Quantity is either fixed
// (min == max) or sampled uniformly from [min, max].
type DropRow struct {
	ItemID int32   `yaml:"item_id"`
	Min    int32   `yaml:"min"`
	Max    int32   `yaml:"max"`
	Chance float64 `yaml:"chance"` // 0..1 independent Bernoulli trial
}

// NpcTemplate defines baseline stats and behavior for an NPC kind.
type NpcTemplate struct {
	TemplateID     int32     `yaml:"template_id"`
	Name           string    `yaml:"name"`
	Level          int       `yaml:"level"`
	MaxHealth      int32     `yaml:"max_health"`
	AttackDamage   int32     `yaml:"attack_damage"`
	Defence        int32     `yaml:"defence"`
	Speed          float64   `yaml:"speed"` // attacks/sec; also scales return pace
	Aggressive     bool      `yaml:"aggressive"`
	AggroRange     float64   `yaml:"aggro_range"`
	RespawnSeconds int       `yaml:"respawn_seconds"`
	XPReward       int64     `yaml:"xp_reward"`
	Drops          []DropRow `yaml:"drops"`
}

type npcListFile struct {
	Npcs []NpcTemplate `yaml:"npcs"`
}

// NpcTable holds NPC templates indexed by template ID.
type NpcTable struct {
	npcs map[int32]*NpcTemplate
}

func (t *NpcTable) Get(templateID int32) *NpcTemplate {
	return t.npcs[templateID]
}

func (t *NpcTable) Count() int {
	return len(t.npcs)
}

// All iterates every template.
func (t *NpcTable) All(fn func(*NpcTemplate)) {
	for _, tpl := range t.npcs {
		fn(tpl)
	}
}

// LoadNpcTable loads NPC templates from a YAML file.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc list: %w", err)
	}
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc list: %w", err)
	}
	t := &NpcTable{npcs: make(map[int32]*NpcTemplate, len(f.Npcs))}
	for i := range f.Npcs {
		tpl := &f.Npcs[i]
		if tpl.Speed <= 0 {
			tpl.Speed = 1
		}
		if tpl.AggroRange <= 0 {
			tpl.AggroRange = 15
		}
		t.npcs[tpl.TemplateID] = tpl
	}
	return t, nil
}

// NewNpcTable builds a table from in-memory templates (tests).
func NewNpcTable(tpls []NpcTemplate) *NpcTable {
	t := &NpcTable{npcs: make(map[int32]*NpcTemplate, len(tpls))}
	for i := range tpls {
		tpl := tpls[i]
		if tpl.Speed <= 0 {
			tpl.Speed = 1
		}
		if tpl.AggroRange <= 0 {
			tpl.AggroRange = 15
		}
		t.npcs[tpl.TemplateID] = &tpl
	}
	return t
}
