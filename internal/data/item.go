package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemInfo holds item template data needed for game logic.
type ItemInfo struct {
	ItemID    int32  `yaml:"item_id"`
	Name      string `yaml:"name"`
	Stackable bool   `yaml:"stackable"`
	MaxStack  int32  `yaml:"max_stack"`
	Tradeable bool   `yaml:"tradeable"`
	BuyLimit  int32  `yaml:"buy_limit"` // per 4h window; 0 = unlimited
	EquipSlot string `yaml:"equip_slot,omitempty"`
	Tier      int    `yaml:"tier"`  // weapon/tool tier, feeds damage and harvest checks
	Value     int32  `yaml:"value"` // base shop value
}

type itemListFile struct {
	Items []ItemInfo `yaml:"items"`
}

// ItemTable holds all item templates indexed by item ID.
type ItemTable struct {
	items map[int32]*ItemInfo
}

// Get returns an item template, or nil if unknown.
func (t *ItemTable) Get(itemID int32) *ItemInfo {
	return t.items[itemID]
}

// Count returns the number of loaded item templates.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item list: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item list: %w", err)
	}
	t := &ItemTable{items: make(map[int32]*ItemInfo, len(f.Items))}
	for i := range f.Items {
		it := &f.Items[i]
		if it.Stackable && it.MaxStack == 0 {
			it.MaxStack = 2147483647
		}
		t.items[it.ItemID] = it
	}
	return t, nil
}

// NewItemTable builds a table from in-memory templates (tests).
func NewItemTable(items []ItemInfo) *ItemTable {
	t := &ItemTable{items: make(map[int32]*ItemInfo, len(items))}
	for i := range items {
		it := items[i]
		if it.Stackable && it.MaxStack == 0 {
			it.MaxStack = 2147483647
		}
		t.items[it.ItemID] = &it
	}
	return t
}
