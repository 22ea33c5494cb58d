// Package scripting wraps a single gopher-lua VM for tunable game logic:
// combat damage, drop and harvest hooks, and GM commands.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// Engine wraps a single Lua VM. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat", "drops", "skills", "gm"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// CalcPlayerAttack calls the Lua calc_player_attack function to derive one
// hit against an NPC. Falls back to a level-scaled baseline when the
// script is absent or errors.
func (e *Engine) CalcPlayerAttack(attackLevel, strengthLevel int, npcDefence int32) int32 {
	fallback := int32(1 + strengthLevel/4)

	fn := e.vm.GetGlobal("calc_player_attack")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("attack", lua.LNumber(attackLevel))
	t.RawSetString("strength", lua.LNumber(strengthLevel))
	t.RawSetString("npc_defence", lua.LNumber(npcDefence))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_player_attack error", zap.Error(err))
		return fallback
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	dmg := int32(lua.LVAsNumber(result))
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

// OnNpcDeath calls the Lua on_npc_death hook, letting scripts rewrite the
// drop list. The input drops pass through untouched when no hook exists.
func (e *Engine) OnNpcDeath(n *world.NpcInfo, killerID int64, drops []protocol.Stack) []protocol.Stack {
	return e.stackHook("on_npc_death", func(t *lua.LTable) {
		t.RawSetString("npc_id", lua.LNumber(n.ID))
		t.RawSetString("template", lua.LNumber(n.Template.TemplateID))
		t.RawSetString("killer", lua.LNumber(killerID))
	}, drops)
}

// OnHarvest calls the Lua on_harvest hook over the yielded items.
func (e *Engine) OnHarvest(n *world.NodeInfo, charID int64, items []protocol.Stack) []protocol.Stack {
	return e.stackHook("on_harvest", func(t *lua.LTable) {
		t.RawSetString("node_id", lua.LNumber(n.ID))
		t.RawSetString("template", lua.LNumber(n.Template.TemplateID))
		t.RawSetString("character", lua.LNumber(charID))
	}, items)
}

// GMCommand dispatches a GM chat command to the Lua gm_command function and
// returns the reply text, or "" when unhandled.
func (e *Engine) GMCommand(name string, args []string) string {
	fn := e.vm.GetGlobal("gm_command")
	if fn == lua.LNil {
		return ""
	}
	argTable := e.vm.NewTable()
	for _, a := range args {
		argTable.Append(lua.LString(a))
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(name), argTable); err != nil {
		e.log.Error("lua gm_command error", zap.String("command", name), zap.Error(err))
		return ""
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	if s, ok := result.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// stackHook runs a hook that takes (ctx, items) and returns an item table.
func (e *Engine) stackHook(name string, fill func(*lua.LTable), items []protocol.Stack) []protocol.Stack {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return items
	}

	ctx := e.vm.NewTable()
	fill(ctx)

	itemTable := e.vm.NewTable()
	for _, it := range items {
		row := e.vm.NewTable()
		row.RawSetString("item_id", lua.LNumber(it.ItemID))
		row.RawSetString("quantity", lua.LNumber(it.Quantity))
		itemTable.Append(row)
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, ctx, itemTable); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
		return items
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return items
	}
	var out []protocol.Stack
	rt.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		out = append(out, protocol.Stack{
			ItemID:   int32(lua.LVAsNumber(row.RawGetString("item_id"))),
			Quantity: int32(lua.LVAsNumber(row.RawGetString("quantity"))),
		})
	})
	return out
}
