// modules_script.go - Lua-scriptable two-input CV processor
//
// Supplements the fixed-operation Math module with an open-ended pointwise
// operation: a single Lua expression evaluated once per sample with `a`
// and `b` bound to the two CV inputs. Parsing/compiling the expression
// happens only when it changes (a control-thread path, driven from SetExpr
// or decode); Calc only (re)invokes the already-compiled function, so
// the audio thread never parses Lua source.

package synth

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

const scriptCatalogName = "Script"

// ScriptModule evaluates Expr (a Lua chunk ending in `return <value>`)
// once per sample with `a` and `b` set to the two CV inputs.
type ScriptModule struct {
	moduleBase

	Expr string

	vmMu       sync.Mutex
	vm         *lua.LState
	fn         *lua.LFunction
	compileErr error

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

const defaultScriptExpr = "return a + b"

func newScriptModule(cfg AudioConfig) Module {
	m := &ScriptModule{
		moduleBase: newModuleBase(scriptCatalogName, 2, 1, []string{"a", "b"}, []string{"out"}),
		Expr:       defaultScriptExpr,
		vm:         lua.NewState(),
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	m.recompile()
	return m
}

func (m *ScriptModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

// recompile parses and compiles Expr into a reusable Lua function. Call
// only from the control thread (constructor, SetExpr, or decode) — never Calc.
func (m *ScriptModule) recompile() {
	fn, err := m.vm.LoadString(m.Expr)
	if err != nil {
		m.compileErr = fmt.Errorf("synthrack: script compile: %w", err)
		return
	}
	m.fn = fn
	m.compileErr = nil
}

func (m *ScriptModule) SetExpr(expr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expr = expr
	m.recompile()
	m.dirty = true
}

func (m *ScriptModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func (m *ScriptModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fn == nil {
		m.outputs[0].WithWrite(func(d []float32) {
			for i := range d {
				d[i] = 0
			}
		})
		return
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	a, b := m.scratch[0], m.scratch[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		out := outs[0]
		for i := range out {
			out[i] = m.evalSample(a[i], b[i])
		}
	})
}

// evalSample invokes the precompiled chunk once. Must be called with
// m.mu held.
func (m *ScriptModule) evalSample(a, b float32) float32 {
	m.vm.SetGlobal("a", lua.LNumber(a))
	m.vm.SetGlobal("b", lua.LNumber(b))
	m.vm.Push(m.fn)
	if err := m.vm.PCall(0, 1, nil); err != nil {
		return 0
	}
	ret := m.vm.Get(-1)
	m.vm.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		v := float32(n)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		return v
	}
	return 0
}

func (m *ScriptModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, scriptCatalogName+": "+m.Expr)
}

func (m *ScriptModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{Tag: scriptCatalogName, ID: m.id, Fields: map[string]any{"expr": m.Expr}}, nil
}

func decodeScript(rec ModuleRecord, cfg AudioConfig) Module {
	m := newScriptModule(cfg).(*ScriptModule)
	m.id = rec.ID
	if e, ok := rec.Fields["expr"].(string); ok && e != "" {
		m.SetExpr(e)
	}
	return m
}
