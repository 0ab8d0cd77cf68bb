// Package vm implements the read-only RGB ISA extension to the AluVM
// register machine: typed, counted access to operation and contract data.
package vm

import (
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/state"
)

// Context is the read-only view one script execution receives: the
// operation being validated, and a snapshot of the contract state as of
// just before that operation in fold order. The state folder owns the
// snapshot; the VM never mutates it, preserving determinism.
type Context struct {
	Op       operation.OpRef
	Snapshot *state.ContractState
	// ParentAssignment resolves one of this operation's closed inputs to
	// the assignment it spent, so ld.i/cn.i can read prior state without
	// the VM itself walking the graph.
	ParentAssignment func(operation.Opout) (state.OutputAssignment, bool)
}

// Reg holds one general-purpose register's value: either a count or a
// loaded state payload. Exactly one of the two is meaningful, selected by
// Kind.
type RegKind uint8

const (
	RegUnset RegKind = iota
	RegCount
	RegState
)

type Reg struct {
	Kind  RegKind
	Count uint32
	State operation.State
}

// Registers is the small fixed register file opcodes read and write.
// Idempotent failure semantics: on failure, destination registers are
// left unmodified — Machine never calls setReg until a lookup has already
// succeeded.
type Registers struct {
	regs [16]Reg
	// St0 is the halt/fail flag: true means the last opcode failed.
	St0 bool
}

func (r *Registers) Get(i int) Reg { return r.regs[i] }

func (r *Registers) setReg(i int, v Reg) { r.regs[i] = v }

func (r *Registers) fail() { r.St0 = true }

func (r *Registers) ok() { r.St0 = false }

// Machine executes RGB ISA opcodes against a Context into a Registers
// file.
type Machine struct {
	ctx *Context
	reg *Registers
}

func NewMachine(ctx *Context) *Machine {
	return &Machine{ctx: ctx, reg: &Registers{}}
}

func (m *Machine) Registers() *Registers { return m.reg }

// CountClosedInputs implements cn.i dst,ty: count of closed inputs of type
// ty.
func (m *Machine) CountClosedInputs(dst int, ty operation.AssignmentType) {
	n := 0
	for _, opout := range m.ctx.Op.Inputs() {
		if opout.Type == ty {
			n++
		}
	}
	m.reg.setReg(dst, Reg{Kind: RegCount, Count: uint32(n)})
	m.reg.ok()
}

// CountNewAssignments implements cn.o dst,ty: count of new assignments of
// type ty.
func (m *Machine) CountNewAssignments(dst int, ty operation.AssignmentType) {
	n := 0
	for _, t := range m.ctx.Op.Assignments().Types {
		if t.Type == ty {
			n += len(t.Entries)
		}
	}
	m.reg.setReg(dst, Reg{Kind: RegCount, Count: uint32(n)})
	m.reg.ok()
}

// CountOperationGlobals implements cn.g dst,ty: count of global-state
// items of type ty in this operation.
func (m *Machine) CountOperationGlobals(dst int, ty operation.GlobalType) {
	n := 0
	for _, e := range m.ctx.Op.Globals().Entries {
		if e.Type == ty {
			n += len(e.States)
		}
	}
	m.reg.setReg(dst, Reg{Kind: RegCount, Count: uint32(n)})
	m.reg.ok()
}

// CountContractGlobals implements cn.c dst,ty: count of global-state items
// of type ty, history-wide.
func (m *Machine) CountContractGlobals(dst int, ty operation.GlobalType) {
	if m.ctx.Snapshot == nil || m.ctx.Snapshot.Global == nil {
		m.reg.fail()
		return
	}
	it, ok := m.ctx.Snapshot.Global.Iter(ty)
	if !ok {
		m.reg.fail()
		return
	}
	m.reg.setReg(dst, Reg{Kind: RegCount, Count: uint32(it.Size())})
	m.reg.ok()
}

// LoadInput implements ld.i dst,ty,pos: load the pos-th input assignment's
// state.
func (m *Machine) LoadInput(dst int, ty operation.AssignmentType, pos int) {
	i := 0
	for _, opout := range m.ctx.Op.Inputs() {
		if opout.Type != ty {
			continue
		}
		if i == pos {
			if m.ctx.ParentAssignment == nil {
				m.reg.fail()
				return
			}
			oa, ok := m.ctx.ParentAssignment(opout)
			if !ok {
				m.reg.fail()
				return
			}
			m.reg.setReg(dst, Reg{Kind: RegState, State: oa.State})
			m.reg.ok()
			return
		}
		i++
	}
	m.reg.fail()
}

// LoadOutput implements ld.o dst,ty,pos: load the pos-th new assignment's
// state.
func (m *Machine) LoadOutput(dst int, ty operation.AssignmentType, pos int) {
	for _, t := range m.ctx.Op.Assignments().Types {
		if t.Type != ty {
			continue
		}
		if pos < 0 || pos >= len(t.Entries) {
			m.reg.fail()
			return
		}
		m.reg.setReg(dst, Reg{Kind: RegState, State: t.Entries[pos].State})
		m.reg.ok()
		return
	}
	m.reg.fail()
}

// LoadOperationGlobal implements ld.g dst,ty,pos: load the pos-th
// global-state item of this operation.
func (m *Machine) LoadOperationGlobal(dst int, ty operation.GlobalType, pos int) {
	for _, e := range m.ctx.Op.Globals().Entries {
		if e.Type != ty {
			continue
		}
		if pos < 0 || pos >= len(e.States) {
			m.reg.fail()
			return
		}
		m.reg.setReg(dst, Reg{Kind: RegState, State: e.States[pos]})
		m.reg.ok()
		return
	}
	m.reg.fail()
}

// LoadContractGlobal implements ld.c dst,ty,pos: load the pos-th
// global-state item from contract history, descending by OpOrd (index 0 =
// newest). Fails with st0<-fail and leaves dst unmodified when fewer than
// pos+1 items of type ty exist.
func (m *Machine) LoadContractGlobal(dst int, ty operation.GlobalType, pos int) {
	if m.ctx.Snapshot == nil || m.ctx.Snapshot.Global == nil {
		m.reg.fail()
		return
	}
	it, ok := m.ctx.Snapshot.Global.Iter(ty)
	if !ok {
		m.reg.fail()
		return
	}
	v, ok := it.At(pos)
	if !ok {
		m.reg.fail()
		return
	}
	m.reg.setReg(dst, Reg{Kind: RegState, State: v})
	m.reg.ok()
}

// LoadMetadata implements ld.m dst,ty: load metadata of type ty from this
// operation.
func (m *Machine) LoadMetadata(dst int, ty operation.MetaType) {
	for _, e := range m.ctx.Op.Metadata().Entries {
		if e.Type == ty {
			m.reg.setReg(dst, Reg{Kind: RegState, State: operation.State{Verifiable: e.State}})
			m.reg.ok()
			return
		}
	}
	m.reg.fail()
}
