package trap

import (
	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/logger"
)

// Sentinel is the instruction word written at a hook's vector address
// (spec.md §4.J): 0xFFFFFF00 with the hook id OR'd into the low byte. The
// SH4 interpreter recognises this pattern in place of a real instruction
// and calls Table.Invoke instead of decoding it.
const Sentinel = 0xFFFFFF00

// Registers is the narrow view of SH4 general-purpose register state a
// hook handler needs. The SH4 interpreter itself is out of this package's
// scope (spec.md §1) beyond the bus it shares, so hooks never reach into
// interpreter state directly — they take this interface instead.
type Registers interface {
	R(n int) uint32
	SetR(n int, v uint32)
}

// Handler is one hook's callback, invoked with the hook id it was
// registered under (original_source/syscall.h's syscall_hook_func_t).
type Handler func(hookID uint8, bus membus.CPUBus, regs Registers)

type hookEntry struct {
	handler Handler
	vector  uint32 // 0 if this hook has no vector installed
}

// Table is a fixed-size (256-entry) hook table (spec.md §4.J "A fixed-size
// table (<= 256 entries) of (handler, vector_address)").
type Table struct {
	hooks [256]hookEntry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// AddHook registers handler under hookID with no vector (syscall_add_hook).
func (t *Table) AddHook(hookID uint8, handler Handler) {
	t.hooks[hookID] = hookEntry{handler: handler}
}

// AddHookVector registers handler under hookID and writes the sentinel
// instruction word at vectorAddr, which must live in ordinary addressable
// memory (syscall_add_hook_vector).
func (t *Table) AddHookVector(bus membus.CPUBus, hookID uint8, vectorAddr uint32, handler Handler) error {
	t.hooks[hookID] = hookEntry{handler: handler, vector: vectorAddr}
	return bus.Write32(vectorAddr, Sentinel|uint32(hookID))
}

// Invoke dispatches to the handler registered under hookID, logging and
// otherwise ignoring a hook id with no registered handler
// (syscall_invoke's "Invoked non-existent hook" WARN).
func (t *Table) Invoke(hookID uint8, bus membus.CPUBus, regs Registers) {
	h := t.hooks[hookID]
	if h.handler == nil {
		logger.LogSeverity(errors.WARN, "trap", errors.Errorf(errors.UnknownHook, hookID))
		return
	}
	h.handler(hookID, bus, regs)
}

// RepatchVectors rewrites the sentinel word for every hook that has a
// vector address, for use after a memory reset (syscall_repatch_vectors,
// spec.md §4.J "On reset, all live vectors are re-patched").
func (t *Table) RepatchVectors(bus membus.CPUBus) error {
	for id, h := range t.hooks {
		if h.handler != nil && h.vector != 0 {
			if err := bus.Write32(h.vector, Sentinel|uint32(id)); err != nil {
				return err
			}
		}
	}
	return nil
}
