package machine

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/membus"
)

// memoryModule wraps every RAM/ROM region registered on the bus as a single
// scheduler.Saver/Loader (spec.md §4.A; the bus itself has no concept of
// registration, so this lives alongside the composition root rather than
// inside hardware/membus). Mirrored aliases (main RAM's x4 mirror) are not
// registered twice with RegisterRegion, so bus.Regions() already excludes
// the duplicate windows.
type memoryModule struct {
	bus *membus.Bus
}

func newMemoryModule(bus *membus.Bus) *memoryModule {
	return &memoryModule{bus: bus}
}

// Name implements scheduler.Module.
func (m *memoryModule) Name() string { return "MEMORY" }

// writable returns the registered regions that participate in save/load, in
// a fixed order. Read-only regions (boot ROM) are excluded — a BIOS image
// is reloaded by the caller, not round-tripped through the save file. The
// scheduler's save-state framing (hardware/scheduler/savestate.go) gives
// each module's blob no length prefix of its own, so Load must consume
// exactly the bytes Save wrote with no end-of-block sentinel to read
// until; fixing the region count and order up front is what makes that
// possible.
func (m *memoryModule) writable() []*membus.Region {
	var out []*membus.Region
	for _, r := range m.bus.Regions() {
		if !r.ReadOnly {
			out = append(out, r)
		}
	}
	return out
}

// Reset implements scheduler.Resetter: every writable region is zeroed.
func (m *memoryModule) Reset() {
	for _, r := range m.writable() {
		for i := range r.Data {
			r.Data[i] = 0
		}
	}
}

// Save implements scheduler.Saver: {name-length, name, data-length, region
// bytes} per writable region, in registration order.
func (m *memoryModule) Save(w io.Writer) error {
	for _, r := range m.writable() {
		name := []byte(r.Name)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return errors.Errorf("machine: save MEMORY: %v", err)
		}
		if _, err := w.Write(name); err != nil {
			return errors.Errorf("machine: save MEMORY: %v", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(r.Data))); err != nil {
			return errors.Errorf("machine: save MEMORY: %v", err)
		}
		if _, err := w.Write(r.Data); err != nil {
			return errors.Errorf("machine: save MEMORY: %v", err)
		}
	}
	return nil
}

// Load implements scheduler.Loader. A region present in the blob whose
// length doesn't match the live region's size, or whose name isn't
// registered, is an error (errors.SaveStateCorrupt) rather than a silent
// truncate/skip.
func (m *memoryModule) Load(r io.Reader) error {
	writable := m.writable()
	byName := make(map[string]*membus.Region, len(writable))
	for _, region := range writable {
		byName[region.Name] = region
	}

	for range writable {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "MEMORY: truncated name length")
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "MEMORY: truncated name")
		}
		var dataLen uint32
		if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "MEMORY: truncated length")
		}
		region, ok := byName[string(name)]
		if !ok {
			return errors.Errorf(errors.UnknownModule, string(name))
		}
		if int(dataLen) != len(region.Data) {
			return errors.Errorf(errors.SaveStateCorrupt, "MEMORY: region "+string(name)+" size mismatch")
		}
		if _, err := io.ReadFull(r, region.Data); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "MEMORY: truncated region data")
		}
	}
	return nil
}
