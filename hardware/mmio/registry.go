package mmio

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
)

// Registry groups every MMIO region owned by one module (ASIC typically
// owns two: ASIC and EXTDMA) for bulk Reset/Save/Load.
type Registry struct {
	regions []*Region
}

// NewRegistry returns a Registry over the given regions.
func NewRegistry(regions ...*Region) *Registry {
	return &Registry{regions: regions}
}

// Regions returns the registered regions, for bus installation.
func (reg *Registry) Regions() []*Region { return reg.regions }

// Reset resets every region.
func (reg *Registry) Reset() {
	for _, r := range reg.regions {
		r.Reset()
	}
}

// Save writes {name, base, 4 KiB of scratch} per region (spec.md §4.B
// "Save/load").
func (reg *Registry) Save(w io.Writer) error {
	for _, r := range reg.regions {
		name := []byte(r.name)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		if _, err := w.Write(name); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		if err := binary.Write(w, binary.LittleEndian, r.base); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		if _, err := w.Write(r.scratch[:]); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
	}
	return nil
}

// Load restores every region's scratch buffer, matching by name
// (spec.md §4.B "Save/load").
func (reg *Registry) Load(r io.Reader) error {
	byName := make(map[string]*Region, len(reg.regions))
	for _, region := range reg.regions {
		byName[region.name] = region
	}

	for range reg.regions {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		var base uint32
		if err := binary.Read(r, binary.LittleEndian, &base); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		var scratch [PageSize]byte
		if _, err := io.ReadFull(r, scratch[:]); err != nil {
			return errors.Errorf("mmio: %v", err)
		}
		if region, ok := byName[string(name)]; ok {
			region.scratch = scratch
		}
	}
	return nil
}
