package scheduler

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
)

// saveMagic and saveVersion identify the save-state blob format (spec.md
// §6 "Save-state layout"). Unrelated to the guest boot header magic, which
// hardware/boot validates.
var saveMagic = [16]byte{'K', 'A', 'T', 'A', 'N', 'A', 'C', 'O', 'R', 'E', 'S', 'A', 'V', 'E', '0', '1'}

const saveVersion uint32 = 1

var blockMarker = [4]byte{'B', 'L', 'C', 'K'}

// SaveState writes a fixed magic, a format version, a module count, then
// {"BLCK", name, module-save-bytes} for every module implementing Saver, in
// registration order (spec.md §6).
func (s *Scheduler) SaveState(w io.Writer) error {
	var saveable []Module
	for _, m := range s.modules {
		if _, ok := m.(Saver); ok {
			saveable = append(saveable, m)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, saveMagic); err != nil {
		return errors.Errorf("scheduler: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, saveVersion); err != nil {
		return errors.Errorf("scheduler: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(saveable))); err != nil {
		return errors.Errorf("scheduler: %v", err)
	}

	for _, m := range saveable {
		var buf bytes.Buffer
		if err := m.(Saver).Save(&buf); err != nil {
			return errors.Errorf("scheduler: save %q: %v", m.Name(), err)
		}

		if err := binary.Write(w, binary.LittleEndian, blockMarker); err != nil {
			return errors.Errorf("scheduler: %v", err)
		}
		name := []byte(m.Name())
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return errors.Errorf("scheduler: %v", err)
		}
		if _, err := w.Write(name); err != nil {
			return errors.Errorf("scheduler: %v", err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return errors.Errorf("scheduler: %v", err)
		}
	}
	return nil
}

// LoadState reads a blob written by SaveState. A registered module absent
// from the blob is tolerated and simply Reset; a module name in the blob
// that no registered module carries is an error. Version or magic mismatch aborts the
// load and leaves the scheduler's current state untouched
// (errors.SaveStateCorrupt, spec.md §7).
func (s *Scheduler) LoadState(r io.Reader) error {
	var magic [16]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return errors.Errorf(errors.SaveStateCorrupt, "truncated header")
	}
	if magic != saveMagic {
		return errors.Errorf(errors.SaveStateCorrupt, errors.VersionMismatch)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return errors.Errorf(errors.SaveStateCorrupt, "truncated header")
	}
	if version != saveVersion {
		return errors.Errorf(errors.SaveStateCorrupt, errors.VersionMismatch)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return errors.Errorf(errors.SaveStateCorrupt, "truncated header")
	}

	seen := make(map[string]bool, count)
	for i := uint32(0); i < count; i++ {
		var marker [4]byte
		if err := binary.Read(r, binary.LittleEndian, &marker); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "truncated block marker")
		}
		if marker != blockMarker {
			return errors.Errorf(errors.SaveStateCorrupt, "bad block marker")
		}

		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "truncated name length")
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, "truncated name")
		}

		idx, known := s.byName[string(name)]
		if !known {
			return errors.Errorf(errors.UnknownModule, string(name))
		}
		loader, ok := s.modules[idx].(Loader)
		if !ok {
			return errors.Errorf(errors.SaveStateCorrupt, "module has no loader: "+string(name))
		}
		if err := loader.Load(r); err != nil {
			return errors.Errorf(errors.SaveStateCorrupt, err.Error())
		}
		seen[string(name)] = true
	}

	for _, m := range s.modules {
		if _, ok := m.(Saver); ok && !seen[m.Name()] {
			if rst, ok := m.(Resetter); ok {
				rst.Reset()
			}
		}
	}
	return nil
}
