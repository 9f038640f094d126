package arm

// addrMode2 computes the effective address for a single load/store and
// the value to write back to Rn, covering all 12 permutations of P
// (pre/post-index), U (add/subtract), W (writeback), I (immediate/
// register offset) (spec.md §4.F "Addressing mode 2").
//
// base is Rn's current value; offset is the already-resolved 12-bit
// immediate or shifted-register offset magnitude.
func addrMode2(base uint32, offset uint32, pre, add, writeback bool) (effective uint32, written uint32) {
	var applied uint32
	if add {
		applied = base + offset
	} else {
		applied = base - offset
	}

	if pre {
		effective = applied
		if writeback {
			written = applied
		} else {
			written = base
		}
		return effective, written
	}

	// Post-indexed: the unmodified base is the effective address; the
	// offset always applies to Rn afterward (post-index writeback is
	// implicit, there is no separate W bit semantics here).
	effective = base
	written = applied
	return effective, written
}
