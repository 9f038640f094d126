// This file is part of the katanacore machine emulation core.

// Package trap implements the syscall/BIOS/DCLOAD intercept-on-PC
// mechanism: a fixed table of (handler, vector address) entries. Installing
// a hook writes a sentinel instruction word at the vector address; the SH4
// interpreter (out of this package's scope beyond the memory bus it
// shares) recognises the sentinel and calls back into Table.Invoke with the
// hook id. Ported from original_source/src/syscall.c, dcload.c, and
// bios.c.
package trap
