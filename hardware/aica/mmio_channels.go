package aica

import "github.com/katanacore/machine/hardware/mmio"

// newChannelRegion builds one 32-channel bank (AICA0 or AICA1). Channel
// register layout is out of scope (spec.md Non-goals: no audio output
// device); both banks fall through to the default scratch dispatch so
// guest reads/writes round-trip without synthesizing playback
// (original_source/aica/aica.h "AICA0"/"AICA1").
func newChannelRegion(name string, base uint32) *mmio.Region {
	ports := []mmio.Port{
		{Offset: 0x000, Width: 4, Flags: mmio.Read | mmio.Write, ID: "CHANNEL_BASE"},
	}
	return mmio.NewRegion(name, base, ports, nil, nil)
}
