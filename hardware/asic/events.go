package asic

// Event numbers identify the source of an interrupt as raised through
// Raise. The bank a number falls in (event>>5) selects which of the three
// PIRQ/IRQA/IRQB/IRQC register triples it sets a bit in; the low five bits
// select the bit within that bank (spec.md §4.E, §6 "Events").
const (
	EventPVRRenderDone      = 2
	EventScanline1          = 3
	EventScanline2          = 4
	EventRetrace            = 5
	EventPVRUnknown         = 6
	EventPVROpaqueDone      = 7
	EventPVROpaqueModDone   = 8
	EventPVRTransDone       = 9
	EventPVRTransModDone    = 10
	EventMapleDMA           = 12
	EventMapleErr           = 13
	EventIDEDMA             = 14
	EventG2DMA0             = 15
	EventG2DMA1             = 16
	EventG2DMA2             = 17
	EventG2DMA3             = 18
	EventPVRDMA             = 19
	EventPVRPunchoutDone    = 21

	// EventCascade1 and EventCascade2 are bits 30 and 31 of PIRQ0, raised
	// synthetically whenever a bank-1 or bank-2 event fires (spec.md §4.E
	// "cascade"). Their numeric values are forced by that bit position, not
	// chosen freely: bank(event)=event>>5 and bit(event)=event&0x1F must
	// both land on bank 0, bits 30/31 respectively.
	EventCascade1 = 30
	EventCascade2 = 31

	EventIDE  = 32
	EventAICA = 33

	// EventTAError has no numeric definition in the retrieved source tree
	// (asic.h enumerates every other named event here but never assigns
	// EVENT_TA_ERROR a value). 68 is chosen as the next free bank-2 slot
	// after EventPVRMatrixAllocFail, documented as an open question in
	// DESIGN.md.
	EventTAError = 68

	EventPVRPrimAllocFail   = 66
	EventPVRMatrixAllocFail = 67
)

func bankOf(event int) int { return event >> 5 }
func bitOf(event int) uint { return uint(event) & 0x1F }
