package asic

// Lines are the three SH4 external interrupt request lines the ASIC drives.
// The SH4 interpreter itself is out of scope (spec.md Non-goals);
// InterruptLine (below) is the capability record a future SH4 core implements to receive level
// changes, per spec.md §9 "inheritance/virtuals as capability records".
const (
	Line13 = iota // driven by the IRQA mask triple
	Line11        // driven by the IRQB mask triple
	Line9         // driven by the IRQC mask triple
)

// InterruptLine is the collaborator that receives SH4 IRQ line level
// changes. A nil InterruptLine is valid: ASIC still tracks pending/mask
// state and answers queries, it just has nobody to notify.
type InterruptLine interface {
	SetIRQ(line int, asserted bool)
}

type noopInterruptLine struct{}

func (noopInterruptLine) SetIRQ(line int, asserted bool) {}
