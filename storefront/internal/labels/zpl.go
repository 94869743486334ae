// Package labels prints listing labels in ZPL and renders them through an
// external label renderer.
package labels

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Label is the printable view of one listing.
type Label struct {
	ListingID  string
	Name       string
	SetCode    string
	CardNumber string
	Grade      string
	Price      string
	Quantity   int
}

// Batch is a set of labels sent to the printer together.
type Batch struct {
	ID  string
	ZPL string
}

// NewBatch builds the ZPL for labels under a fresh batch id.
func NewBatch(labels []Label) Batch {
	id := uuid.NewString()
	return Batch{ID: id, ZPL: BuildZPL(id, labels)}
}

// BuildZPL renders one 2x1 inch label per listing at 203 dpi. Each block
// prints Quantity copies, at least one.
func BuildZPL(batchID string, labels []Label) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString("^XA\n")
		fmt.Fprintf(&b, "^FX batch %s^FS\n", sanitize(batchID))
		b.WriteString("^CI28\n")
		b.WriteString("^PW406\n^LL203\n")
		fmt.Fprintf(&b, "^FO12,12^A0N,28,28^FB280,2,0,L^FD%s^FS\n", sanitize(l.Name))
		fmt.Fprintf(&b, "^FO12,76^A0N,22,22^FD%s^FS\n", sanitize(setLine(l)))
		if g := sanitize(l.Grade); g != "" {
			fmt.Fprintf(&b, "^FO12,104^A0N,22,22^FD%s^FS\n", g)
		}
		fmt.Fprintf(&b, "^FO12,150^A0N,40,40^FD%s^FS\n", sanitize(l.Price))
		fmt.Fprintf(&b, "^FO300,40^BQN,2,4^FDQA,%s^FS\n", sanitize(l.ListingID))
		fmt.Fprintf(&b, "^PQ%d\n", max(l.Quantity, 1))
		b.WriteString("^XZ\n")
	}
	return b.String()
}

func setLine(l Label) string {
	if l.SetCode != "" && l.CardNumber != "" {
		return l.SetCode + "-" + l.CardNumber
	}
	return l.SetCode + l.CardNumber
}

// sanitize strips the ZPL command prefixes so field data cannot start a new
// command, and flattens line breaks.
func sanitize(s string) string {
	return strings.NewReplacer("^", "", "~", "", "\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
