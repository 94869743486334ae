// Package events defines the price-change event and its flatbuffer wire
// form. Transports live elsewhere.
package events

import (
	"fmt"
	"time"

	"op_trader/pricing/fbs/PriceEvents"

	flatbuffers "github.com/google/flatbuffers/go"
)

// PriceChangeTopic prefixes every frame so subscribers can filter.
const PriceChangeTopic = "price.change"

// PriceChange is published whenever the re-pricer moves a listing's price.
type PriceChange struct {
	ListingID string
	ItemID    string
	OldPrice  int64
	NewPrice  int64
	Currency  string
	RuleIndex int32
	At        time.Time
}

// EncodePriceChange serializes ev as a PriceEvents.PriceChange buffer.
func EncodePriceChange(ev PriceChange) []byte {
	builder := flatbuffers.NewBuilder(256)

	lid := builder.CreateString(ev.ListingID)
	iid := builder.CreateString(ev.ItemID)
	cur := builder.CreateString(ev.Currency)

	PriceEvents.PriceChangeStart(builder)
	PriceEvents.PriceChangeAddListingId(builder, lid)
	PriceEvents.PriceChangeAddItemId(builder, iid)
	PriceEvents.PriceChangeAddOldPrice(builder, ev.OldPrice)
	PriceEvents.PriceChangeAddNewPrice(builder, ev.NewPrice)
	PriceEvents.PriceChangeAddCurrency(builder, cur)
	PriceEvents.PriceChangeAddRuleIndex(builder, ev.RuleIndex)
	PriceEvents.PriceChangeAddTimestamp(builder, ev.At.UnixMilli())
	msg := PriceEvents.PriceChangeEnd(builder)

	PriceEvents.FinishPriceChangeBuffer(builder, msg)
	return builder.FinishedBytes()
}

// DecodePriceChange reads a buffer produced by EncodePriceChange.
func DecodePriceChange(buf []byte) (ev PriceChange, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed price change: %v", r)
		}
	}()
	if len(buf) < flatbuffers.SizeUOffsetT {
		return PriceChange{}, fmt.Errorf("malformed price change: %d bytes", len(buf))
	}

	pc := PriceEvents.GetRootAsPriceChange(buf, 0)
	return PriceChange{
		ListingID: string(pc.ListingId()),
		ItemID:    string(pc.ItemId()),
		OldPrice:  pc.OldPrice(),
		NewPrice:  pc.NewPrice(),
		Currency:  string(pc.Currency()),
		RuleIndex: pc.RuleIndex(),
		At:        time.UnixMilli(pc.Timestamp()).UTC(),
	}, nil
}
