package shop

// OfferStatus is the state of one order-book slot
type OfferStatus string

const (
	OfferStatusEmpty     OfferStatus = "EMPTY"
	OfferStatusActive    OfferStatus = "ACTIVE"
	OfferStatusCompleted OfferStatus = "COMPLETED"
	OfferStatusCancelled OfferStatus = "CANCELLED"
)

// Offer is a snapshot of an order-book slot as read from the market
type Offer struct {
	Slot       int
	ItemID     int
	ItemName   string
	Operation  Operation
	Price      int
	Quantity   int
	Transacted int
	Status     OfferStatus
}

// IsEmpty returns true when the slot can take a new offer
func (o Offer) IsEmpty() bool {
	return o.Status == OfferStatusEmpty
}

// IsActive returns true while the offer is still matching
func (o Offer) IsActive() bool {
	return o.Status == OfferStatusActive
}

// NeedsCollection returns true for finished offers still holding goods or coins
func (o Offer) NeedsCollection() bool {
	return o.Status == OfferStatusCompleted || o.Status == OfferStatusCancelled
}

// Remaining returns the untransacted quantity
func (o Offer) Remaining() int {
	return max(0, o.Quantity-o.Transacted)
}

// FillRatio returns the transacted fraction used to pick which active
// offers to preempt first
func (o Offer) FillRatio() float64 {
	if o.Quantity <= 0 {
		return 0
	}
	return float64(o.Transacted) / float64(o.Quantity)
}
