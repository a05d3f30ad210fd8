package negotiation

import "fmt"

// priceFloorRatio is the lowest fraction of the reference value a price
// offer may open at.
const priceFloorRatio = 0.3

// Bounds is the acceptable range for an opening offer. Advisory bounds
// (custom orders) only require a positive offer, since the item itself
// is being defined by the negotiation.
type Bounds struct {
	Min      float64
	Max      float64
	Advisory bool
}

// PriceBounds returns the hard bounds for a price negotiation against a
// catalog reference value: an offer below 30% of the reference or above
// the reference itself is rejected at propose time.
func PriceBounds(reference float64) Bounds {
	return Bounds{Min: reference * priceFloorRatio, Max: reference}
}

// AdvisoryBounds returns the bounds for a custom order, where no fixed
// reference exists.
func AdvisoryBounds() Bounds {
	return Bounds{Advisory: true}
}

// CheckOffer validates an opening offer against the bounds.
func (b Bounds) CheckOffer(offer float64) error {
	if offer <= 0 {
		return fmt.Errorf("%w: offer must be positive, got %.2f", ErrValidation, offer)
	}
	if b.Advisory {
		return nil
	}
	if offer < b.Min {
		return fmt.Errorf("%w: offer %.2f is below the minimum acceptable %.2f",
			ErrValidation, offer, b.Min)
	}
	if offer > b.Max {
		return fmt.Errorf("%w: offer %.2f exceeds the reference value %.2f",
			ErrValidation, offer, b.Max)
	}
	return nil
}
