package value

// RejectReason tags why a product did not qualify as a deal. Rejections are
// ordinary results, not errors: a rejected product is simply absent from the
// current run.
type RejectReason string

const (
	ReasonUnresolvable   RejectReason = "unresolvable"
	ReasonLookupFailed   RejectReason = "lookup_failed"
	ReasonInvalidPrice   RejectReason = "invalid_price"
	ReasonNoReference    RejectReason = "no_reference"
	ReasonNotCheaper     RejectReason = "not_cheaper"
	ReasonBelowThreshold RejectReason = "below_threshold"
	ReasonNoLink         RejectReason = "no_link"
	ReasonDuplicate      RejectReason = "duplicate"
)

func (r RejectReason) String() string {
	return string(r)
}
