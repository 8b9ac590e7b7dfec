package ports

import "context"

// CreditRequest describes a credit (refund) of a previously captured
// transaction, referencing the gateway's original transaction id.
type CreditRequest struct {
	// MerchantReferenceCode is the order number the original transaction
	// was placed under.
	MerchantReferenceCode string

	// OrderRequestToken is the request token of the original transaction.
	OrderRequestToken string

	// CaptureRequestID is the gateway request id of the capture to credit.
	CaptureRequestID string

	// Currency is the ISO 4217 currency of the credit.
	Currency string

	// Amount is the grand total to credit, rendered as an exact decimal
	// string (e.g. "10.00").
	Amount string
}

// CreditResponse is the gateway's synchronous reply to a credit request.
type CreditResponse struct {
	// RequestID is the gateway-assigned id of this credit request.
	RequestID string

	// Decision is the gateway verdict: ACCEPT, REJECT, or ERROR.
	Decision string

	// ReasonCode is the gateway's numeric reason code.
	ReasonCode int

	// Raw is the full response serialized as a plain tree of maps, slices
	// and scalars, suitable for audit storage.
	Raw map[string]interface{}
}

// CreditGateway drives the processor's remote credit service. Calls are
// synchronous and blocking; timeouts are configured by the implementation
// and surface as errors. There is no cancellation mid-call: once issued, a
// credit request cannot be withdrawn.
//
// RunCredit is NOT idempotent at the network layer: the gateway documents
// no idempotency key, so a repeated invocation risks double-refunding.
// Callers must serialize refund attempts per funding source.
type CreditGateway interface {
	RunCredit(ctx context.Context, req CreditRequest) (*CreditResponse, error)
}
