package domain

import "github.com/shopspring/decimal"

// The basket/catalog types below are read models: the storefront owns their
// lifecycle, the payment core only reads them. See the catalog and ledger
// ports for the narrow interfaces the core consumes.

// ProductClass categorizes products in the catalog; the "seat" class marks
// course enrollment products.
type ProductClass struct {
	Slug string
	Name string
}

// SeatProductClassSlug is the catalog slug for course seat products.
const SeatProductClassSlug = "seat"

// Product is a purchasable catalog item. CourseKey and CertificateType are
// attributes carried only by seat products; CertificateType may be empty.
type Product struct {
	SKU             string
	Title           string
	ClassSlug       string
	CourseKey       string
	CertificateType string
}

// BasketLine is a quantity of a single product within a basket.
type BasketLine struct {
	Product  Product
	Quantity int
}

// Basket is a snapshot of a purchase attempt: a non-empty line set, a
// tax-inclusive total and currency, and an owning identity used as the
// gateway consumer id.
type Basket struct {
	OrderNumber  string
	Owner        string
	Currency     string
	TotalInclTax decimal.Decimal
	Lines        []BasketLine
}

// TransactionParameters is the signed outbound payment-initiation payload
// for one purchase attempt. Fields carries every key/value pair including
// signed_field_names and signature; immutable once signed. PaymentPageURL is
// metadata for the hosted-page redirect and is not part of the signed payload.
type TransactionParameters struct {
	Fields         map[string]string
	PaymentPageURL string
}

// Settlement carries the normalized fields of a validated ACCEPT
// notification, ready for ledger recording.
type Settlement struct {
	Currency      string
	Total         decimal.Decimal
	TransactionID string
	CardLabel     string
	CardType      string
}
