package cybersource

// CardTypeInfo describes a CyberSource card type code.
type CardTypeInfo struct {
	Code    string
	Slug    string
	Display string
}

// Card type codes from the Secure Acceptance reference. Codes outside this
// table map to an empty slug; notifications still settle, the ledger just
// carries no card type label.
var cardTypes = map[string]CardTypeInfo{
	"001": {Code: "001", Slug: "visa", Display: "Visa"},
	"002": {Code: "002", Slug: "mastercard", Display: "MasterCard"},
	"003": {Code: "003", Slug: "american_express", Display: "American Express"},
	"004": {Code: "004", Slug: "discover", Display: "Discover"},
}

// CardTypeSlug maps a gateway card type code (e.g. "001") to the ledger's
// card type slug. Returns "" for unknown codes.
func CardTypeSlug(code string) string {
	return cardTypes[code].Slug
}
