package domain

import "strings"

// Decision is the processor's categorical verdict on a transaction attempt.
type Decision string

const (
	DecisionAccept  Decision = "ACCEPT"
	DecisionCancel  Decision = "CANCEL"
	DecisionDecline Decision = "DECLINE"
	DecisionError   Decision = "ERROR"
	DecisionUnknown Decision = "UNKNOWN"
)

// ParseDecision maps the raw decision field from a gateway notification to a
// typed Decision. Matching is case-insensitive; anything outside the four
// documented values is DecisionUnknown.
func ParseDecision(raw string) Decision {
	switch strings.ToLower(raw) {
	case "accept":
		return DecisionAccept
	case "cancel":
		return DecisionCancel
	case "decline":
		return DecisionDecline
	case "error":
		return DecisionError
	default:
		return DecisionUnknown
	}
}
