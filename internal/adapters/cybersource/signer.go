package cybersource

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const (
	fieldSignedFieldNames = "signed_field_names"
	fieldSignature        = "signature"
)

// Sign computes the Secure Acceptance signature for a message: HMAC-SHA256
// over the UTF-8 bytes, base64 encoded. The scheme is symmetric: the same
// secret and algorithm sign outbound requests and verify inbound responses.
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signedMessage renders the fields named in signed_field_names as key=value
// pairs joined by commas, in the listed order. CyberSource calls this a
// "Version 1" signature message.
func signedMessage(fields map[string]string) string {
	keys := strings.Split(fields[fieldSignedFieldNames], ",")
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}
	return strings.Join(pairs, ",")
}

// signFields signs the fields named by the payload's own signed_field_names
// entry.
func signFields(fields map[string]string, secret string) string {
	return Sign(signedMessage(fields), secret)
}

// verifySignature recomputes the signature over the payload's signed field
// set and compares it to the signature field in constant time.
func verifySignature(fields map[string]string, secret string) bool {
	expected := signFields(fields, secret)
	return hmac.Equal([]byte(expected), []byte(fields[fieldSignature]))
}
