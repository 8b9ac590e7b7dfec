package cybersource

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
	"github.com/edforge/coursepay/internal/domain/ports"
)

// SOAPConfig contains configuration for the CyberSource transaction SOAP
// service used for credits.
type SOAPConfig struct {
	// URL is the SOAP endpoint.
	URL string

	// MerchantID and TransactionKey form the WS-Security UsernameToken.
	// The token is attached per call, not persisted across calls.
	MerchantID     string
	TransactionKey string

	// Timeout bounds the whole exchange. On timeout the call surfaces a
	// gateway error; there is no cancellation of the remote side mid-call.
	Timeout time.Duration

	// TLS configuration
	InsecureSkipVerify bool
}

// DefaultSOAPConfig returns defaults for the given environment.
func DefaultSOAPConfig(environment string) *SOAPConfig {
	url := "https://ics2ws.ic3.com/commerce/1.x/transactionProcessor"
	if environment == "sandbox" {
		url = "https://ics2wstest.ic3.com/commerce/1.x/transactionProcessor"
	}
	return &SOAPConfig{
		URL:                url,
		Timeout:            30 * time.Second,
		InsecureSkipVerify: environment == "sandbox",
	}
}

// creditClient implements the CreditGateway port over the SOAP service.
type creditClient struct {
	config     *SOAPConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCreditClient creates a CreditGateway backed by the CyberSource
// transaction SOAP service.
func NewCreditClient(config *SOAPConfig, logger *zap.Logger) ports.CreditGateway {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return &creditClient{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// RunCredit submits a ccCreditService runTransaction request referencing the
// original capture and awaits the synchronous reply.
func (c *creditClient) RunCredit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResponse, error) {
	envelope := c.buildEnvelope(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", "runTransaction")

	c.logger.Info("Submitting credit request",
		zap.String("merchant_reference_code", req.MerchantReferenceCode),
		zap.String("capture_request_id", req.CaptureRequestID),
		zap.String("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Credit request failed",
			zap.String("merchant_reference_code", req.MerchantReferenceCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeGatewayTimeout, "credit service call failed", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "failed to read credit service response", err)
	}

	c.logger.Info("Received credit response",
		zap.Int("status_code", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("body_length", len(body)),
	)

	reply, tree, err := parseReply(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "malformed credit service response", err)
	}
	if reply.RequestID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeGatewayError,
			"credit service response carries no requestID")
	}

	return &ports.CreditResponse{
		RequestID:  reply.RequestID,
		Decision:   reply.Decision,
		ReasonCode: reply.ReasonCode,
		Raw:        tree,
	}, nil
}

// buildEnvelope renders the runTransaction envelope with a WS-Security
// UsernameToken header.
func (c *creditClient) buildEnvelope(req ports.CreditRequest) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:schemas-cybersource-com:transaction-data-1.117">
  <soapenv:Header>
    <wsse:Security xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd" soapenv:mustUnderstand="1">
      <wsse:UsernameToken>
        <wsse:Username>%s</wsse:Username>
        <wsse:Password Type="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText">%s</wsse:Password>
      </wsse:UsernameToken>
    </wsse:Security>
  </soapenv:Header>
  <soapenv:Body>
    <urn:requestMessage>
      <urn:merchantID>%s</urn:merchantID>
      <urn:merchantReferenceCode>%s</urn:merchantReferenceCode>
      <urn:orderRequestToken>%s</urn:orderRequestToken>
      <urn:purchaseTotals>
        <urn:currency>%s</urn:currency>
        <urn:grandTotalAmount>%s</urn:grandTotalAmount>
      </urn:purchaseTotals>
      <urn:ccCreditService run="true">
        <urn:captureRequestID>%s</urn:captureRequestID>
      </urn:ccCreditService>
    </urn:requestMessage>
  </soapenv:Body>
</soapenv:Envelope>`,
		xmlEscape(c.config.MerchantID),
		xmlEscape(c.config.TransactionKey),
		xmlEscape(c.config.MerchantID),
		xmlEscape(req.MerchantReferenceCode),
		xmlEscape(req.OrderRequestToken),
		xmlEscape(req.Currency),
		xmlEscape(req.Amount),
		xmlEscape(req.CaptureRequestID),
	)
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// replyEnvelope captures the typed fields of a runTransaction reply.
// Namespace prefixes are ignored; encoding/xml matches on local names.
type replyEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Reply replyMessage `xml:"replyMessage"`
	} `xml:"Body"`
}

type replyMessage struct {
	MerchantReferenceCode string `xml:"merchantReferenceCode"`
	RequestID             string `xml:"requestID"`
	Decision              string `xml:"decision"`
	ReasonCode            int    `xml:"reasonCode"`
	RequestToken          string `xml:"requestToken"`
}

// xmlNode is a generic binding of any XML element: name, character data and
// child elements. It is the input to the audit tree serializer.
type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// parseReply decodes the typed reply fields and, independently, the full
// body as a plain tree for audit storage.
func parseReply(body []byte) (*replyMessage, map[string]interface{}, error) {
	var envelope replyEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("unmarshal reply envelope: %w", err)
	}

	var generic xmlNode
	if err := xml.Unmarshal(body, &generic); err != nil {
		return nil, nil, fmt.Errorf("unmarshal reply tree: %w", err)
	}

	tree, ok := nodeValue(generic).(map[string]interface{})
	if !ok {
		tree = map[string]interface{}{}
	}
	return &envelope.Body.Reply, tree, nil
}

// nodeValue serializes an XML element into a plain value: a scalar string
// for leaf elements, a map for records, with repeated child names collapsing
// into a list. The result is storable as-is in the audit log.
func nodeValue(node xmlNode) interface{} {
	if len(node.Children) == 0 {
		return strings.TrimSpace(node.Content)
	}

	out := make(map[string]interface{}, len(node.Children))
	for _, child := range node.Children {
		name := child.XMLName.Local
		value := nodeValue(child)
		existing, seen := out[name]
		if !seen {
			out[name] = value
			continue
		}
		if list, isList := existing.([]interface{}); isList {
			out[name] = append(list, value)
		} else {
			out[name] = []interface{}{existing, value}
		}
	}
	return out
}
