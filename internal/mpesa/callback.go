package mpesa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Metadata item names Daraja sends on a successful payment.
const (
	FieldAmount          = "Amount"
	FieldReceipt         = "MpesaReceiptNumber"
	FieldTransactionDate = "TransactionDate"
	FieldPhoneNumber     = "PhoneNumber"
)

// CallbackEnvelope is the body Daraja POSTs to CallBackURL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        json.Number       `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// CallbackFields indexes metadata items by Name.
type CallbackFields map[string]json.RawMessage

func (m *CallbackMetadata) Fields() CallbackFields {
	out := CallbackFields{}
	if m == nil {
		return out
	}
	for _, it := range m.Item {
		if it.Name == "" || len(it.Value) == 0 {
			continue
		}
		out[it.Name] = it.Value
	}
	return out
}

// String returns the value as text; numbers are returned verbatim.
func (f CallbackFields) String(name string) (string, bool) {
	raw, ok := f[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	txt := strings.TrimSpace(string(raw))
	if txt == "" || txt == "null" {
		return "", false
	}
	return txt, true
}

// Float parses a numeric value, accepting quoted numbers too.
func (f CallbackFields) Float(name string) (float64, bool) {
	s, ok := f.String(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Require reports the first missing name.
func (f CallbackFields) Require(names ...string) error {
	for _, n := range names {
		if _, ok := f.String(n); !ok {
			return fmt.Errorf("metadata %s tidak ada", n)
		}
	}
	return nil
}

// PaymentResult is the validated, typed view of a callback.
type PaymentResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
	Success           bool

	// set only when Success
	Receipt         string
	Amount          float64
	PhoneNumber     string
	TransactionDate string
}

// Result validates the envelope. A success result must carry a receipt and an
// amount; anything else is an error so the caller can leave the record pending.
func (e CallbackEnvelope) Result() (PaymentResult, error) {
	cb := e.Body.STKCallback
	out := PaymentResult{
		CheckoutRequestID: strings.TrimSpace(cb.CheckoutRequestID),
		MerchantRequestID: strings.TrimSpace(cb.MerchantRequestID),
		ResultDesc:        strings.TrimSpace(cb.ResultDesc),
	}
	if out.CheckoutRequestID == "" {
		return out, fmt.Errorf("CheckoutRequestID kosong")
	}
	if cb.ResultCode == "" {
		return out, fmt.Errorf("ResultCode kosong")
	}
	code, err := strconv.Atoi(cb.ResultCode.String())
	if err != nil {
		return out, fmt.Errorf("ResultCode tidak valid: %w", err)
	}
	out.ResultCode = code
	out.Success = code == 0
	if !out.Success {
		return out, nil
	}

	fields := cb.CallbackMetadata.Fields()
	if err := fields.Require(FieldReceipt, FieldAmount); err != nil {
		return out, err
	}
	out.Receipt, _ = fields.String(FieldReceipt)
	amount, ok := fields.Float(FieldAmount)
	if !ok {
		return out, fmt.Errorf("metadata %s bukan angka", FieldAmount)
	}
	out.Amount = amount
	out.PhoneNumber, _ = fields.String(FieldPhoneNumber)
	out.TransactionDate, _ = fields.String(FieldTransactionDate)
	return out, nil
}

// Ack is the response body Daraja expects from the webhook.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func Accepted() Ack { return Ack{ResultCode: 0, ResultDesc: "Success"} }

func Rejected() Ack { return Ack{ResultCode: 1, ResultDesc: "Error processing callback"} }
