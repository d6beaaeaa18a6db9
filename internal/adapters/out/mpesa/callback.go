package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"cleaning/internal/core/domain/model/payment"
)

// CallbackEnvelope is the body M-PESA posts to the callback URL after an STK push.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem values are numbers or strings depending on the item; receipt numbers are
// strings, phone numbers and dates arrive as numbers.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// Callback is the parsed outcome of a charge.
type Callback struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Receipt           string
	Details           map[string]string
}

var ErrMalformedCallback = errors.New("mpesa: malformed callback")

// ParseCallback decodes a callback body. Metadata items are flattened into Details under
// the payment metadata keys; the receipt number is returned separately.
func ParseCallback(raw []byte) (Callback, error) {
	var envelope CallbackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Callback{}, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return Callback{}, fmt.Errorf("%w: missing CheckoutRequestID", ErrMalformedCallback)
	}

	details := map[string]string{
		payment.MetaResultCode: strconv.Itoa(cb.ResultCode),
		payment.MetaResultDesc: cb.ResultDesc,
	}
	if cb.MerchantRequestID != "" {
		details[payment.MetaMerchantRequestID] = cb.MerchantRequestID
	}

	var receipt string
	if cb.CallbackMetadata != nil {
		for _, item := range cb.CallbackMetadata.Item {
			value := itemString(item.Value)
			switch item.Name {
			case "MpesaReceiptNumber":
				receipt = value
			case "TransactionDate":
				details[payment.MetaTransactionDate] = value
			case "PhoneNumber":
				details[payment.MetaPhoneNumber] = value
			}
		}
	}

	return Callback{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		Receipt:           receipt,
		Details:           details,
	}, nil
}

func itemString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return string(raw)
}
