package domain

import (
	"net/url"
	"strings"
)

const (
	// VerifyCommand is prepended to the echoed IPN body.
	VerifyCommand = "cmd=_notify-validate"

	// PaymentStatusCompleted is the only status that triggers a notification.
	PaymentStatusCompleted = "Completed"
)

// CallbackField is one key/value pair of an IPN body, in arrival order.
type CallbackField struct {
	Key   string
	Value string
}

// PaymentCallback keeps an IPN body exactly as received together with its
// decoded fields. The field set is defined by the sender, so it is not
// modelled as a fixed struct.
type PaymentCallback struct {
	raw    string
	fields []CallbackField
}

// ParsePaymentCallback decodes a form-encoded body. Pairs keep their order
// and duplicates. Values whose escapes cannot be decoded keep their raw text.
func ParsePaymentCallback(body []byte) PaymentCallback {
	raw := string(body)
	cb := PaymentCallback{raw: raw}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		cb.fields = append(cb.fields, CallbackField{
			Key:   unescapeFormValue(key),
			Value: unescapeFormValue(value),
		})
	}
	return cb
}

func unescapeFormValue(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// Raw returns the body bytes as received.
func (c PaymentCallback) Raw() string {
	return c.raw
}

// Fields returns a copy of the decoded pairs in arrival order.
func (c PaymentCallback) Fields() []CallbackField {
	return append([]CallbackField(nil), c.fields...)
}

// Get returns the first value for key.
func (c PaymentCallback) Get(key string) string {
	for _, field := range c.fields {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

// VerificationBody is the payload posted back to the verification endpoint.
func (c PaymentCallback) VerificationBody() string {
	return VerifyCommand + "&" + c.raw
}

func (c PaymentCallback) PaymentStatus() string { return c.Get("payment_status") }
func (c PaymentCallback) TxnID() string         { return c.Get("txn_id") }

// Completed reports whether payment_status is exactly "Completed".
func (c PaymentCallback) Completed() bool {
	return c.PaymentStatus() == PaymentStatusCompleted
}
