package domain

import (
	"strings"
	"time"
)

const (
	ProofEmbedTitle   = "📸 New GCash Proof Submitted"
	ProofEmbedColor   = 0x0099ff
	PaymentEmbedTitle = "✅ PayPal Payment Verified"
	PaymentEmbedColor = 0x00ff00

	// LocalTimeLayout mirrors the en-US locale string used in the Time field.
	LocalTimeLayout = "1/2/2006, 3:04:05 PM"
)

// WebhookMessage is the body accepted by the chat webhook.
type WebhookMessage struct {
	Embeds []Embed `json:"embeds"`
}

// Embed is a rich message block rendered by the chat client.
type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []EmbedField `json:"fields"`
	Timestamp string       `json:"timestamp,omitempty"`
}

// EmbedField is a labelled value inside an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NewProofMessage builds the notification for a proof submission.
// now is rendered in its own location.
func NewProofMessage(s Submission, now time.Time) WebhookMessage {
	return WebhookMessage{Embeds: []Embed{{
		Title: ProofEmbedTitle,
		Color: ProofEmbedColor,
		Fields: []EmbedField{
			{Name: "Minecraft", Value: s.Minecraft, Inline: true},
			{Name: "Discord", Value: s.Discord, Inline: true},
			{Name: "Rank", Value: s.Rank, Inline: true},
			{Name: "Payment Method", Value: s.PaymentMethod(), Inline: true},
			{Name: "Time", Value: now.Format(LocalTimeLayout), Inline: false},
		},
	}}}
}

// NewPaymentMessage builds the notification for a verified, completed IPN.
func NewPaymentMessage(c PaymentCallback, now time.Time) WebhookMessage {
	amount := strings.TrimSpace(valueOr(c.Get("mc_gross"), "??") + " " + c.Get("mc_currency"))
	return WebhookMessage{Embeds: []Embed{{
		Title: PaymentEmbedTitle,
		Color: PaymentEmbedColor,
		Fields: []EmbedField{
			{Name: "Minecraft", Value: valueOr(c.Get("custom"), "Unknown"), Inline: true},
			{Name: "Payer", Value: valueOr(c.Get("payer_email"), "N/A"), Inline: true},
			{Name: "Amount", Value: amount, Inline: true},
			{Name: "TXN ID", Value: valueOr(c.TxnID(), "N/A"), Inline: false},
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}}}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
