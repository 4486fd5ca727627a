package public

const (
	proofSuccessMessage = "GCash submitted!"
	proofFailureMessage = "Failed to send webhook"
	ipnAck              = "OK"
	ipnFailureMessage   = "IPN Verification Error"
)

type submitProofResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
