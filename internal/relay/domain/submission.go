package domain

// DefaultPaymentMethod is used when a submission leaves the method blank.
const DefaultPaymentMethod = "GCash"

// Submission is a payment proof sent by a player.
type Submission struct {
	Minecraft string
	Discord   string
	Rank      string
	Method    string
	Proof     *ProofFile
}

// ProofFile points at the staged copy of the uploaded proof.
type ProofFile struct {
	OriginalName string
	Path         string
	Size         int64
}

// PaymentMethod returns the submitted method unchanged, or
// DefaultPaymentMethod when it is empty.
func (s Submission) PaymentMethod() string {
	if s.Method != "" {
		return s.Method
	}
	return DefaultPaymentMethod
}
