package models

// ClaimRequest asks for ownership of an email to be transferred to the
// caller.
type ClaimRequest struct {
	Email string `json:"email"`
}

// ClaimConfirmation presents the token sent to the claimed address.
type ClaimConfirmation struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
