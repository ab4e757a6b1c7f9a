package handlers

import (
	"net/http"

	"github.com/groupmail/groupmail-services/api/services"
)

// @Summary Request a claim on an email
// @Description Sends a claim link to the email. With a bearer token the email is claimed for the caller's account.
// @Tags claims
// @Accept json
// @Produce json
// @Param claim body models.ClaimRequest true "Email to claim"
// @Success 202 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /claims [post]
func RequestClaim(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.RequestClaimService(svc, w, r)
	}
}

// @Summary Confirm a claim
// @Description Target of the link sent by a claim request.
// @Tags claims
// @Produce json
// @Param email query string true "Claimed email"
// @Param token query string true "Claim token"
// @Param claimant query string false "Claimant account ID"
// @Success 200 {object} models.AccountResponse
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /claims/confirm [get]
func ConfirmClaim(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.ConfirmClaimService(svc, w, r)
	}
}
