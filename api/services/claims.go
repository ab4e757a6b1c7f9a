package services

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/internal/authn"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

// RequestClaimService sends a claim link to the requested email. A caller
// with an account claims on behalf of that account; anyone else claims
// anonymously.
func RequestClaimService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.ClaimRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	claimant, err := optionalClaimant(svc, r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	if err := svc.Identity.RequestClaim(r.Context(), req.Email, claimant); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusAccepted, models.Response{Success: 1})
}

// ConfirmClaimService completes a claim from the link sent by
// RequestClaimService.
func ConfirmClaimService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	q := r.URL.Query()

	var claimant uuid.NullUUID
	if raw := q.Get("claimant"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			HandleErrResponse(w, logger, &identity.Error{Kind: identity.KindInvalidField, Field: "claimant", Value: raw, Msg: "invalid claimant"})
			return
		}
		claimant = uuid.NullUUID{UUID: id, Valid: true}
	}

	account, err := svc.Identity.ConfirmClaim(r.Context(), q.Get("email"), q.Get("token"), claimant)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("account_id", account.ID.String()).Str("email", q.Get("email")).Msg("Email claimed")
	WriteResponse(w, http.StatusOK, models.AccountResponse{Account: *account})
}

func optionalClaimant(svc *Service, r *http.Request) (uuid.NullUUID, error) {
	claims, err := callerClaims(r)
	if err != nil {
		return uuid.NullUUID{}, nil
	}
	return claimantFor(svc, r, claims)
}

func claimantFor(svc *Service, r *http.Request, claims authn.Claims) (uuid.NullUUID, error) {
	account, err := svc.Identity.FindAccountByEmail(r.Context(), claims.CallerEmail())
	if identity.KindOf(err) == identity.KindAccountNotFound {
		return uuid.NullUUID{}, nil
	}
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: account.ID, Valid: true}, nil
}
