package services

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

// CreateAccountService registers an account from the request payload. An
// email that already belongs to an account has to be claimed instead.
func CreateAccountService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.AccountRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	account, err := svc.Identity.RegisterAccount(r.Context(), accountInput(req))
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("account_id", account.ID.String()).Msg("Account created")
	WriteResponse(w, http.StatusCreated, models.AccountResponse{Account: *account})
}

// GetMyAccountService returns the caller's account and the groups each of
// its emails belongs to.
func GetMyAccountService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	account, _, err := callerAccount(svc, r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	memberships, err := svc.Identity.Memberships(r.Context(), account.ID)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, models.AccountResponse{Account: *account, Memberships: memberships})
}

// UpdateMyAccountService fills blank fields of the caller's account and
// attaches a new email when one is given. An email owned by another account
// is refused.
func UpdateMyAccountService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	account, _, err := callerAccount(svc, r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.AccountRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	account, err = svc.Identity.UpdateOwnAccount(r.Context(), account.ID, accountInput(req))
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, models.AccountResponse{Account: *account})
}

// RemoveEmailService detaches an email from the caller's account. With
// ?unsubscribe=true the email also leaves all of its groups.
func RemoveEmailService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	account, _, err := callerAccount(svc, r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	unsubscribe, _ := strconv.ParseBool(r.URL.Query().Get("unsubscribe"))
	email := mux.Vars(r)["email"]

	account, err = svc.Identity.RemoveEmail(r.Context(), account.ID, email, unsubscribe)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("account_id", account.ID.String()).Str("email", email).Bool("unsubscribe", unsubscribe).Msg("Email removed")
	WriteResponse(w, http.StatusOK, models.AccountResponse{Account: *account})
}

// DeactivateAccountService deactivates the caller's account.
func DeactivateAccountService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	account, _, err := callerAccount(svc, r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	if err := svc.Identity.Deactivate(r.Context(), account.ID); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("account_id", account.ID.String()).Msg("Account deactivated")
	WriteResponse(w, http.StatusNoContent, nil)
}

func accountInput(req models.AccountRequest) identity.AccountInput {
	return identity.AccountInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	}
}
