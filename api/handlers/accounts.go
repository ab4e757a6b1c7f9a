package handlers

import (
	"net/http"

	"github.com/groupmail/groupmail-services/api/services"
)

// @Summary Create an account
// @Description Register an account for an email. An email that already belongs to an account has to be claimed instead.
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.AccountRequest true "Account details"
// @Success 201 {object} models.AccountResponse
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /accounts [post]
func CreateAccount(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.CreateAccountService(svc, w, r)
	}
}

// @Summary Get the caller's account
// @Description Returns the account owning the token's email, with the groups each of its emails belongs to.
// @Tags accounts
// @Produce json
// @Success 200 {object} models.AccountResponse
// @Failure 401 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /accounts/me [get]
func GetMyAccount(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetMyAccountService(svc, w, r)
	}
}

// @Summary Update the caller's account
// @Description Fills blank fields and attaches a new email. Existing values are never overwritten, and an email owned by another account has to be claimed.
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.AccountRequest true "Account details"
// @Success 200 {object} models.AccountResponse
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /accounts/me [patch]
func UpdateMyAccount(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.UpdateMyAccountService(svc, w, r)
	}
}

// @Summary Remove an email from the caller's account
// @Tags accounts
// @Produce json
// @Param email path string true "Email" example(ann@example.com)
// @Param unsubscribe query bool false "Also leave every group the email belongs to"
// @Success 200 {object} models.AccountResponse
// @Failure 401 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /accounts/me/emails/{email} [delete]
func RemoveEmail(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.RemoveEmailService(svc, w, r)
	}
}

// @Summary Deactivate the caller's account
// @Tags accounts
// @Success 204
// @Failure 401 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /accounts/me [delete]
func DeactivateAccount(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.DeactivateAccountService(svc, w, r)
	}
}
