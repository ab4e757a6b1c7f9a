package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/groupmail/groupmail-services/api/middleware"
	"github.com/groupmail/groupmail-services/internal/authn"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

var (
	errUnauthorized = errors.New("unauthorized: invalid claims")
	errForbidden    = errors.New("forbidden: group administrators only")
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return // **Return immediately to avoid multiple WriteHeader calls**
		}
	}
}

// HandleErrResponse writes err as a failed Response with the status that
// matches its kind.
func HandleErrResponse(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status := StatusFor(err)
	details := err.Error()

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Request failed")
		details = "internal server error"
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("Request rejected")
	}

	resp := models.ErrorResponse(errorCode(err), details)
	WriteResponse(w, status, resp)
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, errUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, errForbidden) {
		return http.StatusForbidden
	}

	switch identity.KindOf(err) {
	case identity.KindInvalidEmail, identity.KindInvalidField,
		identity.KindNameTooLong, identity.KindCodeTooLong,
		identity.KindNameNotAllowed, identity.KindCodeNotAllowed:
		return http.StatusBadRequest
	case identity.KindAccountNotFound, identity.KindEmailNotFound, identity.KindGroupNotFound:
		return http.StatusNotFound
	case identity.KindCodeInvalid, identity.KindClaimTokenInvalid:
		return http.StatusForbidden
	case identity.KindDuplicateEmail, identity.KindDuplicatePrimaryEmail,
		identity.KindDuplicatePhoneNumber, identity.KindInconsistentPhoneNumber,
		identity.KindGroupAlreadyExists, identity.KindAlreadyMember,
		identity.KindNotAMember, identity.KindAlreadyOwner, identity.KindAccountInactive:
		return http.StatusConflict
	case identity.KindExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errUnauthorized):
		return "unauthorized"
	case errors.Is(err, errForbidden):
		return "forbidden"
	}
	return identity.KindOf(err).String()
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &identity.Error{Kind: identity.KindInvalidField, Field: "body", Msg: "invalid request payload"}
	}
	return nil
}

func callerClaims(r *http.Request) (authn.Claims, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok || claims.CallerEmail() == "" {
		return claims, errUnauthorized
	}
	return claims, nil
}

// callerAccount resolves the account that owns the email of the token.
func callerAccount(svc *Service, r *http.Request) (*models.Account, authn.Claims, error) {
	claims, err := callerClaims(r)
	if err != nil {
		return nil, claims, err
	}
	account, err := svc.Identity.FindAccountByEmail(r.Context(), claims.CallerEmail())
	if err != nil {
		return nil, claims, err
	}
	return account, claims, nil
}

// callerOwns reports whether email is the token's email or one of the
// emails of the caller's account.
func callerOwns(svc *Service, r *http.Request, claims authn.Claims, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == claims.CallerEmail() {
		return true, nil
	}

	account, err := svc.Identity.FindAccountByEmail(r.Context(), claims.CallerEmail())
	if identity.KindOf(err) == identity.KindAccountNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, e := range account.Emails {
		if e == email {
			return true, nil
		}
	}
	return false, nil
}

// requireGroupAdmin checks that the caller administers the group, either
// through one of its emails or through the site admin role.
func requireGroupAdmin(svc *Service, r *http.Request, groupName string) (*models.GroupResponse, error) {
	claims, err := callerClaims(r)
	if err != nil {
		return nil, err
	}

	group, err := svc.Identity.GetGroup(r.Context(), groupName)
	if err != nil {
		return nil, err
	}
	if claims.HasRole(authn.SiteAdminRole) {
		return group, nil
	}

	emails := map[string]bool{claims.CallerEmail(): true}
	if account, err := svc.Identity.FindAccountByEmail(r.Context(), claims.CallerEmail()); err == nil {
		for _, email := range account.Emails {
			emails[email] = true
		}
	} else if identity.KindOf(err) != identity.KindAccountNotFound {
		return nil, err
	}

	for _, m := range group.Members {
		if m.IsAdmin && emails[m.Email] {
			return group, nil
		}
	}
	return nil, errForbidden
}
