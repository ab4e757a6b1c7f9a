package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/groupmail/groupmail-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmURL(email, token, claimant string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	if claimant != "" {
		q.Set("claimant", claimant)
	}
	return "/claims/confirm?" + q.Encode()
}

func TestClaimFlow_ByAccountHolder(t *testing.T) {
	svc, notifier := newTestService(t)
	createAccount(t, svc, models.AccountRequest{Email: "old@example.com"})
	bob := createAccount(t, svc, models.AccountRequest{Email: "bob@example.com"})

	w := httptest.NewRecorder()
	RequestClaimService(svc, w, newRequest(t, http.MethodPost, "/claims", models.ClaimRequest{Email: "old@example.com"}, "bob@example.com"))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Len(t, notifier.claims, 1)
	sent := notifier.claims[0]
	assert.Equal(t, "old@example.com", sent.email)
	require.True(t, sent.claimant.Valid)
	assert.Equal(t, bob.ID, sent.claimant.UUID)

	w = httptest.NewRecorder()
	ConfirmClaimService(svc, w, newRequest(t, http.MethodGet, confirmURL(sent.email, sent.token, sent.claimant.UUID.String()), nil, ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AccountResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, bob.ID, resp.Account.ID)
	assert.ElementsMatch(t, []string{"bob@example.com", "old@example.com"}, resp.Account.Emails)

	// The token was bound to the previous owner.
	w = httptest.NewRecorder()
	ConfirmClaimService(svc, w, newRequest(t, http.MethodGet, confirmURL(sent.email, sent.token, sent.claimant.UUID.String()), nil, ""))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClaimFlow_Anonymous(t *testing.T) {
	svc, notifier := newTestService(t)
	createAccount(t, svc, models.AccountRequest{Email: "old@example.com"})

	w := httptest.NewRecorder()
	RequestClaimService(svc, w, newRequest(t, http.MethodPost, "/claims", models.ClaimRequest{Email: "old@example.com"}, ""))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, notifier.claims, 1)
	assert.False(t, notifier.claims[0].claimant.Valid)
}

func TestRequestClaimService_AlreadyOwner(t *testing.T) {
	svc, _ := newTestService(t)
	createAccount(t, svc, models.AccountRequest{Email: "bob@example.com"})

	w := httptest.NewRecorder()
	RequestClaimService(svc, w, newRequest(t, http.MethodPost, "/claims", models.ClaimRequest{Email: "bob@example.com"}, "bob@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_owner", errorCodeOf(t, w))
}

func TestConfirmClaimService_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	createAccount(t, svc, models.AccountRequest{Email: "old@example.com"})

	w := httptest.NewRecorder()
	ConfirmClaimService(svc, w, newRequest(t, http.MethodGet, confirmURL("old@example.com", "forged", ""), nil, ""))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "claim_token_invalid", errorCodeOf(t, w))

	w = httptest.NewRecorder()
	ConfirmClaimService(svc, w, newRequest(t, http.MethodGet, confirmURL("old@example.com", "forged", "not-a-uuid"), nil, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_field", errorCodeOf(t, w))
}
