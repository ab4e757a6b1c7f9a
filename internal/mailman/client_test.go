package mailman

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lists", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer mocked-token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name": "gabc", "owner": "owner@example.com", "password": "code1"}`, string(body))
		_, _ = w.Write([]byte(`{"errors": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "mocked-token", time.Second)
	err := client.NewList(context.Background(), "gabc", "owner@example.com", "code1")
	assert.NoError(t, err)
}

func TestAddMembers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/gabc/members", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"members": ["a@example.com", "b@example.com"]}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	err := client.AddMembers(context.Background(), "gabc", []string{"a@example.com", "b@example.com"})
	assert.NoError(t, err)
}

func TestRemoveMembersReportsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/gabc/remove_members", r.URL.Path)
		_, _ = w.Write([]byte(`{"errors": ["No such member: a@example.com"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	err := client.RemoveMembers(context.Background(), "gabc", []string{"a@example.com"})
	require.Error(t, err)

	var mErr *Error
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "remove_members", mErr.Command)
	assert.Equal(t, []string{"No such member: a@example.com"}, mErr.Errors)
	assert.Contains(t, err.Error(), "No such member")
}

func TestRmListStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/lists/gabc", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	err := client.RmList(context.Background(), "gabc")

	var mErr *Error
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, http.StatusInternalServerError, mErr.Status)
	assert.Equal(t, "rmlist failed with status 500", err.Error())
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "", time.Second)
	err := client.NewList(context.Background(), "gabc", "owner@example.com", "code1")
	assert.Error(t, err)
}
