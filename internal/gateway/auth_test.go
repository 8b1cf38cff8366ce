// ABOUTME: Tests for registration and login against a fake backend.
// ABOUTME: Verifies form encoding, token extraction, and detail propagation.

package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_FormEncodedAndTokenReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-abc","token_type":"bearer"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	token, err := client.Login(context.Background(), "alice@example.com", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Login(context.Background(), "alice@example.com", "wrong")

	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, "Incorrect username or password", UserMessage(err))
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Login(context.Background(), "alice@example.com", "hunter2")

	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestRegister_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.Register(context.Background(), "bob@example.com", "s3cret")

	require.NoError(t, err)
}

func TestRegister_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.Register(context.Background(), "bob@example.com", "s3cret")

	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, "Email already registered", UserMessage(err))
}
