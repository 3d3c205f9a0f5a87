package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derr "github.com/borncamp/adboard-manager/internal/errors"
)

const (
	jwtSecret      = "hehe"
	masterPassword = "FJKqDyBvr9pAQMB3f8Uj4s"

	username    = "testUsername"
	password    = "testPassword"
	newPassword = "newPassword"
)

// memAdmins is an in-memory Admin repository keyed by lowercase username.
type memAdmins struct {
	hashes map[string]string
}

func (m *memAdmins) AddAdmin(ctx context.Context, un, pwHash string) error {
	m.hashes[un] = pwHash
	return nil
}

func (m *memAdmins) DeleteAdmin(ctx context.Context, un string) error {
	delete(m.hashes, un)
	return nil
}

func (m *memAdmins) ChangePassword(ctx context.Context, un, newHash string) error {
	if _, ok := m.hashes[un]; !ok {
		return derr.ErrNotFound
	}
	m.hashes[un] = newHash
	return nil
}

func (m *memAdmins) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	h, ok := m.hashes[un]
	if !ok {
		return "", derr.ErrNotFound
	}
	return h, nil
}

func TestAuth(t *testing.T) {
	ctx := context.Background()

	as := &memAdmins{hashes: map[string]string{}}
	c := &Config{
		JWTSecret:                jwtSecret,
		MasterPassword:           masterPassword,
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 100000,
		JWTTTL:                   "60m",
	}
	authsrv, err := New(c, as)
	require.NoError(t, err)

	_, err = authsrv.Create(ctx, masterPassword, username, password)
	assert.NoError(t, err)

	_, err = authsrv.Create(ctx, "wrong master", username, password)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = authsrv.ChangePassword(ctx, username, password, newPassword)
	assert.NoError(t, err)

	_, err = authsrv.Login(ctx, username, password)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	authToken, err := authsrv.Login(ctx, username, newPassword)
	assert.NoError(t, err)

	token := fmt.Sprintf("Bearer %s", authToken)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	handlerAuth := authsrv.WithAuth(nextHandler)

	req := httptest.NewRequest("GET", "http://testing", nil)
	req.Header.Set(AuthHeaderKey, token)

	rec := httptest.NewRecorder()
	handlerAuth.ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusOK)

	// bad token case
	req.Header.Set(AuthHeaderKey, "bad token")
	rec = httptest.NewRecorder()
	handlerAuth.ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusUnauthorized)

	err = authsrv.Delete(ctx, masterPassword, username)
	assert.NoError(t, err)

	_, err = authsrv.Login(ctx, username, newPassword)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
