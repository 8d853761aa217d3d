package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagetracker/backend/pkg/jwt"
)

func newTestGate(t *testing.T) (*Gate, string) {
	t.Helper()
	issuer := jwt.NewIssuer("test-secret")
	token, err := issuer.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)
	return NewGate(issuer), token
}

func TestVerifyConnectionCredential(t *testing.T) {
	gate, token := newTestGate(t)

	userID, err := gate.VerifyConnectionCredential(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = gate.VerifyConnectionCredential("")
	assert.ErrorIs(t, err, ErrAuthenticationFailure)

	_, err = gate.VerifyConnectionCredential("garbage")
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, "header %q", header)
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate, token := newTestGate(t)

	router := gin.New()
	router.GET("/me", AuthMiddleware(gate), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"invalid", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate, token := newTestGate(t)

	router := gin.New()
	router.GET("/", OptionalAuthMiddleware(gate), func(c *gin.Context) {
		c.String(http.StatusOK, "viewer=%s", UserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "viewer=", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "viewer=user-1", w.Body.String())
}
