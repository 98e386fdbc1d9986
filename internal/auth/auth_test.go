package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", Claims{UserID: "7", Email: "qoc@uni.edu", Role: "qoc"})
	require.NoError(t, err)

	c, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "7", c.UserID)
	assert.Equal(t, "qoc", c.Role)

	_, err = ValidateToken("other", token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("hunter23", hash))
}

func TestMiddlewareAndRoles(t *testing.T) {
	token, err := GenerateToken("k", Claims{UserID: "1", Role: "faculty"})
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", GetUser(r.Context()).UserID)
		w.WriteHeader(http.StatusNoContent)
	})
	tests := []struct {
		name   string
		header string
		roles  []string
		want   int
	}{
		{"no header", "", []string{"faculty"}, http.StatusUnauthorized},
		{"bad token", "Bearer nope", []string{"faculty"}, http.StatusUnauthorized},
		{"role allowed", "Bearer " + token, []string{"faculty", "hod"}, http.StatusNoContent},
		{"role denied", "Bearer " + token, []string{"qoc"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Middleware("k")(RequireRole(tt.roles...)(ok))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
