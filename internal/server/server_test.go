package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForResult(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusForResult(types.Succeeded()))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForResult(types.Failed(types.ErrListingUnavailable)))
}

func TestPickupIDFromTopic(t *testing.T) {
	id, ok := pickupIDFromTopic("pickup:abc123")
	require.True(t, ok)
	assert.Equal(t, "abc123", id)

	_, ok = pickupIDFromTopic("user:abc123")
	assert.False(t, ok)

	_, ok = pickupIDFromTopic("pickup:")
	assert.False(t, ok)
}

func TestStripTrailingSlash(t *testing.T) {
	s := &Service{logger: logrus.New()}

	handler := s.StripTrailingSlash(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Root path is left alone.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDecodeFormAcceptsJSONAndForms(t *testing.T) {
	s := &Service{logger: logrus.New()}

	var fromJSON loginForm
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.sg","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	require.NoError(t, s.decodeForm(req, &fromJSON))
	assert.Equal(t, "a@b.sg", fromJSON.Email)

	var fromForm loginForm
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=a%40b.sg&password=pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, s.decodeForm(req, &fromForm))
	assert.Equal(t, "a@b.sg", fromForm.Email)
	assert.Equal(t, "pw", fromForm.Password)
}
