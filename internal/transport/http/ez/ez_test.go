package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realty-api/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type noteIn struct {
	ListingID string  `json:"listingId" binding:"required,objectid"`
	Phone     string  `json:"phone"     binding:"omitempty,phone"`
	When      *string `json:"when"      binding:"omitempty,isodate"`
	Title     string  `json:"title"     binding:"required,min=3"`
}

func (in *noteIn) Normalize() { in.Title = strings.TrimSpace(in.Title) }

func TestRegisterActionBindsAndMapsErrors(t *testing.T) {
	r := gin.New()
	e := New(r.Group(""), zap.NewNop())
	var got noteIn
	RegisterAction(e, Action[noteIn, gin.H]{
		Method:   http.MethodPost,
		Path:     "/notes",
		Binder:   BindJSON,
		Status:   http.StatusCreated,
		NotFound: "Note not found",
		Handler: func(c *gin.Context, in *noteIn) (gin.H, error) {
			got = *in
			switch in.Title {
			case "missing":
				return nil, fmt.Errorf("load: %w", domain.ErrNotFound)
			case "boom":
				return nil, errors.New("db exploded")
			case "slow":
				return nil, context.DeadlineExceeded
			}
			return gin.H{"ok": true}, nil
		},
	})
	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body)))
		return w
	}

	w := post(`{"listingId":"64b7f0c2a1b2c3d4e5f60718","title":"  hello  ","when":"2024-05-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hello", got.Title)

	w = post(`{"listingId":"xyz","phone":"call me","when":"May 1","title":"  a "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","details":{
		"listingId":"Invalid ID","phone":"Invalid phone number format","when":"Invalid date","title":"Must be at least 3 characters"}}`, w.Body.String())

	w = post(`{"listingId":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "listingId")

	w = post(``)
	assert.JSONEq(t, `{"error":"Request body is required"}`, w.Body.String())

	ok := `{"listingId":"64b7f0c2a1b2c3d4e5f60718","title":"%s"}`
	w = post(fmt.Sprintf(ok, "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Note not found"}`, w.Body.String())

	w = post(fmt.Sprintf(ok, "boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	w = post(fmt.Sprintf(ok, "slow"))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{domain.ErrListingInactive, http.StatusBadRequest, "This listing is no longer accepting inquiries"},
		{fmt.Errorf("x: %w", domain.ErrEmailTaken), http.StatusConflict, ""},
		{domain.ErrSelfDelete, http.StatusBadRequest, ""},
		{fmt.Errorf("agent 1: %w", domain.ErrAgentMissing), http.StatusInternalServerError, "Agent not found"},
		{fmt.Errorf("customer c1: %w", domain.ErrCustomerNotOwned), http.StatusNotFound, "Customer not found"},
		{Forbidden(""), http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		ae := toAErr(tc.err, "Not found")
		assert.Equal(t, tc.status, ae.Status, tc.err.Error())
		if tc.msg != "" {
			assert.Equal(t, tc.msg, ae.Msg)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	d, err = ParseDate("2024-05-01T10:00:00-04:00")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Hour())

	_, err = ParseDate("05/01/2024")
	assert.Error(t, err)
}
