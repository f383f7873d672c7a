package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realty-api/internal/core/auth"
	"realty-api/internal/core/cache"
	"realty-api/internal/core/config"
	"realty-api/internal/core/events"
	"realty-api/internal/core/session"
	"realty-api/internal/domain"
	"realty-api/internal/mailer"
	"realty-api/internal/repo/memory"
	"realty-api/internal/repo/repotest"
	"realty-api/internal/service"
)

const cookieName = "connect.sid"

type mailFunc func(ctx context.Context, n mailer.Inquiry) error

func (f mailFunc) SendInquiry(ctx context.Context, n mailer.Inquiry) error { return f(ctx, n) }

type env struct {
	t     *testing.T
	db    *memory.DB
	svc   Deps
	h     http.Handler
	sent  []mailer.Inquiry
	fail  bool
	admin *service.UserAdmin
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.App{
			Name:         "realty-api",
			Env:          "test",
			ClientOrigin: "http://localhost:5173",
			HTTP:         config.HTTP{RequestTimeoutSec: 5},
		},
		Session: config.Session{CookieName: cookieName, TTLHours: 1},
		RateLimit: config.RateLimit{
			General: config.Limit{Max: 1000, WindowMin: 15},
			Login:   config.Limit{Max: 5, WindowMin: 15},
			Inquiry: config.Limit{Max: 3, WindowMin: 60},
		},
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{t: t, db: memory.New()}
	l := zap.NewNop()
	c := cache.New(nil, "test:")
	rec := &events.Recorder{}
	e.admin = &service.UserAdmin{Users: e.db.Users, Cache: c, Log: l}
	e.svc = Deps{
		Log:    l,
		Config: testConfig(),
		Auth: &service.AuthService{
			Users:    e.db.Users,
			Sessions: session.NewMemoryStore(time.Hour),
			Tokens:   &auth.JWTer{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "realty-api", TTL: time.Hour},
			Cache:    c,
			Log:      l,
		},
		Agents:   &service.AgentService{Users: e.db.Users, Cache: c},
		Listings: &service.ListingService{Listings: e.db.Listings, Users: e.db.Users, Customers: e.db.Customers, Cache: c, Events: rec, Log: l},
		Inquiries: &service.InquiryService{
			Listings: e.db.Listings, Users: e.db.Users, Inquiries: e.db.Inquiries, Events: rec, Log: l,
			Mailer: mailFunc(func(_ context.Context, n mailer.Inquiry) error {
				if e.fail {
					return errors.New("smtp down")
				}
				e.sent = append(e.sent, n)
				return nil
			}),
		},
		Customers: &service.CustomerService{Customers: e.db.Customers, Listings: e.db.Listings, Events: rec, Log: l},
		Users:     e.admin,
	}
	e.h = NewAPIEngine(e.svc)
	return e
}

func (e *env) user(email, role string) *domain.User {
	e.t.Helper()
	u, err := e.admin.Create(context.Background(), service.NewUser{
		Email: email, Password: "password123", Name: "Agent " + email[:3], Phone: "718-555-0100", Role: role,
	})
	require.NoError(e.t, err)
	return u
}

func (e *env) listing(agentID, title, hood string, price float64, beds int) *domain.Listing {
	e.t.Helper()
	l := repotest.NewListing(agentID, title, hood, price, beds)
	require.NoError(e.t, e.svc.Listings.Create(context.Background(), agentID, l))
	return l
}

func (e *env) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:4321"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func (e *env) login(email string) *http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "password123"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	e.t.Fatalf("no %s cookie in login response", cookieName)
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, "ok", m["status"])
	assert.NotEmpty(t, m["timestamp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = e.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w)["error"])
}

func TestLoginSessionLifecycle(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")

	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "amy@realty.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = e.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ck := e.login("  AMY@realty.test")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 3600, ck.MaxAge)

	w = e.do(http.MethodGet, "/api/auth/me", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, a.ID, user["id"])
	assert.NotContains(t, user, "passwordHash")

	tampered := &http.Cookie{Name: cookieName, Value: ck.Value + "x"}
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", nil, tampered).Code)

	w = e.do(http.MethodPost, "/api/auth/logout", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ok"])
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", nil, ck).Code)
}

func TestLoginValidationAndRateLimit(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	m := decode(t, w)
	assert.Equal(t, "Validation failed", m["error"])
	details := m["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	w = e.do(http.MethodPost, "/api/auth/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 前两次已计数
	for i := 0; i < 3; i++ {
		w = e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "x@realty.test", "password": "password123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w = e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "x@realty.test", "password": "password123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many login attempts, please try again later", decode(t, w)["error"])
	assert.Equal(t, "5", w.Header().Get("RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestProfileUpdate(t *testing.T) {
	e := newEnv(t)
	e.user("amy@realty.test", "")
	ck := e.login("amy@realty.test")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPut, "/api/auth/profile", map[string]string{"bio": "hi"}).Code)

	w := e.do(http.MethodPut, "/api/auth/profile", map[string]string{"name": "A"}, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/auth/profile", map[string]string{"bio": "  Staten Island native.  ", "photoUrl": "https://img.example.com/amy.jpg"}, ck)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Staten Island native.", user["bio"])

	w = e.do(http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	agents := decode(t, w)["agents"].([]any)
	require.Len(t, agents, 1)
	assert.Equal(t, "Staten Island native.", agents[0].(map[string]any)["bio"])
}

func TestListingSearchFiltersAndPagination(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)
	e.listing(a.ID, "Ranch in Great Kills", "Great Kills", 500000, 3)
	e.listing(a.ID, "Condo in St. George", "St. George", 350000, 1)
	sold := e.listing(a.ID, "Sold Cape", "Great Kills", 450000, 3)
	_, err := e.svc.Listings.SetStatus(context.Background(), sold.ID, a.ID, domain.StatusSold, "")
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/api/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Len(t, m["listings"], 3)
	pg := m["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pg["page"])
	assert.EqualValues(t, 12, pg["limit"])
	assert.EqualValues(t, 3, pg["total"])
	assert.EqualValues(t, 1, pg["totalPages"])
	first := m["listings"].([]any)[0].(map[string]any)
	agent := first["agent"].(map[string]any)
	assert.Equal(t, "Agent amy", agent["name"])
	assert.NotContains(t, agent, "bio")

	w = e.do(http.MethodGet, "/api/listings?minPrice=400000&beds=3", nil)
	assert.Len(t, decode(t, w)["listings"], 2)

	w = e.do(http.MethodGet, "/api/listings?neighborhood=Great+Kills&status=sold", nil)
	items := decode(t, w)["listings"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, sold.ID, items[0].(map[string]any)["_id"])
	assert.NotEmpty(t, items[0].(map[string]any)["soldDate"])

	w = e.do(http.MethodGet, "/api/listings?q=ranch", nil)
	assert.Len(t, decode(t, w)["listings"], 1)

	w = e.do(http.MethodGet, "/api/listings?limit=2&page=2", nil)
	m = decode(t, w)
	assert.Len(t, m["listings"], 1)
	pg = m["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pg["totalPages"])

	w = e.do(http.MethodGet, "/api/listings?page=10000&limit=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m = decode(t, w)
	assert.Empty(t, m["listings"])
	assert.EqualValues(t, 10000, m["pagination"].(map[string]any)["page"])

	for _, bad := range []string{"page=0", "page=10001", "page=100000000000000000&limit=100", "limit=101", "status=gone", "minPrice=abc"} {
		w = e.do(http.MethodGet, "/api/listings?"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w = e.do(http.MethodGet, "/api/listings/neighborhoods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Great Kills", "St. George", "Tottenville"}, decode(t, w)["neighborhoods"])
}

func TestListingGet(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	l := e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)

	w := e.do(http.MethodGet, "/api/listings/"+l.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, l.Title, decode(t, w)["listing"].(map[string]any)["title"])

	for _, id := range []string{"not-an-id", "64b7f0c2a1b2c3d4e5f60718"} {
		w = e.do(http.MethodGet, "/api/listings/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Listing not found", decode(t, w)["error"])
	}
}

func newListingBody() map[string]any {
	return map[string]any{
		"title":        "Victorian in St. George",
		"address":      "44 Daniel Low Ter, Staten Island, NY",
		"neighborhood": "St. George",
		"price":        899000,
		"beds":         5,
		"baths":        2.5,
		"sqft":         2800,
		"description":  "Restored Victorian with harbor views and original details.",
		"imageUrls":    []string{"https://img.example.com/v1.jpg"},
	}
}

func TestAgentListingCrudAndOwnership(t *testing.T) {
	e := newEnv(t)
	e.user("amy@realty.test", "")
	e.user("bob@realty.test", "")
	amy := e.login("amy@realty.test")
	bob := e.login("bob@realty.test")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/agent/listings", newListingBody()).Code)

	bad := newListingBody()
	bad["imageUrls"] = []string{}
	bad["price"] = 0
	w := e.do(http.MethodPost, "/api/agent/listings", bad, amy)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "imageUrls")
	assert.Contains(t, details, "price")

	w = e.do(http.MethodPost, "/api/agent/listings", newListingBody(), amy)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["listing"].(map[string]any)
	id := created["_id"].(string)
	assert.Equal(t, domain.StatusActive, created["status"])

	w = e.do(http.MethodGet, "/api/listings/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Victorian in St. George", decode(t, w)["listing"].(map[string]any)["title"])

	// 别人的房源一律 404，且不产生修改
	w = e.do(http.MethodPut, "/api/agent/listings/"+id, map[string]any{"price": 1}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Listing not found or unauthorized", decode(t, w)["error"])
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/agent/listings/"+id, nil, bob).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPatch, "/api/agent/listings/"+id+"/status", map[string]string{"status": "sold"}, bob).Code)
	l, err := e.db.Listings.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 899000, l.Price)
	assert.Equal(t, domain.StatusActive, l.Status)

	w = e.do(http.MethodGet, "/api/agent/listings", nil, bob)
	assert.Empty(t, decode(t, w)["listings"])

	w = e.do(http.MethodPut, "/api/agent/listings/"+id, map[string]any{"imageUrls": []string{}}, amy)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/agent/listings/"+id, map[string]any{"price": 850000}, amy)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 850000, decode(t, w)["listing"].(map[string]any)["price"])

	bobs := &domain.Customer{AgentID: e.user("bea@realty.test", "").ID, FirstName: "Bea", LastName: "Other",
		Email: "bea@example.com", Phone: "7185550002"}
	require.NoError(t, e.db.Customers.Create(context.Background(), bobs))
	w = e.do(http.MethodPatch, "/api/agent/listings/"+id+"/status", map[string]string{"status": "sold", "customerId": bobs.ID}, amy)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found", decode(t, w)["error"])

	w = e.do(http.MethodPatch, "/api/agent/listings/"+id+"/status", map[string]string{"status": "closed"}, amy)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodPatch, "/api/agent/listings/"+id+"/status", map[string]string{"status": "sold"}, amy)
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode(t, w)["listing"].(map[string]any)
	assert.Equal(t, domain.StatusSold, patched["status"])
	assert.NotEmpty(t, patched["soldDate"])

	w = e.do(http.MethodGet, "/api/agent/listings", nil, amy)
	assert.Len(t, decode(t, w)["listings"], 1)

	w = e.do(http.MethodDelete, "/api/agent/listings/"+id, nil, amy)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ok"])
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/agent/listings/"+id, nil, amy).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/listings/"+id, nil).Code)
}

func inquiryBody(listingID string) map[string]string {
	return map[string]string{
		"listingId": listingID,
		"name":      "Jane Buyer",
		"email":     "Jane@Buyer.test",
		"phone":     "(718) 555-0199",
		"message":   "Is the basement finished? I'd like a showing.",
	}
}

func TestInquirySubmit(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	l := e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)

	w := e.do(http.MethodPost, "/api/inquiries", inquiryBody(l.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode(t, w)
	assert.Equal(t, true, m["ok"])
	id := m["inquiry"].(map[string]any)["id"].(string)

	stored, ok := e.db.Inquiries.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.EmailSent, stored.EmailStatus)
	assert.Equal(t, "jane@buyer.test", stored.Email)
	assert.Equal(t, a.ID, stored.AgentID)
	require.Len(t, e.sent, 1)
	assert.Equal(t, "amy@realty.test", e.sent[0].Agent.Email)

	e.fail = true
	w = e.do(http.MethodPost, "/api/inquiries", inquiryBody(l.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	stored, _ = e.db.Inquiries.Get(decode(t, w)["inquiry"].(map[string]any)["id"].(string))
	assert.Equal(t, domain.EmailFailed, stored.EmailStatus)

	ck := e.login("amy@realty.test")
	w = e.do(http.MethodGet, "/api/agent/inquiries", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["inquiries"], 2)
}

func TestInquiryRejections(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	l := e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)
	_, err := e.svc.Listings.SetStatus(context.Background(), l.ID, a.ID, domain.StatusPending, "")
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api/inquiries", inquiryBody(l.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This listing is no longer accepting inquiries", decode(t, w)["error"])
	assert.Zero(t, e.db.Inquiries.Count())
	assert.Empty(t, e.sent)

	w = e.do(http.MethodPost, "/api/inquiries", inquiryBody("64b7f0c2a1b2c3d4e5f60718"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Listing not found", decode(t, w)["error"])

	body := inquiryBody(l.ID)
	body["phone"] = "call me"
	body["message"] = "short"
	w = e.do(http.MethodPost, "/api/inquiries", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "phone")
	assert.Contains(t, details, "message")
	assert.Zero(t, e.db.Inquiries.Count())
}

func TestInquiryRateLimitPerListing(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	one := e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)
	two := e.listing(a.ID, "Ranch in Great Kills", "Great Kills", 500000, 3)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/inquiries", inquiryBody(one.ID)).Code)
	}
	w := e.do(http.MethodPost, "/api/inquiries", inquiryBody(one.ID))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 3, e.db.Inquiries.Count())

	// 另一个房源单独计数
	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/inquiries", inquiryBody(two.ID)).Code)
}

func TestCustomerLedger(t *testing.T) {
	e := newEnv(t)
	a := e.user("amy@realty.test", "")
	e.user("bob@realty.test", "")
	l := e.listing(a.ID, "Colonial in Tottenville", "Tottenville", 700000, 4)
	amy := e.login("amy@realty.test")
	bob := e.login("bob@realty.test")

	w := e.do(http.MethodPost, "/api/agent/customers", map[string]any{
		"firstName": "Jo", "lastName": "Buyer", "email": "bad", "phone": "123",
	}, amy)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "phone")

	w = e.do(http.MethodPost, "/api/agent/customers", map[string]any{
		"firstName":     "Jo",
		"lastName":      "Buyer",
		"email":         "JO@Buyer.test",
		"phone":         "(718) 555-0142",
		"purchaseDate":  "2024-05-01",
		"purchasePrice": 690000,
		"listingId":     l.ID,
	}, amy)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cust := decode(t, w)["customer"].(map[string]any)
	id := cust["_id"].(string)
	assert.Equal(t, "jo@buyer.test", cust["email"])

	got, err := e.db.Listings.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	assert.Equal(t, id, got.CustomerID)
	require.NotNil(t, got.SoldDate)

	w = e.do(http.MethodGet, "/api/agent/customers?q=buyer", nil, amy)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["customers"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, l.Title, items[0].(map[string]any)["listing"].(map[string]any)["title"])

	w = e.do(http.MethodGet, "/api/agent/customers?q=nobody", nil, amy)
	assert.Empty(t, decode(t, w)["customers"])
	w = e.do(http.MethodGet, "/api/agent/customers", nil, bob)
	assert.Empty(t, decode(t, w)["customers"])

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/agent/customers/"+id, map[string]any{"notes": "x"}, bob).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/agent/customers/"+id, nil, bob).Code)

	w = e.do(http.MethodPut, "/api/agent/customers/"+id, map[string]any{"notes": "Closed in May"}, amy)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Closed in May", decode(t, w)["customer"].(map[string]any)["notes"])

	other := e.listing(a.ID, "Ranch in Great Kills", "Great Kills", 500000, 3)
	w = e.do(http.MethodPost, "/api/agent/customers/"+id+"/link", map[string]string{"listingId": other.ID}, amy)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, other.ID, decode(t, w)["customer"].(map[string]any)["listingId"])
	got, err = e.db.Listings.FindByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)

	w = e.do(http.MethodPost, "/api/agent/customers/"+id+"/link", map[string]string{"listingId": "nope"}, amy)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/agent/customers/"+id, nil, amy).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/agent/customers/"+id, nil, amy).Code)
}

func TestAdminUsers(t *testing.T) {
	e := newEnv(t)
	root := e.user("root@realty.test", domain.RoleAdmin)
	e.user("amy@realty.test", "")
	admin := e.login("root@realty.test")
	agent := e.login("amy@realty.test")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/admin/users", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/users", nil, agent).Code)

	w := e.do(http.MethodGet, "/api/admin/users?limit=10", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.EqualValues(t, 2, m["total"])
	assert.Len(t, m["items"], 2)

	w = e.do(http.MethodPost, "/api/admin/users", map[string]string{
		"email": "New@Realty.test", "password": "password123", "name": "Nina", "phone": "718-555-0111",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "new@realty.test", created["email"])
	assert.Equal(t, domain.RoleAgent, created["role"])

	w = e.do(http.MethodPost, "/api/admin/users", map[string]string{
		"email": "new@realty.test", "password": "password123", "name": "Nina", "phone": "718-555-0111",
	}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodDelete, "/api/admin/users/"+root.ID, nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/admin/users/"+created["id"].(string), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/admin/users/"+created["id"].(string), nil, admin).Code)
}

type fakeUploader struct{ types []string }

func (f *fakeUploader) Upload(_ context.Context, filename, contentType string, r io.Reader, _ int64) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.types = append(f.types, contentType)
	return "https://cdn.example.com/" + filename, nil
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, ctype := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", ctype)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadsDisabled(t *testing.T) {
	e := newEnv(t)
	e.user("amy@realty.test", "")
	ck := e.login("amy@realty.test")

	w := postFiles(t, e.h, ck, map[string]string{"a.jpg": "image/jpeg"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Image storage is not configured", decode(t, w)["error"])
}

func postFiles(t *testing.T, h http.Handler, ck *http.Cookie, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/agent/uploads", body)
	req.Header.Set("Content-Type", ctype)
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestUploadsToStore(t *testing.T) {
	e := newEnv(t)
	up := &fakeUploader{}
	e.svc.Images = up
	e.h = NewAPIEngine(e.svc)
	e.user("amy@realty.test", "")
	ck := e.login("amy@realty.test")

	assert.Equal(t, http.StatusUnauthorized, postFiles(t, e.h, nil, map[string]string{"a.jpg": "image/jpeg"}).Code)

	w := postFiles(t, e.h, ck, map[string]string{"notes.txt": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, up.types)

	w = postFiles(t, e.h, ck, map[string]string{"a.jpg": "image/jpeg", "b.png": "image/png"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["urls"], 2)
	assert.ElementsMatch(t, []string{"image/jpeg", "image/png"}, up.types)
}
