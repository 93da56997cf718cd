package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/config"
	"github.com/iliyamo/library-seat-booking/internal/utils"
)

const secret = "mw-secret"

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireRole("admin"))
	g.GET("/who", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c)+"/"+Role(c))
	})
	return e
}

func call(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	now := time.Now()
	admin, err := utils.NewAccessToken(secret, "A1", "admin", time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	student, _ := utils.NewAccessToken(secret, "U1", "student", time.Hour, now)
	expired, _ := utils.NewAccessToken(secret, "A1", "admin", time.Minute, now.Add(-time.Hour))
	forged, _ := utils.NewAccessToken("other-secret", "A1", "admin", time.Hour, now)

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"admin", admin.Token, http.StatusOK, "A1/admin"},
		{"student forbidden", student.Token, http.StatusForbidden, "forbidden"},
		{"missing", "", http.StatusUnauthorized, "missing bearer token"},
		{"expired", expired.Token, http.StatusUnauthorized, "invalid token"},
		{"wrong secret", forged.Token, http.StatusUnauthorized, "invalid token"},
		{"garbage", "abc.def", http.StatusUnauthorized, "invalid token"},
	}
	e := protected()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, tt.token)
			if rec.Code != tt.status || !strings.Contains(rec.Body.String(), tt.body) {
				t.Fatalf("got %d %q, want %d containing %q", rec.Code, rec.Body.String(), tt.status, tt.body)
			}
		})
	}
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "x") },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "x" || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("got %d %q cache=%q", rec.Code, rec.Body.String(), rec.Header().Get("X-Cache"))
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/bookings")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.7"},
		{"user", "rl:user:anon"},
		{"route", "rl:route:POST /v1/bookings"},
		{"", "rl:ip:10.0.0.7:user:anon:route:POST /v1/bookings"},
	}
	for _, tt := range tests {
		if got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c); got != tt.want {
			t.Errorf("rateKey(%q) = %q, want %q", tt.strategy, got, tt.want)
		}
	}
	c.Set(CtxUserID, "U1")
	if got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c); got != "rl:user:U1" {
		t.Errorf("rateKey(user) = %q", got)
	}
}

func TestCacheKeyVariesByCaller(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	mk := func(user string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/seats?shift=morning", nil), httptest.NewRecorder())
		c.SetPath("/v1/seats")
		if user != "" {
			c.Set(CtxUserID, user)
		}
		return cacheKey(cfg, c)
	}
	if mk("U1") == mk("U2") || mk("U1") != mk("U1") {
		t.Fatal("cache key must be stable per caller and differ between callers")
	}
	if !strings.HasPrefix(mk(""), "cache:") {
		t.Fatalf("key %q lacks prefix", mk(""))
	}
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Fatalf("decoded %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload accepted")
	}
}

func TestAsInt64(t *testing.T) {
	for _, v := range []interface{}{int64(3), 3, float64(3), "3"} {
		if asInt64(v) != 3 {
			t.Errorf("asInt64(%#v) != 3", v)
		}
	}
	if asInt64(nil) != 0 {
		t.Error("asInt64(nil) != 0")
	}
}
