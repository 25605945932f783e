package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-gateway/internal/handler"
	authHandler "github.com/medibook/booking-gateway/internal/handler/auth"
	bookingHandler "github.com/medibook/booking-gateway/internal/handler/booking"
	catalogHandler "github.com/medibook/booking-gateway/internal/handler/catalog"
	hcsHandler "github.com/medibook/booking-gateway/internal/handler/hcs"
	notificationHandler "github.com/medibook/booking-gateway/internal/handler/notification"
	slotcheckHandler "github.com/medibook/booking-gateway/internal/handler/slotcheck"
	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/router"
	availabilityService "github.com/medibook/booking-gateway/internal/service/availability"
	bookingflowService "github.com/medibook/booking-gateway/internal/service/bookingflow"
	catalogService "github.com/medibook/booking-gateway/internal/service/catalog"
	notificationService "github.com/medibook/booking-gateway/internal/service/notification"
	sessionService "github.com/medibook/booking-gateway/internal/service/session"
	slotcheckService "github.com/medibook/booking-gateway/internal/service/slotcheck"
	"github.com/medibook/booking-gateway/internal/upstream/rest"
)

const sharedSecret = "integration-secret"

// backendStub mimics the booking platform API surface the gateway consumes.
func backendStub(t *testing.T) *httptest.Server {
	t.Helper()

	write := func(w http.ResponseWriter, status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    data,
		})
	}

	signToken := func(role string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "u-" + role,
			"role": role,
			"exp":  time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(sharedSecret))
		require.NoError(t, err)
		return token
	}

	testPayload := map[string]interface{}{
		"id":       "t1",
		"title":    "CBC",
		"type":     "Blood Test",
		"price":    30,
		"duration": 15,
		"hcsPricing": []map[string]interface{}{
			{"hcs": "h-approved", "price": 25, "status": "approved"},
			{"hcs": "h-pending", "price": 20, "status": "pending"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		role := "customer"
		if strings.HasPrefix(req.Email, "admin@") {
			role = "hcs_admin"
		}
		write(w, http.StatusOK, map[string]interface{}{
			"token": signToken(role),
			"user": map[string]interface{}{
				"id":    "u-" + role,
				"email": req.Email,
				"phone": "+15550100",
				"role":  role,
				"hcs":   "h-approved",
			},
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{
			"id":    "u-customer",
			"phone": "+15550100",
			"role":  "customer",
		})
	})
	mux.HandleFunc("GET /tests", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, []interface{}{testPayload})
	})
	mux.HandleFunc("GET /tests/t1", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, testPayload)
	})
	mux.HandleFunc("GET /hcs/h-approved/availability", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"total": 10, "booked": 7})
	})
	mux.HandleFunc("GET /hcs/availability", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"total": 40, "booked": 10})
	})
	mux.HandleFunc("POST /bookings", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		req["id"] = "b1"
		req["status"] = "pending"
		write(w, http.StatusCreated, req)
	})

	return httptest.NewServer(mux)
}

func newGateway(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := rest.NewClient(rest.Config{BaseURL: backendURL, Timeout: 2 * time.Second}, nil)

	ttl := time.Hour
	sessions := sessionService.NewService(sessionService.NewMemoryStore(ttl), client, sharedSecret, ttl, nil)
	notifications := notificationService.NewService(ttl, nil)
	resolver := availabilityService.NewService(client)
	catalog := catalogService.NewService(client)
	slotcheck := slotcheckService.NewService(resolver, ttl)
	flow := bookingflowService.NewService(client, client, client, resolver, notifications, ttl, nil)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(sessions),
		authHandler.NewHandler(sessions, client),
		catalogHandler.NewHandler(catalog),
		slotcheckHandler.NewHandler(slotcheck),
		bookingHandler.NewHandler(flow, client),
		hcsHandler.NewHandler(client, client),
		notificationHandler.NewHandler(notifications),
		handler.NewHandler(),
		router.Config{
			RateLimit:     rate.Limit(1000),
			RateBurst:     1000,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "gateway_test",
		},
	)
	r.Setup()
	return r.Engine()
}

type testResponse struct {
	Code    int
	Success bool
	Message string
	Data    map[string]interface{}
	Raw     json.RawMessage
}

func makeRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}, token string) testResponse {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())

	resp := testResponse{
		Code:    w.Code,
		Success: envelope.Success,
		Message: envelope.Message,
		Raw:     envelope.Data,
	}
	if len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		_ = json.Unmarshal(envelope.Data, &resp.Data)
	}
	return resp
}

func login(t *testing.T, engine *gin.Engine, email string) string {
	t.Helper()
	resp := makeRequest(t, engine, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "pw",
	}, "")
	require.True(t, resp.Success, resp.Message)
	sessionID, _ := resp.Data["session_id"].(string)
	require.NotEmpty(t, sessionID)
	return sessionID
}

func TestLoginAndSessionRoundTrip(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	token := login(t, engine, "customer@example.com")

	resp := makeRequest(t, engine, http.MethodGet, "/auth/session", nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "u-customer", resp.Data["id"])
}

func TestCatalogFiltersByCenterWithEffectivePrice(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	token := login(t, engine, "customer@example.com")

	resp := makeRequest(t, engine, http.MethodGet, "/tests?center=h-approved&sort=price_asc", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)

	inner, ok := resp.Data["data"].([]interface{})
	require.True(t, ok, string(resp.Raw))
	require.Len(t, inner, 1)
	item := inner[0].(map[string]interface{})
	assert.Equal(t, "CBC", item["title"])
	assert.Equal(t, 25.0, item["effective_price"])
}

func TestBookingWizardEndToEnd(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	token := login(t, engine, "customer@example.com")

	opened := makeRequest(t, engine, http.MethodPost, "/booking-wizard", map[string]string{"test": "t1"}, token)
	require.Equal(t, http.StatusCreated, opened.Code, opened.Message)
	wizardID, _ := opened.Data["id"].(string)
	require.NotEmpty(t, wizardID)
	assert.Equal(t, "test_selected", opened.Data["state"])

	selected := makeRequest(t, engine, http.MethodPut, "/booking-wizard/"+wizardID+"/center",
		map[string]string{"hcs": "h-approved"}, token)
	require.Equal(t, http.StatusOK, selected.Code, selected.Message)
	assert.Equal(t, "selecting_date", selected.Data["state"])

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	scheduled := makeRequest(t, engine, http.MethodPut, "/booking-wizard/"+wizardID+"/schedule",
		map[string]string{"scheduled_at": scheduledAt}, token)
	require.Equal(t, http.StatusOK, scheduled.Code, scheduled.Message)
	assert.Equal(t, "ready_to_book", scheduled.Data["state"])

	confirmed := makeRequest(t, engine, http.MethodPost, "/booking-wizard/"+wizardID+"/confirm", nil, token)
	require.Equal(t, http.StatusCreated, confirmed.Code, confirmed.Message)
	assert.Equal(t, "b1", confirmed.Data["id"])

	// A confirmation notification is waiting on the next poll.
	notes := makeRequest(t, engine, http.MethodGet, "/notifications", nil, token)
	require.Equal(t, http.StatusOK, notes.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(notes.Raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "success", items[0]["level"])
}

func TestWizardRejectsUnapprovedCenter(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	token := login(t, engine, "customer@example.com")

	opened := makeRequest(t, engine, http.MethodPost, "/booking-wizard", map[string]string{"test": "t1"}, token)
	require.Equal(t, http.StatusCreated, opened.Code)
	wizardID := opened.Data["id"].(string)

	resp := makeRequest(t, engine, http.MethodPut, "/booking-wizard/"+wizardID+"/center",
		map[string]string{"hcs": "h-pending"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, resp.Success)
}

func TestSlotCheckerForCenterStaff(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	token := login(t, engine, "admin@center.example")

	resp := makeRequest(t, engine, http.MethodPut, "/slot-check",
		map[string]string{"center": "h-approved"}, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)

	result, ok := resp.Data["result"].(map[string]interface{})
	require.True(t, ok, string(resp.Raw))
	assert.Equal(t, 3.0, result["available"])
	assert.Equal(t, 70.0, result["booked_percent"])
}

func TestRoleGating(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	customer := login(t, engine, "customer@example.com")
	admin := login(t, engine, "admin@center.example")

	// Customers have no slot checker.
	resp := makeRequest(t, engine, http.MethodGet, "/slot-check", nil, customer)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Center staff cannot drive the booking wizard.
	resp = makeRequest(t, engine, http.MethodPost, "/booking-wizard", map[string]string{"test": "t1"}, admin)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Assignment review is superadmin only.
	resp = makeRequest(t, engine, http.MethodGet, "/hcs/assignment-requests", nil, admin)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	backend := backendStub(t)
	defer backend.Close()
	engine := newGateway(t, backend.URL)

	resp := makeRequest(t, engine, http.MethodGet, "/tests", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
