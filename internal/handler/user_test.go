package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/store"
)

func newTestAPI(t *testing.T) (*echo.Echo, *store.Store) {
	t.Helper()
	e := echo.New()
	s := store.New(nil, 10)

	users := NewUserHandler(s)
	seats := NewSeatHandler(s)
	stats := NewStatsHandler(s)

	e.POST("/v1/users", users.Register)
	e.GET("/v1/users", users.List)
	e.GET("/v1/users/:id", users.Get)
	e.GET("/v1/users/:id/logs", users.Logs)
	e.PATCH("/v1/users/:id", users.Update)
	e.PATCH("/v1/users/:id/fee", users.SetFee)
	e.PATCH("/v1/users/:id/slot", users.ChangeSlot)
	e.DELETE("/v1/users/:id", users.Delete)
	e.GET("/v1/seats", seats.Grid)
	e.GET("/v1/seats/availability", seats.Availability)
	e.GET("/v1/stats", stats.Get)
	return e, s
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"9999900000","seat_number":3,"slot":"Morning"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var u model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if u.FeeStatus != model.FeeDue {
		t.Errorf("fee status = %q, want due", u.FeeStatus)
	}
	if u.SeatNumber == nil || *u.SeatNumber != 3 {
		t.Errorf("seat = %v, want 3", u.SeatNumber)
	}
}

func TestRegisterEndpointErrorTaxonomy(t *testing.T) {
	e, _ := newTestAPI(t)

	ok := doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"1","seat_number":3,"slot":"Morning"}`)
	if ok.Code != http.StatusCreated {
		t.Fatalf("setup registration failed: %d %s", ok.Code, ok.Body)
	}

	cases := []struct {
		name string
		body string
		want int
	}{
		{"seat conflict", `{"name":"B","phone":"2","seat_number":3,"slot":"Morning"}`, http.StatusConflict},
		{"unknown slot", `{"name":"B","phone":"2","seat_number":4,"slot":"Night"}`, http.StatusBadRequest},
		{"seat out of range", `{"name":"B","phone":"2","seat_number":99,"slot":"Morning"}`, http.StatusBadRequest},
		{"missing name", `{"phone":"2","seat_number":4,"slot":"Morning"}`, http.StatusBadRequest},
		{"cross-slot same seat", `{"name":"B","phone":"2","seat_number":3,"slot":"Evening"}`, http.StatusCreated},
	}
	for _, c := range cases {
		rec := doJSON(e, http.MethodPost, "/v1/users", c.body)
		if rec.Code != c.want {
			t.Errorf("%s: status = %d, want %d (%s)", c.name, rec.Code, c.want, rec.Body)
		}
	}
}

func TestFeeEndpoint(t *testing.T) {
	e, s := newTestAPI(t)
	rec := doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"1","seat_number":1,"slot":"Morning"}`)
	var u model.User
	_ = json.Unmarshal(rec.Body.Bytes(), &u)

	paid := doJSON(e, http.MethodPatch, "/v1/users/1/fee", `{"status":"paid"}`)
	if paid.Code != http.StatusOK {
		t.Fatalf("paid: status = %d: %s", paid.Code, paid.Body)
	}
	got, err := s.User(u.ID)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got.FeeStatus != model.FeePaid {
		t.Errorf("fee = %q, want paid", got.FeeStatus)
	}

	if rec := doJSON(e, http.MethodPatch, "/v1/users/1/fee", `{"status":"due"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("due via API: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(e, http.MethodPatch, "/v1/users/404/fee", `{"status":"paid"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: status = %d, want 404", rec.Code)
	}
}

func TestDeleteEndpointFreesSeat(t *testing.T) {
	e, s := newTestAPI(t)
	doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"1","seat_number":6,"slot":"Morning"}`)

	if rec := doJSON(e, http.MethodDelete, "/v1/users/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if len(s.Users()) != 0 {
		t.Errorf("users = %d, want 0", len(s.Users()))
	}
	if rec := doJSON(e, http.MethodDelete, "/v1/users/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: status = %d, want 404", rec.Code)
	}
}

func TestSeatGridEndpoint(t *testing.T) {
	e, _ := newTestAPI(t)
	doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"1","seat_number":1,"slot":"Morning"}`)

	rec := doJSON(e, http.MethodGet, "/v1/seats?slot=Morning&page=1&page_size=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("grid: status = %d: %s", rec.Code, rec.Body)
	}
	var page store.GridPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decoding grid: %v", err)
	}
	if len(page.Seats) != 5 || page.TotalSeats != 10 {
		t.Errorf("grid = %d seats of %d, want 5 of 10", len(page.Seats), page.TotalSeats)
	}
	if page.Seats[0].Status != model.SeatDue {
		t.Errorf("seat 1 = %q, want due", page.Seats[0].Status)
	}

	if rec := doJSON(e, http.MethodGet, "/v1/seats", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing slot: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/v1/seats?slot=Night", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown slot: status = %d, want 400", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	e, _ := newTestAPI(t)
	doJSON(e, http.MethodPost, "/v1/users",
		`{"name":"Asha","phone":"1","seat_number":1,"slot":"Morning"}`)

	rec := doJSON(e, http.MethodGet, "/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", rec.Code)
	}
	var st store.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if st.TotalUsers != 1 {
		t.Errorf("total users = %d, want 1", st.TotalUsers)
	}
	if st.AvailableBySlot["Morning"] != 9 {
		t.Errorf("Morning available = %d, want 9", st.AvailableBySlot["Morning"])
	}
}
