package badge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestBadgeHandlersCreateGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO badges`).
		WithArgs(pgxmock.AnyArg(), "KGP", 28, 28, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	mock.ExpectQuery(`SELECT id, name, required_poi_count`).
		WithArgs("badge-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "required_poi_count", "total_poi_count", "start_date", "end_date", "is_fully_achieved", "verified_date", "created_at"}).
			AddRow("badge-1", "KGP", 28, 28, nil, nil, false, nil, createdAt))

	app := fiber.New()
	RegisterRoutes(app.Group("/badges"), NewService(mock, nil))

	body, _ := json.Marshal(Badge{Name: "KGP", RequiredPOICount: 28, TotalPOICount: 28})
	req := httptest.NewRequest(http.MethodPost, "/badges/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create badge status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/badges/badge-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get badge status: %v", err)
	}
}

func TestBadgeHandlersValidationStatus(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/badges"), NewService(nil, nil))

	body, _ := json.Marshal(Badge{Name: "", RequiredPOICount: 5, TotalPOICount: 10})
	req := httptest.NewRequest(http.MethodPost, "/badges/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for invalid badge, got %d", resp.StatusCode)
	}
}

func TestBadgeHandlersVerifyConflict(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, required_poi_count`).
		WithArgs("badge-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "required_poi_count", "total_poi_count", "start_date", "end_date", "is_fully_achieved", "verified_date", "created_at"}).
			AddRow("badge-1", "KGP", 28, 28, nil, nil, false, nil, time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/badges"), NewService(mock, nil))

	req := httptest.NewRequest(http.MethodPost, "/badges/badge-1/verify", bytes.NewReader([]byte(`{"date":"2024-05-01"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict for unachieved badge, got %d", resp.StatusCode)
	}
}

func TestBadgeHandlersRequirementBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/badges"), NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/badges/badge-1/requirements", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request when poi_id missing")
	}
}
