package visit

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestVisitHandlersCreate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO visits`).
		WithArgs(pgxmock.AnyArg(), "poi-1", date("2023-06-01"), "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/visits"), NewService(mock, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/visits/",
		bytes.NewReader([]byte(`{"poi_id":"poi-1","visit_date":"2023-06-01"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create visit status: %v %d", err, resp.StatusCode)
	}
}

func TestVisitHandlersBadDate(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/visits"), NewService(nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/visits/",
		bytes.NewReader([]byte(`{"poi_id":"poi-1","visit_date":"June 1st"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for unparseable date")
	}
}

func TestVisitHandlersFutureDate(t *testing.T) {
	app := fiber.New()
	svc := NewService(nil, nil, nil)
	svc.now = func() time.Time { return date("2023-06-15") }
	RegisterRoutes(app.Group("/visits"), svc)

	req := httptest.NewRequest(http.MethodPost, "/visits/",
		bytes.NewReader([]byte(`{"poi_id":"poi-1","visit_date":"2030-01-01"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for future date")
	}
}

func TestVisitHandlersListForPOI(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, poi_id, visit_date, description, created_at`).
		WithArgs("poi-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "poi_id", "visit_date", "description", "created_at"}).
			AddRow("visit-1", "poi-1", date("2023-06-01"), "", time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/visits"), NewService(mock, nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/visits/poi/poi-1", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list visits status: %v", err)
	}
}
