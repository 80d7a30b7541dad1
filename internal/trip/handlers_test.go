package trip

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

func newApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/trips"), svc)
	return app
}

func TestTripHandlersCreate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(pgxmock.AnyArg(), "Tatry Zachodnie", pgxmock.AnyArg(), "dwudniowa pętla").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := newApp(NewService(mock))
	req := httptest.NewRequest(http.MethodPost, "/trips/",
		bytes.NewReader([]byte(`{"name":"Tatry Zachodnie","trip_date":"2023-07-15","description":"dwudniowa pętla"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create trip status: %v %d", err, resp.StatusCode)
	}
}

func TestTripHandlersBadDate(t *testing.T) {
	app := newApp(NewService(nil))
	req := httptest.NewRequest(http.MethodPost, "/trips/",
		bytes.NewReader([]byte(`{"name":"Tatry","trip_date":"July"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for unparseable date")
	}
}

func TestTripHandlersUploadSegment(t *testing.T) {
	gpxData := gpxTrack([]float64{500, 600, 550})

	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO trip_segments`).
		WithArgs(pgxmock.AnyArg(), "trip-1", 1, "#c0392b", pgxmock.AnyArg(), gpxData).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	expectSegmentLoad(mock, segmentRows(map[int][]byte{1: gpxData}))
	mock.ExpectExec(`UPDATE trips`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "trip-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	app := newApp(NewService(mock))
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/segments?sequence=1&color=%23c0392b",
		bytes.NewReader(gpxData))
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload segment status: %v %d", err, resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripHandlersUploadBrokenSegment(t *testing.T) {
	app := newApp(NewService(nil))
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/segments?sequence=1",
		bytes.NewReader([]byte("not a gpx file")))
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for broken gpx, got %d", resp.StatusCode)
	}
}

func TestTripHandlersProfile(t *testing.T) {
	mock := newMock(t)
	expectSegmentLoad(mock, segmentRows(map[int][]byte{1: gpxTrack([]float64{500, 600})}))

	app := newApp(NewService(mock))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/trips/trip-1/profile", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status: %v", err)
	}

	var series []ProfileSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if len(series) != 1 || len(series[0].Data) != 2 {
		t.Fatalf("unexpected profile payload: %+v", series)
	}
}

func TestTripHandlersRecalculate(t *testing.T) {
	mock := newMock(t)
	expectSegmentLoad(mock, segmentRows(nil))
	mock.ExpectExec(`UPDATE trips`).
		WithArgs(float64(0), float64(0), 0, float64(0), "trip-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	app := newApp(NewService(mock))
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/trips/trip-1/recalculate", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("recalculate status: %v", err)
	}
}
