package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneheat/zoneheat/internal/auth"
	"github.com/zoneheat/zoneheat/internal/classifier"
	"github.com/zoneheat/zoneheat/internal/datastore"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/zone"
)

// fakeService records calls and returns canned values.
type fakeService struct {
	occupancy []zone.Occupancy
	exhibits  []datastore.Exhibit
	result    classifier.Result
	err       error
	lastZone  string
	lastCount int
	lastNames []string
	lastID    uint
	lastCap   auth.Capability
	lastQuery string
}

func (f *fakeService) GetOccupancy(context.Context) ([]zone.Occupancy, error) {
	return f.occupancy, f.err
}

func (f *fakeService) Snapshot(context.Context) (zone.Snapshot, error) {
	return zone.Default().Snapshot(f.occupancy), f.err
}

func (f *fakeService) SetOccupancy(_ context.Context, zoneID string, visitors int) error {
	f.lastZone, f.lastCount = zoneID, visitors
	return f.err
}

func (f *fakeService) GetExhibits(_ context.Context, zoneID string) ([]datastore.Exhibit, error) {
	f.lastZone = zoneID
	return f.exhibits, f.err
}

func (f *fakeService) ReplaceExhibits(_ context.Context, c auth.Capability, zoneID string, names []string) ([]datastore.Exhibit, error) {
	f.lastCap, f.lastZone, f.lastNames = c, zoneID, names
	return f.exhibits, f.err
}

func (f *fakeService) AddExhibit(_ context.Context, c auth.Capability, zoneID, name string) (*datastore.Exhibit, error) {
	f.lastCap, f.lastZone, f.lastNames = c, zoneID, []string{name}
	if f.err != nil {
		return nil, f.err
	}
	return &datastore.Exhibit{ID: 42, Zone: zoneID, Name: name}, nil
}

func (f *fakeService) RemoveExhibit(_ context.Context, c auth.Capability, zoneID string, id uint) error {
	f.lastCap, f.lastZone, f.lastID = c, zoneID, id
	return f.err
}

func (f *fakeService) ClassifyInterest(_ context.Context, query string) (classifier.Result, error) {
	f.lastQuery = query
	return f.result, f.err
}

func newTestEcho(t *testing.T, svc Service) *echo.Echo {
	t.Helper()
	c, err := New(svc, WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)))
	require.NoError(t, err)
	e := echo.New()
	// Every request is a curator unless a test says otherwise.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			r := ctx.Request()
			if r.Header.Get("X-Test-Anonymous") == "" {
				ctx.SetRequest(r.WithContext(auth.WithCapability(r.Context(), auth.Curator("test"))))
			}
			return next(ctx)
		}
	})
	c.RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.ValidationError("bad"), http.StatusBadRequest},
		{"forbidden", auth.RequireCurator(auth.None(), "op"), http.StatusForbidden},
		{"not found", errors.NotFoundError("exhibit", "1"), http.StatusNotFound},
		{"database", errors.Newf("db down").Category(errors.CategoryDatabase).Build(), http.StatusServiceUnavailable},
		{"invariant", errors.InvariantError("cap"), http.StatusInternalServerError},
		{"plain", errors.NewStd("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestListOccupancy(t *testing.T) {
	t.Parallel()
	svc := &fakeService{occupancy: []zone.Occupancy{{ZoneID: "zone1", Visitors: 4}, {ZoneID: "zone2", Visitors: 0}}}
	rec := do(t, newTestEcho(t, svc), http.MethodGet, "/api/zones", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"zone_id":"zone1","current_visitors":4},{"zone_id":"zone2","current_visitors":0}]`, rec.Body.String())
}

func TestListOccupancy_Empty(t *testing.T) {
	t.Parallel()
	rec := do(t, newTestEcho(t, &fakeService{}), http.MethodGet, "/api/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListOccupancy_StorageError(t *testing.T) {
	t.Parallel()
	svc := &fakeService{err: errors.Newf("connection refused 10.0.0.5").Category(errors.CategoryDatabase).Build()}
	rec := do(t, newTestEcho(t, svc), http.MethodGet, "/api/zones", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Database error", body.Error, "internal cause not exposed")
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
	assert.NotEmpty(t, body.CorrelationID)
}

func TestLoadSnapshot(t *testing.T) {
	t.Parallel()
	svc := &fakeService{occupancy: []zone.Occupancy{{ZoneID: "zone6", Visitors: 9}}}
	rec := do(t, newTestEcho(t, svc), http.MethodGet, "/api/zones/load", "")

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[map[string]any](t, rec)
	zones, ok := snap["zones"].([]any)
	require.True(t, ok)
	require.Len(t, zones, 8)
	z6 := zones[5].(map[string]any)
	assert.Equal(t, "zone6", z6["zone_id"])
	assert.Equal(t, float64(60), z6["percent"])
	assert.Equal(t, "high", z6["band"])
	assert.Equal(t, "#ffaaa5", z6["color"])
}

func TestUpdateOccupancy(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zones/zone3", `{"visitors":12}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, "zone3", svc.lastZone)
		assert.Equal(t, 12, svc.lastCount)
	})

	t.Run("missing visitors", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/zones/zone3", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non integer", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/zones/zone3", `{"visitors":"lots"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service validation", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{err: errors.ValidationError("visitor count must not be negative")}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zones/zone3", `{"visitors":-1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Error, "negative")
	})
}

func TestGetZoneInfo(t *testing.T) {
	t.Parallel()
	svc := &fakeService{exhibits: []datastore.Exhibit{{ID: 3, Zone: "zone8", Name: "Latte art"}}}
	rec := do(t, newTestEcho(t, svc), http.MethodGet, "/api/zone-info/zone8", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"zone":"zone8","exhibitions":[{"id":3,"exhibition_name":"Latte art"}]}`, rec.Body.String())
}

func TestGetZoneInfo_EmptyIsArray(t *testing.T) {
	t.Parallel()
	rec := do(t, newTestEcho(t, &fakeService{}), http.MethodGet, "/api/zone-info/zone2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"zone":"zone2","exhibitions":[]}`, rec.Body.String())
}

func TestReplaceZoneInfo(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{exhibits: []datastore.Exhibit{{ID: 7, Name: "A"}, {ID: 8, Name: "B"}}}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zone-info/zone2", `{"exhibitions":["A","B"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"zone":"zone2","exhibitions":[{"id":7,"exhibition_name":"A"},{"id":8,"exhibition_name":"B"}]}`, rec.Body.String())
		assert.Equal(t, []string{"A", "B"}, svc.lastNames)
		assert.True(t, svc.lastCap.CanCurate())
	})

	t.Run("empty list allowed", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zone-info/zone2", `{"exhibitions":[]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, svc.lastNames)
		assert.Empty(t, svc.lastNames)
	})

	t.Run("missing array", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/zone-info/zone2", `{"names":["A"]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "exhibitions array must be provided", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("not strings", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/zone-info/zone2", `{"exhibitions":[1,2]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{err: auth.RequireCurator(auth.None(), "replace_exhibits")}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zone-info/zone2", `{"exhibitions":["A"]}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAddExhibit(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/zone-info/zone5/exhibit", `{"exhibitName":"Vertical farm"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"exhibition":{"id":42,"exhibition_name":"Vertical farm"}}`, rec.Body.String())
		assert.Equal(t, "zone5", svc.lastZone)
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/zone-info/zone5/exhibit", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "exhibitName is required", decode[ErrorResponse](t, rec).Error)
	})
}

func TestDeleteExhibit(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{}
		rec := do(t, newTestEcho(t, svc), http.MethodDelete, "/api/zone-info/zone1/exhibit/17", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"deletedId":17}`, rec.Body.String())
		assert.Equal(t, uint(17), svc.lastID)
		assert.Equal(t, "zone1", svc.lastZone)
	})

	t.Run("bad id", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodDelete, "/api/zone-info/zone1/exhibit/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{err: errors.NotFoundError("exhibit", "17")}
		rec := do(t, newTestEcho(t, svc), http.MethodDelete, "/api/zone-info/zone1/exhibit/17", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("anonymous capability passed through", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{}
		req := httptest.NewRequest(http.MethodDelete, "/api/zone-info/zone1/exhibit/5", http.NoBody)
		req.Header.Set("X-Test-Anonymous", "1")
		rec := httptest.NewRecorder()
		newTestEcho(t, svc).ServeHTTP(rec, req)
		assert.False(t, svc.lastCap.CanCurate())
	})
}

func TestSearchZone(t *testing.T) {
	t.Parallel()

	t.Run("primary omits note", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{result: classifier.Result{ZoneLabel: "zone4 - gaming zone", ZoneID: "zone4", Source: classifier.SourcePrimary}}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/search-zone", `{"query":"arcade"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"zone":"zone4 - gaming zone","zone_id":"zone4"}`, rec.Body.String())
		assert.Equal(t, "arcade", svc.lastQuery)
	})

	t.Run("fallback carries note", func(t *testing.T) {
		t.Parallel()
		svc := &fakeService{result: classifier.Result{ZoneLabel: "zone8 - Smart Cafe", ZoneID: "zone8", Source: classifier.SourceFallbackEmpty}}
		rec := do(t, newTestEcho(t, svc), http.MethodPost, "/api/search-zone", `{"query":"coffee"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fallback-empty", decode[searchResponse](t, rec).Note)
	})

	t.Run("missing query", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/search-zone", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Query string required", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("non string query", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestEcho(t, &fakeService{}), http.MethodPost, "/api/search-zone", `{"query":5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRootAndHealth(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, &fakeService{})
	rec := do(t, e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend is running!", rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])
}

func TestHealth_Unavailable(t *testing.T) {
	t.Parallel()

	c, err := New(&fakeService{},
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)),
		WithHealthCheck(func(context.Context) error { return errors.NewStd("db gone") }))
	require.NoError(t, err)
	e := echo.New()
	c.RegisterRoutes(e)

	rec := do(t, e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "unavailable", body["database"])
}

func TestNew_NilService(t *testing.T) {
	t.Parallel()
	_, err := New(nil)
	require.Error(t, err)
}
