package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/bites/api"
	"github.com/jacentio/bites/catalog"
	"github.com/jacentio/bites/store"
	"github.com/jacentio/bites/weather"
)

// --- Test Helpers ---

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Message string           `json:"message"`
	Error   string           `json:"error"`
	Fields  []api.FieldIssue `json:"fields"`
}

type sourceFunc func(ctx context.Context, at weather.Coordinates) ([]byte, error)

func (f sourceFunc) Fetch(ctx context.Context, at weather.Coordinates) ([]byte, error) {
	return f(ctx, at)
}

type testServer struct {
	handler http.Handler
	mr      *miniredis.Miniredis
	store   *store.Store
}

func newTestServer(t *testing.T, source weather.Source) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	s := store.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), store.DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })

	if source == nil {
		source = sourceFunc(func(context.Context, weather.Coordinates) ([]byte, error) {
			return []byte(`{"main":{"temp":71.2}}`), nil
		})
	}
	svc := catalog.New(s, catalog.Options{
		Weather: weather.NewReader(s.Weather(), source, 0, nil),
	})
	return &testServer{
		handler: api.New(svc, s.Ping, api.Options{MaxPageLimit: 50}),
		mr:      mr,
		store:   s,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func (ts *testServer) createRestaurant(t *testing.T, name string, cuisines ...string) catalog.Restaurant {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"name":     name,
		"location": "-73.9,40.7",
		"cuisines": cuisines,
	})
	require.NoError(t, err)

	code, env := ts.do(t, http.MethodPost, "/restaurants", string(body))
	require.Equal(t, http.StatusCreated, code, "error: %s", env.Error)

	var r catalog.Restaurant
	require.NoError(t, json.Unmarshal(env.Data, &r))
	return r
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// --- Restaurant Tests ---

func TestCreateAndGetRestaurant(t *testing.T) {
	ts := newTestServer(t, nil)

	created := ts.createRestaurant(t, "Pasta Place", "italian")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"italian"}, created.Cuisines)

	code, env := ts.do(t, http.MethodGet, "/restaurants/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	got := decode[catalog.Restaurant](t, env.Data)
	assert.Equal(t, "Pasta Place", got.Name)
	assert.Equal(t, int64(1), got.ViewCount)
	assert.Equal(t, 0.0, got.AvgStars)
}

func TestCreateRestaurant_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"empty body", "", []string{"body"}},
		{"malformed", "{", []string{"body"}},
		{"missing everything", "{}", []string{"name", "location", "cuisines"}},
		{"blank cuisine", `{"name":"a","location":"1,2","cuisines":["thai"," "]}`, []string{"cuisines[1]"}},
		{"unparseable location", `{"name":"a","location":"abc","cuisines":["thai"]}`, []string{"location"}},
		{"location out of range", `{"name":"a","location":"200,10","cuisines":["thai"]}`, []string{"location"}},
		{"location not a number", `{"name":"a","location":"NaN,NaN","cuisines":["thai"]}`, []string{"location"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := ts.do(t, http.MethodPost, "/restaurants", tt.body)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			var fields []string
			for _, f := range env.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}

	n, err := ts.store.Ranking().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "invalid input must not write")
}

func TestGetRestaurant_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	code, env := ts.do(t, http.MethodGet, "/restaurants/missing", "")

	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "not found")
}

func TestListRestaurants_Pagination(t *testing.T) {
	ts := newTestServer(t, nil)
	for i := range 25 {
		ts.createRestaurant(t, fmt.Sprintf("R%02d", i), "thai")
	}

	tests := []struct {
		query    string
		wantCode int
		wantLen  int
	}{
		{"", http.StatusOK, 10},
		{"?page=3", http.StatusOK, 5},
		{"?page=4", http.StatusOK, 0},
		{"?page=9223372036854775807", http.StatusOK, 0},
		{"?page=9223372036854775807&limit=100", http.StatusOK, 0},
		{"?limit=200", http.StatusOK, 25},
		{"?page=0", http.StatusBadRequest, 0},
		{"?limit=-1", http.StatusBadRequest, 0},
		{"?page=two", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, env := ts.do(t, http.MethodGet, "/restaurants"+tt.query, "")

			require.Equal(t, tt.wantCode, code, "error: %s", env.Error)
			if code == http.StatusOK {
				assert.Len(t, decode[[]catalog.Restaurant](t, env.Data), tt.wantLen)
			}
		})
	}
}

// --- Review Tests ---

func TestReviews_Lifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	r := ts.createRestaurant(t, "Pasta Place", "italian")
	base := "/restaurants/" + r.ID + "/reviews"

	code, env := ts.do(t, http.MethodPost, base, `{"rating":4,"text":"good"}`)
	require.Equal(t, http.StatusCreated, code, "error: %s", env.Error)
	first := decode[catalog.Review](t, env.Data)
	assert.Equal(t, r.ID, first.RestaurantID)
	assert.NotZero(t, first.Timestamp)

	code, env = ts.do(t, http.MethodPost, base, `{"rating":5,"text":"great"}`)
	require.Equal(t, http.StatusCreated, code)
	second := decode[catalog.Review](t, env.Data)

	_, env = ts.do(t, http.MethodGet, "/restaurants/"+r.ID, "")
	assert.Equal(t, 4.5, decode[catalog.Restaurant](t, env.Data).AvgStars)

	code, env = ts.do(t, http.MethodGet, base+"?limit=1", "")
	require.Equal(t, http.StatusOK, code)
	listed := decode[[]catalog.Review](t, env.Data)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	code, env = ts.do(t, http.MethodDelete, base+"/"+second.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{first.ID}, decode[[]string](t, env.Data))

	code, _ = ts.do(t, http.MethodDelete, base+"/"+second.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	_, env = ts.do(t, http.MethodGet, "/restaurants/"+r.ID, "")
	assert.Equal(t, 4.0, decode[catalog.Restaurant](t, env.Data).AvgStars)
}

func TestAddReview_Validation(t *testing.T) {
	ts := newTestServer(t, nil)
	r := ts.createRestaurant(t, "A", "thai")

	tests := []struct {
		name string
		body string
	}{
		{"missing rating", `{"text":"x"}`},
		{"rating too low", `{"rating":0,"text":"x"}`},
		{"rating too high", `{"rating":6,"text":"x"}`},
		{"missing text", `{"rating":3}`},
		{"rating not a number", `{"rating":"five","text":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := ts.do(t, http.MethodPost, "/restaurants/"+r.ID+"/reviews", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, env.Fields)
		})
	}
}

func TestAddReview_UnknownRestaurant(t *testing.T) {
	ts := newTestServer(t, nil)

	code, _ := ts.do(t, http.MethodPost, "/restaurants/missing/reviews", `{"rating":3,"text":"x"}`)

	assert.Equal(t, http.StatusNotFound, code)
}

// --- Cuisine Tests ---

func TestCuisines(t *testing.T) {
	ts := newTestServer(t, nil)
	a := ts.createRestaurant(t, "A", "thai", "indian")
	ts.createRestaurant(t, "B", "greek")

	code, env := ts.do(t, http.MethodGet, "/cuisines", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"greek", "indian", "thai"}, decode[[]string](t, env.Data))

	code, env = ts.do(t, http.MethodGet, "/cuisines/indian", "")
	require.Equal(t, http.StatusOK, code)
	got := decode[[]catalog.Restaurant](t, env.Data)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

// --- Weather Tests ---

func TestWeather(t *testing.T) {
	ts := newTestServer(t, nil)
	r := ts.createRestaurant(t, "A", "thai")

	code, env := ts.do(t, http.MethodGet, "/restaurants/"+r.ID+"/weather", "")

	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"main":{"temp":71.2}}`, string(env.Data))
}

func TestWeather_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t, sourceFunc(func(context.Context, weather.Coordinates) ([]byte, error) {
		return nil, fmt.Errorf("%w: status 401", weather.ErrUpstream)
	}))
	r := ts.createRestaurant(t, "A", "thai")

	code, env := ts.do(t, http.MethodGet, "/restaurants/"+r.ID+"/weather", "")

	assert.Equal(t, http.StatusBadGateway, code)
	assert.NotContains(t, env.Error, "401")
}

// --- Failure Tests ---

func TestStoreFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mr.SetError("ERR simulated failure")

	code, env := ts.do(t, http.MethodGet, "/cuisines", "")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", env.Error)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)

	code, _ := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)

	ts.mr.SetError("ERR simulated failure")
	code, env := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, env.Success)
}

func TestValidationError(t *testing.T) {
	err := error(&api.ValidationError{Fields: []api.FieldIssue{
		{Field: "name", Message: "required"},
		{Field: "rating", Message: "must be between 1 and 5"},
	}})

	var verr *api.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid request: name: required; rating: must be between 1 and 5", err.Error())
}
