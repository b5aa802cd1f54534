package horizonapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func f(v float64) *float64 { return &v }

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testRequest() domain.ProviderRequest {
	return domain.ProviderRequest{
		Year: 1990, Month: 3, Day: 25,
		Hour: 14, Minute: 30, Second: 0,
		TimezoneID:     "Europe/Kyiv",
		UTCOffsetHours: 2.0,
		Coordinate:     &domain.Coordinate{Lat: 50.4501, Lon: 30.5234},
		HouseSystem:    domain.HousePlacidus,
	}
}

func TestClient_FetchChart_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/western/natal-chart", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1990, req.Year)
		assert.Equal(t, 3, req.Month)
		assert.Equal(t, 25, req.Day)
		assert.Equal(t, 14, req.Hour)
		assert.Equal(t, 30, req.Minute)
		assert.Equal(t, 2.0, req.Tzone)
		assert.Equal(t, 50.4501, req.Lat)
		assert.Equal(t, "placidus", req.HouseSystem)

		resp := wireResponse{
			Planets: []wirePlanet{
				{Name: "Sun", FullDegree: f(4.5), Speed: 0.985, IsRetro: "false", House: 7},
				{Name: "True Node", FullDegree: f(47.12), Speed: -0.05, IsRetro: "TRUE", House: 9},
			},
			Houses: []wireHouse{
				{House: "First House", Degree: f(165.0)},
				{House: "Second House", Degree: f(195.0)},
			},
			Ascendant: f(165.0),
			Midheaven: f(75.0),
			Aspects: []wireAspect{
				{AspectingPlanet: "Sun", AspectedPlanet: "True Node", Type: "Trine", Orb: 3.7},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	raw, err := c.FetchChart(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, raw.Bodies, 2)
	assert.Equal(t, "Sun", raw.Bodies[0].Name)
	require.NotNil(t, raw.Bodies[0].Longitude)
	assert.Equal(t, 4.5, *raw.Bodies[0].Longitude)
	assert.Equal(t, "TRUE", raw.Bodies[1].Retrograde)
	assert.Equal(t, 9, raw.Bodies[1].House)

	require.Len(t, raw.Houses, 2)
	assert.Equal(t, "First House", raw.Houses[0].Label)
	assert.Equal(t, 165.0, *raw.Houses[0].Longitude)

	require.Len(t, raw.Angles, 2)
	assert.Equal(t, "Ascendant", raw.Angles[0].Name)
	assert.Equal(t, "Midheaven", raw.Angles[1].Name)
	assert.Equal(t, 75.0, raw.Angles[1].Longitude)

	require.Len(t, raw.Aspects, 1)
	assert.Equal(t, "Trine", raw.Aspects[0].Type)
	assert.Nil(t, raw.Aspects[0].Applying)
}

func TestClient_FetchChart_MissingCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request should leave the process without a coordinate")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	req := testRequest()
	req.Coordinate = nil

	c := testClient(srv.URL)
	_, err := c.FetchChart(context.Background(), req)

	var mcErr *domain.MissingCoordinateError
	assert.ErrorAs(t, err, &mcErr)
}

func TestClient_FetchChart_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchChart(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_FetchChart_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"planets": [`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchChart(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_FetchChart_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.FetchChart(context.Background(), testRequest())
	require.Error(t, err)
}

func TestWireResponse_ToRawChart_AbsentAngles(t *testing.T) {
	raw := wireResponse{
		Planets: []wirePlanet{{Name: "Sun", FullDegree: f(10)}},
	}.toRawChart()

	assert.Empty(t, raw.Angles)
	assert.Empty(t, raw.Houses)
	assert.Empty(t, raw.Aspects)
}
