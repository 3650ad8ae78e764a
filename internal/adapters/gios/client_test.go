package gios

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/giosaqi/internal/ports"
)

const stationsJSON = `[
  {"id":114,"stationName":"Wrocław - Bartnicza","gegrLat":"51.115933","gegrLon":"17.141125","city":{"id":1064,"name":"Wrocław"},"addressStreet":"ul. Bartnicza"},
  {"id":117,"stationName":"Wrocław - Korzeniowskiego","gegrLat":"51.129378","gegrLon":"17.029250","city":{"id":1064,"name":"Wrocław"},"addressStreet":null}
]`

const sensorsJSON = `[
  {"id":642,"stationId":114,"param":{"paramName":"dwutlenek azotu","paramFormula":"NO2","paramCode":"NO2","idParam":6}},
  {"stationId":114,"param":{"paramName":"pył zawieszony PM10","paramFormula":"PM10","paramCode":"PM10","idParam":3}}
]`

const dataJSON = `{"key":"NO2","values":[{"date":"2024-03-01 12:00:00","value":null},{"date":"2024-03-01 11:00:00","value":21.7}]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/station/findAll", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(stationsJSON))
	})
	mux.HandleFunc("/station/sensors/114", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sensorsJSON))
	})
	mux.HandleFunc("/data/getData/642", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(dataJSON))
	})
	mux.HandleFunc("/data/getData/bad", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientStation(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL+"/"))

	st, err := c.Station(context.Background(), " 117 ")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Wrocław - Korzeniowskiego", st.Name)
	assert.Equal(t, "Wrocław", st.City.Name)

	missing, err := c.Station(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClientSensors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL))

	sensors, err := c.Sensors(context.Background(), "114")
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	require.NotNil(t, sensors[0].ID)
	assert.EqualValues(t, 642, *sensors[0].ID)
	assert.Equal(t, "NO2", sensors[0].Param.Code)
	assert.Nil(t, sensors[1].ID, "sensor without id must decode to nil")

	none, err := c.Sensors(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestClientSensorData(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL))

	id := int64(642)
	series, err := c.SensorData(context.Background(), &id)
	require.NoError(t, err)
	require.NotNil(t, series)
	assert.Equal(t, "NO2", series.Key)
	require.Len(t, series.Values, 2)
	assert.Nil(t, series.Values[0].Value)

	absent, err := c.SensorData(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestClientDecodeErrorIsNotTransient(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL))

	_, err := c.getJSON(context.Background(), "getData", "/data/getData/bad", &struct{}{})
	require.Error(t, err)
	assert.False(t, ports.IsTransient(err))
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Sensors(context.Background(), "114")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrTimeout), "got %v", err)
}

func TestClientConnectivityFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(nil, WithBaseURL(url))
	_, err := c.Station(context.Background(), "114")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrConnectivity), "got %v", err)
}

func TestClientCallerCancellationIsNotTransient(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Station(ctx, "114")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, ports.IsTransient(err))
}
