package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

type stubClient struct {
	series *domain.Series
	err    error
	calls  int
	lastID *int64
}

func (c *stubClient) Station(context.Context, string) (*domain.Station, error) { return nil, nil }
func (c *stubClient) Sensors(context.Context, string) ([]domain.SensorInfo, error) {
	return nil, nil
}
func (c *stubClient) SensorData(_ context.Context, id *int64) (*domain.Series, error) {
	c.calls++
	c.lastID = id
	return c.series, c.err
}

func f(v float64) *float64 { return &v }

func id(v int64) *int64 { return &v }

var station = domain.Station{ID: 114, Name: "Wrocław - Bartnicza"}

func pm10(sensorID *int64) domain.SensorInfo {
	return domain.SensorInfo{
		ID:        sensorID,
		StationID: 114,
		Param:     domain.Param{Name: "pył zawieszony PM10", Formula: "PM10", Code: "PM10", ID: 3},
	}
}

func TestSensorStaticProperties(t *testing.T) {
	s := New(&stubClient{}, pm10(id(92)), station)

	assert.Equal(t, "Wrocław - Bartnicza PM10", s.Name())
	assert.Equal(t, "µg/m3", s.Unit())
	assert.Equal(t, "mdi:cloud", s.Icon())

	uid, ok := s.UniqueID()
	assert.True(t, ok)
	assert.Equal(t, "92", uid)

	_, ok = s.State()
	assert.False(t, ok, "fresh sensor has no reading")
	assert.Equal(t, StateUnknown, s.StateString())
}

func TestSensorRefreshAdoptsFirstNonNull(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{
		{Date: "2024-03-01 12:00:00", Value: nil},
		{Date: "2024-03-01 11:00:00", Value: f(3.14)},
		{Date: "2024-03-01 10:00:00", Value: f(2.0)},
	}}}
	s := New(client, pm10(id(92)), station)

	require.NoError(t, s.Refresh(context.Background()))

	v, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, 3.1, v)
	assert.Equal(t, "3.1", s.StateString())
	assert.Equal(t, "2024-03-01 11:00:00", s.Attributes()["last_update"])
	assert.EqualValues(t, 92, *client.lastID)
	assert.False(t, s.LastRefresh().IsZero())
}

func TestSensorRefreshEmptySeriesIsUnknown(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{{Value: f(10)}}}}
	s := New(client, pm10(id(92)), station)
	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, "10.0", s.StateString())

	client.series = &domain.Series{}
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, StateUnknown, s.StateString())

	client.series = nil
	require.NoError(t, s.Refresh(context.Background()))
	assert.Nil(t, s.Reading())
}

func TestSensorRefreshAllNullSeriesKeepsReading(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{
		{Date: "2024-03-01 11:00:00", Value: f(12.34)},
	}}}
	s := New(client, pm10(id(92)), station)
	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, "12.3", s.StateString())
	first := s.LastRefresh()

	client.series = &domain.Series{Values: []domain.Reading{
		{Date: "2024-03-01 13:00:00"},
		{Date: "2024-03-01 12:00:00"},
	}}
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, "12.3", s.StateString())
	require.NotNil(t, s.Reading())
	assert.Equal(t, "2024-03-01 11:00:00", s.Reading().Date)
	assert.False(t, s.LastRefresh().Before(first))
}

func TestRound1HalfCases(t *testing.T) {
	cases := map[float64]float64{
		0.15:  0.1,
		0.25:  0.2,
		2.25:  2.2,
		3.14:  3.1,
		42.26: 42.3,
		18.96: 19.0,
		-0.15: -0.1,
	}
	for in, want := range cases {
		assert.Equal(t, want, round1(in), "round1(%v)", in)
	}
}

func TestSensorRefreshTimeoutClearsState(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{{Value: f(42.26)}}}}
	s := New(client, pm10(id(92)), station)
	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, "42.3", s.StateString())

	client.series = nil
	client.err = &ports.ClientError{Kind: ports.FailureTimeout, Op: "getData", Err: context.DeadlineExceeded}

	assert.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, StateUnknown, s.StateString())
}

func TestSensorRefreshNonTransientKeepsState(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{{Value: f(7.77)}}}}
	s := New(client, pm10(id(92)), station)
	require.NoError(t, s.Refresh(context.Background()))

	decodeErr := errors.New("invalid character '<'")
	client.err = decodeErr
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, decodeErr)
	assert.Equal(t, "7.8", s.StateString())
}

func TestSensorWithoutIDStillFetches(t *testing.T) {
	client := &stubClient{}
	s := New(client, pm10(nil), station)

	_, ok := s.UniqueID()
	assert.False(t, ok)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, client.calls)
	assert.Nil(t, client.lastID)
	assert.Equal(t, StateUnknown, s.StateString())
	assert.Empty(t, s.Describe().UniqueID)
}

func TestSensorSample(t *testing.T) {
	client := &stubClient{series: &domain.Series{Values: []domain.Reading{
		{Date: "2024-01-15 13:00:00", Value: f(18.96)},
	}}}
	s := New(client, pm10(id(92)), station)

	unknown := s.Sample(1)
	assert.False(t, unknown.Valid)
	assert.Equal(t, "92", unknown.SensorID)

	require.NoError(t, s.Refresh(context.Background()))
	smp := s.Sample(2)
	assert.True(t, smp.Valid)
	assert.Equal(t, 19.0, smp.Value)
	assert.EqualValues(t, 2, smp.Seq)
	assert.EqualValues(t, 114, smp.StationID)
	assert.Equal(t, "PM10", smp.ParamCode)
	assert.Equal(t, "µg/m3", smp.Unit)
	assert.Equal(t, 12, smp.Timestamp.UTC().Hour())

	noID := New(client, pm10(nil), station)
	assert.Equal(t, "Wrocław - Bartnicza PM10", noID.Sample(1).SensorID)
}
