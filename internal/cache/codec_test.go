package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRecord_RoundTrip(t *testing.T) {
	birth := testBirth()
	chart := testChart(birth)
	rec := Record{
		Fingerprint: Fingerprint(birth, chart.HouseSystem),
		Birth:       birth,
		Chart:       chart,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := EncodeRecord(rec)
	require.NoError(t, err)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestEncodeDecodeRecord_EmptyAspectsIsValid(t *testing.T) {
	birth := testBirth()
	chart := testChart(birth)
	chart.Aspects = nil

	data, err := EncodeRecord(Record{
		Fingerprint: "fp", Birth: birth, Chart: chart,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Empty(t, got.Chart.Aspects)
}

func TestEncodeRecord_RejectsChartWithoutBodies(t *testing.T) {
	birth := testBirth()
	chart := testChart(birth)
	chart.Bodies = nil

	_, err := EncodeRecord(Record{Fingerprint: "fp", Birth: birth, Chart: chart})
	assert.ErrorContains(t, err, "no celestial bodies")
}

func TestEncodeRecord_RejectsChartWithWrongHouseCount(t *testing.T) {
	birth := testBirth()
	chart := testChart(birth)
	chart.Houses = chart.Houses[:11]

	_, err := EncodeRecord(Record{Fingerprint: "fp", Birth: birth, Chart: chart})
	assert.ErrorContains(t, err, "11 houses")
}

func TestDecodeRecord_RejectsCorruptPayload(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"chart":`))
	assert.ErrorContains(t, err, "decode chart record")
}

func TestDecodeRecord_RejectsValidJSONInvalidChart(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"fingerprint":"fp","chart":{"id":"x"}}`))
	assert.ErrorContains(t, err, "no celestial bodies")
}
