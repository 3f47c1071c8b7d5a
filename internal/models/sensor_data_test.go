package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorData_MarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		data SensorData
		want string
	}{
		{"none", NoData(), `""`},
		{"int", IntData(42), `42`},
		{"float", FloatData(21.5), `21.5`},
		{"gps", GPSData(GPSPosition{Lat: 52.5, Lon: 13.4, UTCTime: 1700000000}), `{"lat":52.5,"lon":13.4,"utctime":1700000000}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.data)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}

func TestSensorData_UnmarshalAndCoerce(t *testing.T) {
	var d SensorData
	require.NoError(t, json.Unmarshal([]byte(`20`), &d))
	assert.Equal(t, DataTypeInt, d.Type())

	// FLOAT 传感器值恰好为整数
	f, ok := d.As(DataTypeFloat).Float()
	assert.True(t, ok)
	assert.Equal(t, 20.0, f)

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsNone())

	require.NoError(t, json.Unmarshal([]byte(`{"lat":1.5,"lon":2,"utctime":3}`), &d))
	p, ok := d.GPS()
	assert.True(t, ok)
	assert.Equal(t, 1.5, p.Lat)
	assert.Equal(t, "1.5, 2", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &d))
}

func TestSensorData_String(t *testing.T) {
	assert.Equal(t, "", NoData().String())
	assert.Equal(t, "-3", IntData(-3).String())
	assert.Equal(t, "0.25", FloatData(0.25).String())
	assert.Equal(t, "int", DataTypeInt.String())
	assert.Equal(t, "unknown(9)", SensorDataType(9).String())
}
