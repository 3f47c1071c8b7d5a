package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SensorDataType 传感器数据类型, 与数据库 dataType 列一致
type SensorDataType int

const (
	DataTypeNone  SensorDataType = 0
	DataTypeInt   SensorDataType = 1
	DataTypeFloat SensorDataType = 2
	DataTypeGPS   SensorDataType = 3
)

func (t SensorDataType) String() string {
	switch t {
	case DataTypeNone:
		return "none"
	case DataTypeInt:
		return "int"
	case DataTypeFloat:
		return "float"
	case DataTypeGPS:
		return "gps"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// GPSPosition GPS 数据
type GPSPosition struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	UTCTime int64   `json:"utctime"`
}

// SensorData 带类型的传感器数据值 (None | Int | Float | GPS)
// 在数据访问层解析一次, 之后只通过方法读取
type SensorData struct {
	kind SensorDataType
	i    int64
	f    float64
	gps  GPSPosition
}

func NoData() SensorData { return SensorData{kind: DataTypeNone} }
func IntData(v int64) SensorData { return SensorData{kind: DataTypeInt, i: v} }
func FloatData(v float64) SensorData { return SensorData{kind: DataTypeFloat, f: v} }
func GPSData(p GPSPosition) SensorData { return SensorData{kind: DataTypeGPS, gps: p} }
func (d SensorData) Type() SensorDataType { return d.kind }

func (d SensorData) Int() (int64, bool) { return d.i, d.kind == DataTypeInt }
func (d SensorData) Float() (float64, bool) { return d.f, d.kind == DataTypeFloat }
func (d SensorData) GPS() (GPSPosition, bool) { return d.gps, d.kind == DataTypeGPS }
func (d SensorData) IsNone() bool { return d.kind == DataTypeNone }

// As 按声明的 dataType 修正解码结果 (JSON 数字无法区分 1 和 1.0)
func (d SensorData) As(t SensorDataType) SensorData {
	switch {
	case t == DataTypeFloat && d.kind == DataTypeInt:
		return FloatData(float64(d.i))
	case t == DataTypeInt && d.kind == DataTypeFloat:
		return IntData(int64(d.f))
	case t == DataTypeNone:
		return NoData()
	}
	return d
}

// String 用于表格显示
func (d SensorData) String() string {
	switch d.kind {
	case DataTypeInt:
		return strconv.FormatInt(d.i, 10)
	case DataTypeFloat:
		return strconv.FormatFloat(d.f, 'f', -1, 64)
	case DataTypeGPS:
		return fmt.Sprintf("%s, %s",
			strconv.FormatFloat(d.gps.Lat, 'f', -1, 64),
			strconv.FormatFloat(d.gps.Lon, 'f', -1, 64))
	default:
		return ""
	}
}

// MarshalJSON None 编码为 ""
func (d SensorData) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case DataTypeInt:
		return []byte(strconv.FormatInt(d.i, 10)), nil
	case DataTypeFloat:
		return json.Marshal(d.f)
	case DataTypeGPS:
		return json.Marshal(d.gps)
	default:
		return []byte(`""`), nil
	}
}

func (d *SensorData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte(`""`)):
		*d = NoData()
		return nil
	case b[0] == '{':
		var p GPSPosition
		if err := json.Unmarshal(b, &p); err != nil {
			return fmt.Errorf("failed to decode gps data: %w", err)
		}
		*d = GPSData(p)
		return nil
	}

	if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*d = IntData(i)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid sensor data %s", string(b))
	}
	*d = FloatData(f)
	return nil
}
