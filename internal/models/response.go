package models

import (
	"encoding/json"
	"strings"
)

// Category 可请求的数据分类
type Category string

const (
	CategoryInternals    Category = "internals"
	CategoryOptions      Category = "options"
	CategoryProfiles     Category = "profiles"
	CategoryNodes        Category = "nodes"
	CategorySensors      Category = "sensors"
	CategoryAlerts       Category = "alerts"
	CategoryManagers     Category = "managers"
	CategorySensorAlerts Category = "sensorAlerts"
	CategoryAlertLevels  Category = "alertLevels"
	CategoryEvents       Category = "events"
)

// AllCategories 固定顺序
var AllCategories = []Category{
	CategoryInternals,
	CategoryOptions,
	CategoryProfiles,
	CategoryNodes,
	CategorySensors,
	CategoryAlerts,
	CategoryManagers,
	CategorySensorAlerts,
	CategoryAlertLevels,
	CategoryEvents,
}

// ParseCategory 大小写不敏感, 未知名称返回 false
func ParseCategory(name string) (Category, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, c := range AllCategories {
		if strings.ToUpper(string(c)) == upper {
			return c, true
		}
	}
	return "", false
}

// Response 聚合查询结果; nil 切片表示未请求该分类, 编码时省略
// 请求了但没有数据的分类为空切片, 编码为 []
type Response struct {
	Internals    []Internal    `json:"internals"`
	Options      []Option      `json:"options"`
	Profiles     []Profile     `json:"profiles"`
	Nodes        []Node        `json:"nodes"`
	Sensors      []Sensor      `json:"sensors"`
	Alerts       []Alert       `json:"alerts"`
	Managers     []Manager     `json:"managers"`
	SensorAlerts []SensorAlert `json:"sensorAlerts"`
	AlertLevels  []AlertLevel  `json:"alertLevels"`
	Events       []Event       `json:"events"`
}

// Has 响应中是否包含该分类
func (r *Response) Has(c Category) bool {
	if r == nil {
		return false
	}
	switch c {
	case CategoryInternals:
		return r.Internals != nil
	case CategoryOptions:
		return r.Options != nil
	case CategoryProfiles:
		return r.Profiles != nil
	case CategoryNodes:
		return r.Nodes != nil
	case CategorySensors:
		return r.Sensors != nil
	case CategoryAlerts:
		return r.Alerts != nil
	case CategoryManagers:
		return r.Managers != nil
	case CategorySensorAlerts:
		return r.SensorAlerts != nil
	case CategoryAlertLevels:
		return r.AlertLevels != nil
	case CategoryEvents:
		return r.Events != nil
	}
	return false
}

// Merge 把 other 中出现的分类覆盖到 r
func (r *Response) Merge(other *Response) {
	if other == nil {
		return
	}
	if other.Internals != nil {
		r.Internals = other.Internals
	}
	if other.Options != nil {
		r.Options = other.Options
	}
	if other.Profiles != nil {
		r.Profiles = other.Profiles
	}
	if other.Nodes != nil {
		r.Nodes = other.Nodes
	}
	if other.Sensors != nil {
		r.Sensors = other.Sensors
	}
	if other.Alerts != nil {
		r.Alerts = other.Alerts
	}
	if other.Managers != nil {
		r.Managers = other.Managers
	}
	if other.SensorAlerts != nil {
		r.SensorAlerts = other.SensorAlerts
	}
	if other.AlertLevels != nil {
		r.AlertLevels = other.AlertLevels
	}
	if other.Events != nil {
		r.Events = other.Events
	}
}

// Categories 响应中出现的分类
func (r *Response) Categories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if r.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r Response) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(AllCategories))
	if r.Internals != nil {
		m[string(CategoryInternals)] = r.Internals
	}
	if r.Options != nil {
		m[string(CategoryOptions)] = r.Options
	}
	if r.Profiles != nil {
		m[string(CategoryProfiles)] = r.Profiles
	}
	if r.Nodes != nil {
		m[string(CategoryNodes)] = r.Nodes
	}
	if r.Sensors != nil {
		m[string(CategorySensors)] = r.Sensors
	}
	if r.Alerts != nil {
		m[string(CategoryAlerts)] = r.Alerts
	}
	if r.Managers != nil {
		m[string(CategoryManagers)] = r.Managers
	}
	if r.SensorAlerts != nil {
		m[string(CategorySensorAlerts)] = r.SensorAlerts
	}
	if r.AlertLevels != nil {
		m[string(CategoryAlertLevels)] = r.AlertLevels
	}
	if r.Events != nil {
		m[string(CategoryEvents)] = r.Events
	}
	return json.Marshal(m)
}

// Normalize 按 dataType 修正解码后的数据值
func (r *Response) Normalize() {
	for i := range r.Sensors {
		r.Sensors[i].Data = r.Sensors[i].Data.As(r.Sensors[i].DataType)
	}
	for i := range r.SensorAlerts {
		r.SensorAlerts[i].Data = r.SensorAlerts[i].Data.As(r.SensorAlerts[i].DataType)
	}
}
