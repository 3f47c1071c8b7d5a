package dashboard

import (
	"fmt"

	"github.com/sqall01/alertR/internal/aggregator"
	"github.com/sqall01/alertR/internal/models"
	"github.com/sqall01/alertR/internal/repository"
)

// View dashboard 页面
type View string

const (
	ViewOverview     View = "overview"
	ViewNodes        View = "nodes"
	ViewSensors      View = "sensors"
	ViewAlerts       View = "alerts"
	ViewManagers     View = "managers"
	ViewSensorAlerts View = "sensorAlerts"
	ViewAlertLevels  View = "alertLevels"
	ViewEvents       View = "events"
)

// Views 菜单顺序
var Views = []View{
	ViewOverview,
	ViewNodes,
	ViewSensors,
	ViewAlerts,
	ViewManagers,
	ViewSensorAlerts,
	ViewAlertLevels,
	ViewEvents,
}

// ParseView 未知名称返回错误
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Settings 客户端参数
type Settings struct {
	SensorAlertsNumber  int
	OverviewAlertsCount int
	EventsNumber        int
	Legacy              bool
}

// DefaultSettings 与网页版一致
func DefaultSettings() Settings {
	return Settings{SensorAlertsNumber: 50, OverviewAlertsCount: 10, EventsNumber: 50}
}

// RequiredCategories 页面需要的分类
func (s Settings) RequiredCategories(v View) []models.Category {
	base := []models.Category{models.CategoryInternals, models.CategoryOptions}
	if !s.Legacy {
		base = append(base, models.CategoryProfiles)
	}

	var extra []models.Category
	switch v {
	case ViewOverview:
		extra = []models.Category{models.CategoryNodes, models.CategorySensors, models.CategorySensorAlerts}
	case ViewNodes:
		extra = []models.Category{models.CategoryNodes}
	case ViewSensors:
		extra = []models.Category{models.CategoryNodes, models.CategorySensors, models.CategoryAlertLevels}
	case ViewAlerts:
		extra = []models.Category{models.CategoryNodes, models.CategoryAlerts, models.CategoryAlertLevels}
	case ViewManagers:
		extra = []models.Category{models.CategoryNodes, models.CategoryManagers}
	case ViewSensorAlerts:
		extra = []models.Category{models.CategorySensors, models.CategorySensorAlerts, models.CategoryAlertLevels}
	case ViewAlertLevels:
		extra = []models.Category{models.CategoryAlertLevels}
	case ViewEvents:
		extra = []models.Category{models.CategoryEvents}
	}
	return append(base, extra...)
}

// PageSize 分页页面请求的行数, 非分页页面返回 0
func (s Settings) PageSize(v View) int {
	switch v {
	case ViewOverview:
		return s.OverviewAlertsCount
	case ViewSensorAlerts:
		return s.SensorAlertsNumber
	case ViewEvents:
		return s.EventsNumber
	}
	return 0
}

// RequestFor 页面对应的聚合请求
func (s Settings) RequestFor(v View) aggregator.Request {
	req := aggregator.Request{Categories: s.RequiredCategories(v)}
	switch v {
	case ViewOverview, ViewSensorAlerts:
		req.SensorAlertsRange = &repository.Range{Start: 0, Number: s.PageSize(v)}
	case ViewEvents:
		req.EventsRange = &repository.Range{Start: 0, Number: s.PageSize(v)}
	}
	return req
}
