package aggregator

import (
	"context"
	"fmt"

	"github.com/sqall01/alertR/internal/models"
	"github.com/sqall01/alertR/internal/repository"
	"go.uber.org/zap"
)

// Aggregator 按请求的分类读取数据并组装成一个响应
// 任一分类读取失败则整个请求失败, 不返回部分结果
type Aggregator struct {
	store  repository.Store
	logger *zap.Logger
}

// NewAggregator 创建聚合器
func NewAggregator(store repository.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// Aggregate 组装请求的所有分类
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*models.Response, error) {
	resp := &models.Response{}
	for _, c := range req.Categories {
		if err := a.resolve(ctx, c, req, resp); err != nil {
			return nil, fmt.Errorf("failed to aggregate %s: %w", c, err)
		}
	}

	a.logger.Debug("Aggregated response",
		zap.Int("categories", len(req.Categories)),
		zap.Int("sensors", len(resp.Sensors)),
		zap.Int("sensor_alerts", len(resp.SensorAlerts)),
		zap.Int("events", len(resp.Events)),
	)
	return resp, nil
}

func (a *Aggregator) resolve(ctx context.Context, c models.Category, req Request, resp *models.Response) error {
	var err error
	switch c {
	case models.CategoryInternals:
		resp.Internals, err = a.store.Internals(ctx)
	case models.CategoryOptions:
		resp.Options, err = a.store.Options(ctx)
	case models.CategoryProfiles:
		resp.Profiles, err = a.store.Profiles(ctx)
	case models.CategoryNodes:
		resp.Nodes, err = a.store.Nodes(ctx)
	case models.CategoryManagers:
		resp.Managers, err = a.store.Managers(ctx)
	case models.CategorySensors:
		resp.Sensors, err = a.sensors(ctx)
	case models.CategoryAlerts:
		resp.Alerts, err = a.alerts(ctx)
	case models.CategorySensorAlerts:
		resp.SensorAlerts, err = a.sensorAlerts(ctx, req.SensorAlertsRange)
	case models.CategoryAlertLevels:
		resp.AlertLevels, err = a.alertLevels(ctx)
	case models.CategoryEvents:
		resp.Events, err = a.events(ctx, req.EventsRange)
	}
	return err
}

func (a *Aggregator) sensors(ctx context.Context) ([]models.Sensor, error) {
	sensors, err := a.store.Sensors(ctx)
	if err != nil {
		return nil, err
	}
	links, err := a.store.SensorAlertLevels(ctx)
	if err != nil {
		return nil, err
	}
	levels := groupAlertLevels(links)

	for i := range sensors {
		s := &sensors[i]
		s.AlertLevels = levelsFor(levels, int64(s.ID))
		if s.Data, err = a.store.SensorData(ctx, s.ID, s.DataType); err != nil {
			return nil, err
		}
	}
	return sensors, nil
}

func (a *Aggregator) alerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := a.store.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	links, err := a.store.AlertAlertLevels(ctx)
	if err != nil {
		return nil, err
	}
	levels := groupAlertLevels(links)

	for i := range alerts {
		alerts[i].AlertLevels = levelsFor(levels, int64(alerts[i].ID))
	}
	return alerts, nil
}

func (a *Aggregator) sensorAlerts(ctx context.Context, rng *repository.Range) ([]models.SensorAlert, error) {
	sensorAlerts, err := a.store.SensorAlerts(ctx, rng)
	if err != nil {
		return nil, err
	}
	links, err := a.store.SensorAlertAlertLevels(ctx)
	if err != nil {
		return nil, err
	}
	levels := groupAlertLevels(links)

	for i := range sensorAlerts {
		sa := &sensorAlerts[i]
		sa.AlertLevels = levelsFor(levels, sa.ID)
		if sa.Data, err = a.store.SensorAlertData(ctx, sa.ID, sa.DataType); err != nil {
			return nil, err
		}
	}
	return sensorAlerts, nil
}

func (a *Aggregator) alertLevels(ctx context.Context) ([]models.AlertLevel, error) {
	alertLevels, err := a.store.AlertLevels(ctx)
	if err != nil {
		return nil, err
	}
	links, err := a.store.AlertLevelProfiles(ctx)
	if err != nil {
		return nil, err
	}

	profiles := map[int][]int{}
	for _, l := range links {
		profiles[l.AlertLevel] = append(profiles[l.AlertLevel], l.ProfileID)
	}
	for i := range alertLevels {
		if s := alertLevels[i].InstrumentationSettings; s != nil {
			s.Profiles = append([]int{}, profiles[alertLevels[i].AlertLevel]...)
		}
	}
	return alertLevels, nil
}

// events 只查询本页事件的明细; 未知类型或缺少明细的事件只保留 id/timeOccurred/type
func (a *Aggregator) events(ctx context.Context, rng *repository.Range) ([]models.Event, error) {
	events, err := a.store.Events(ctx, rng)
	if err != nil {
		return nil, err
	}

	idsByType := map[string][]int64{}
	for _, e := range events {
		idsByType[e.Type] = append(idsByType[e.Type], e.ID)
	}

	details := map[string]map[int64]models.EventDetail{}
	for _, typ := range repository.EventDetailTypes {
		ids, ok := idsByType[typ]
		if !ok {
			continue
		}
		if details[typ], err = a.store.EventDetails(ctx, typ, ids); err != nil {
			return nil, err
		}
	}

	for i := range events {
		e := &events[i]
		d, ok := details[e.Type][e.ID]
		if !ok {
			continue
		}
		switch v := d.(type) {
		case *models.SensorAlertEvent:
			if v.Data, err = a.store.EventData(ctx, e.ID, v.DataType); err != nil {
				return nil, err
			}
		case *models.StateChangeEvent:
			if v.Data, err = a.store.EventData(ctx, e.ID, v.DataType); err != nil {
				return nil, err
			}
		}
		e.Detail = d
	}
	return events, nil
}

// groupAlertLevels 按 owner 分组, 保持关联表中的顺序
func groupAlertLevels(links []repository.AlertLevelLink) map[int64][]int {
	out := make(map[int64][]int)
	for _, l := range links {
		out[l.OwnerID] = append(out[l.OwnerID], l.AlertLevel)
	}
	return out
}

func levelsFor(levels map[int64][]int, id int64) []int {
	if l, ok := levels[id]; ok {
		return l
	}
	return []int{}
}
