package repository

import (
	"context"

	"github.com/sqall01/alertR/internal/models"
)

// Range 分页参数, 按 id 倒序取 [Start, Start+Number)
type Range struct {
	Start  int
	Number int
}

// Valid start >= 0 且 number > 0
func (r *Range) Valid() bool {
	return r != nil && r.Start >= 0 && r.Number > 0
}

// AlertLevelLink 关联表中的一行 (owner -> alertLevel), 保持表中的插入顺序
type AlertLevelLink struct {
	OwnerID    int64
	AlertLevel int
}

// ProfileLink alertLevelsProfiles 中的一行
type ProfileLink struct {
	AlertLevel int
	ProfileID  int
}

// Store alertR 数据库的只读访问
// 返回的实体尚未关联 alertLevels / data, 由 aggregator 负责组装
type Store interface {
	Internals(ctx context.Context) ([]models.Internal, error)
	Options(ctx context.Context) ([]models.Option, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
	Nodes(ctx context.Context) ([]models.Node, error)

	Sensors(ctx context.Context) ([]models.Sensor, error)
	SensorAlertLevels(ctx context.Context) ([]AlertLevelLink, error)
	SensorData(ctx context.Context, sensorID int, dataType models.SensorDataType) (models.SensorData, error)

	Alerts(ctx context.Context) ([]models.Alert, error)
	AlertAlertLevels(ctx context.Context) ([]AlertLevelLink, error)

	Managers(ctx context.Context) ([]models.Manager, error)

	AlertLevels(ctx context.Context) ([]models.AlertLevel, error)
	AlertLevelProfiles(ctx context.Context) ([]ProfileLink, error)

	SensorAlerts(ctx context.Context, rng *Range) ([]models.SensorAlert, error)
	SensorAlertAlertLevels(ctx context.Context) ([]AlertLevelLink, error)
	SensorAlertData(ctx context.Context, sensorAlertID int64, dataType models.SensorDataType) (models.SensorData, error)

	Events(ctx context.Context, rng *Range) ([]models.Event, error)
	EventDetails(ctx context.Context, eventType string, eventIDs []int64) (map[int64]models.EventDetail, error)
	EventData(ctx context.Context, eventID int64, dataType models.SensorDataType) (models.SensorData, error)

	Ping(ctx context.Context) error
}
