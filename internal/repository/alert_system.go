package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sqall01/alertR/internal/models"
	"go.uber.org/zap"
)

// Options 仓库选项
// Driver: "postgres" (默认) 或 "sqlite"; Legacy: 读取旧 schema 的字段 (newestVersion, SMTP 报警级别)
type Options struct {
	Driver string
	Legacy bool
}

// AlertSystemRepository 基于 database/sql 的 Store 实现 (postgres / sqlite)
type AlertSystemRepository struct {
	db     *sql.DB
	legacy bool
	sqlite bool
	logger *zap.Logger
}

// NewAlertSystemRepository 创建仓库
func NewAlertSystemRepository(db *sql.DB, opts Options, logger *zap.Logger) *AlertSystemRepository {
	return &AlertSystemRepository{
		db:     db,
		legacy: opts.Legacy,
		sqlite: opts.Driver == "sqlite",
		logger: logger,
	}
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// rebind sqlite 使用 ? 占位符; 查询中的 $N 均按顺序出现且只出现一次
func (r *AlertSystemRepository) rebind(query string) string {
	if !r.sqlite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

func (r *AlertSystemRepository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.rebind(query), args...)
}

func (r *AlertSystemRepository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.rebind(query), args...)
}

var _ Store = (*AlertSystemRepository)(nil)

func (r *AlertSystemRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *AlertSystemRepository) Internals(ctx context.Context) ([]models.Internal, error) {
	rows, err := r.query(ctx, `SELECT type, value FROM internals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query internals: %w", err)
	}
	defer rows.Close()

	out := []models.Internal{}
	for rows.Next() {
		var it models.Internal
		if err := rows.Scan(&it.Type, &it.Value); err != nil {
			return nil, fmt.Errorf("failed to scan internal: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) Options(ctx context.Context) ([]models.Option, error) {
	rows, err := r.query(ctx, `SELECT type, value FROM options ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	out := []models.Option{}
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.Type, &o.Value); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) Profiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.query(ctx, `SELECT id, name FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	out := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ProfileID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) Nodes(ctx context.Context) ([]models.Node, error) {
	query := `SELECT id, hostname, nodeType, instance, connected, version, rev, username, persistent FROM nodes ORDER BY id`
	if r.legacy {
		query = `SELECT id, hostname, nodeType, instance, connected, version, rev, username, persistent, newestVersion, newestRev FROM nodes ORDER BY id`
	}
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	out := []models.Node{}
	for rows.Next() {
		var (
			n        models.Node
			username sql.NullString
		)
		dest := []any{&n.ID, &n.Hostname, &n.NodeType, &n.Instance, &n.Connected, &n.Version, &n.Rev, &username, &n.Persistent}
		if r.legacy {
			n.NodeUpdateInfo = &models.NodeUpdateInfo{}
			dest = append(dest, &n.NewestVersion, &n.NewestRev)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Username = username.String
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) Sensors(ctx context.Context) ([]models.Sensor, error) {
	rows, err := r.query(ctx, `
		SELECT id, clientSensorId, nodeId, description, lastStateUpdated, state, dataType, errorState, errorMsg
		FROM sensors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	defer rows.Close()

	out := []models.Sensor{}
	for rows.Next() {
		var (
			s        models.Sensor
			errorMsg sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.ClientSensorID, &s.NodeID, &s.Description, &s.LastStateUpdated,
			&s.State, &s.DataType, &s.ErrorState, &errorMsg); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		s.ErrorMsg = errorMsg.String
		s.AlertLevels = []int{}
		s.Data = models.NoData()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) SensorAlertLevels(ctx context.Context) ([]AlertLevelLink, error) {
	return r.links(ctx, "sensorsAlertLevels", "sensorId")
}

func (r *AlertSystemRepository) AlertAlertLevels(ctx context.Context) ([]AlertLevelLink, error) {
	return r.links(ctx, "alertsAlertLevels", "alertId")
}

func (r *AlertSystemRepository) SensorAlertAlertLevels(ctx context.Context) ([]AlertLevelLink, error) {
	return r.links(ctx, "sensorAlertsAlertLevels", "sensorAlertId")
}

// links 读取整张关联表, 按表中顺序返回
func (r *AlertSystemRepository) links(ctx context.Context, table, ownerColumn string) ([]AlertLevelLink, error) {
	query := fmt.Sprintf(`SELECT %s, alertLevel FROM %s ORDER BY id`, ownerColumn, table)
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := []AlertLevelLink{}
	for rows.Next() {
		var l AlertLevelLink
		if err := rows.Scan(&l.OwnerID, &l.AlertLevel); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) SensorData(ctx context.Context, sensorID int, dataType models.SensorDataType) (models.SensorData, error) {
	switch dataType {
	case models.DataTypeInt:
		return r.intData(ctx, "sensorsDataInt", "sensorId", int64(sensorID))
	case models.DataTypeFloat:
		return r.floatData(ctx, "sensorsDataFloat", "sensorId", int64(sensorID))
	case models.DataTypeGPS:
		var p models.GPSPosition
		err := r.queryRow(ctx,
			`SELECT lat, lon, utctime FROM sensorsDataGPS WHERE sensorId = $1`, sensorID,
		).Scan(&p.Lat, &p.Lon, &p.UTCTime)
		if errors.Is(err, sql.ErrNoRows) {
			return models.NoData(), nil
		}
		if err != nil {
			return models.NoData(), fmt.Errorf("failed to query sensorsDataGPS: %w", err)
		}
		return models.GPSData(p), nil
	default:
		return models.NoData(), nil
	}
}

func (r *AlertSystemRepository) SensorAlertData(ctx context.Context, sensorAlertID int64, dataType models.SensorDataType) (models.SensorData, error) {
	switch dataType {
	case models.DataTypeInt:
		return r.intData(ctx, "sensorAlertsDataInt", "sensorAlertId", sensorAlertID)
	case models.DataTypeFloat:
		return r.floatData(ctx, "sensorAlertsDataFloat", "sensorAlertId", sensorAlertID)
	default:
		return models.NoData(), nil
	}
}

func (r *AlertSystemRepository) EventData(ctx context.Context, eventID int64, dataType models.SensorDataType) (models.SensorData, error) {
	switch dataType {
	case models.DataTypeInt:
		return r.intData(ctx, "eventsDataInt", "eventId", eventID)
	case models.DataTypeFloat:
		return r.floatData(ctx, "eventsDataFloat", "eventId", eventID)
	default:
		return models.NoData(), nil
	}
}

// 缺少对应数据行时返回空值, 不报错
func (r *AlertSystemRepository) intData(ctx context.Context, table, keyColumn string, id int64) (models.SensorData, error) {
	var v int64
	query := fmt.Sprintf(`SELECT value FROM %s WHERE %s = $1`, table, keyColumn)
	err := r.queryRow(ctx, query, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("typed data row missing", zap.String("table", table), zap.Int64("id", id))
		return models.NoData(), nil
	}
	if err != nil {
		return models.NoData(), fmt.Errorf("failed to query %s: %w", table, err)
	}
	return models.IntData(v), nil
}

func (r *AlertSystemRepository) floatData(ctx context.Context, table, keyColumn string, id int64) (models.SensorData, error) {
	var v float64
	query := fmt.Sprintf(`SELECT value FROM %s WHERE %s = $1`, table, keyColumn)
	err := r.queryRow(ctx, query, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("typed data row missing", zap.String("table", table), zap.Int64("id", id))
		return models.NoData(), nil
	}
	if err != nil {
		return models.NoData(), fmt.Errorf("failed to query %s: %w", table, err)
	}
	return models.FloatData(v), nil
}

func (r *AlertSystemRepository) Alerts(ctx context.Context) ([]models.Alert, error) {
	rows, err := r.query(ctx, `SELECT id, clientAlertId, nodeId, description FROM alerts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	out := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.ClientAlertID, &a.NodeID, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.AlertLevels = []int{}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) Managers(ctx context.Context) ([]models.Manager, error) {
	rows, err := r.query(ctx, `SELECT id, nodeId, description FROM managers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query managers: %w", err)
	}
	defer rows.Close()

	out := []models.Manager{}
	for rows.Next() {
		var m models.Manager
		if err := rows.Scan(&m.ID, &m.NodeID, &m.Description); err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *AlertSystemRepository) AlertLevels(ctx context.Context) ([]models.AlertLevel, error) {
	query := `SELECT alertLevel, name, instrumentation_active FROM alertLevels ORDER BY alertLevel`
	if r.legacy {
		query = `SELECT alertLevel, name, triggerAlways, smtpActivated, toAddr FROM alertLevels ORDER BY alertLevel`
	}
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alertLevels: %w", err)
	}
	defer rows.Close()

	out := []models.AlertLevel{}
	for rows.Next() {
		var l models.AlertLevel
		if r.legacy {
			n := &models.NotificationSettings{}
			err = rows.Scan(&l.AlertLevel, &l.Name, &n.TriggerAlways, &n.SMTPActivated, &n.ToAddr)
			l.NotificationSettings = n
		} else {
			s := &models.InstrumentationSettings{Profiles: []int{}}
			err = rows.Scan(&l.AlertLevel, &l.Name, &s.InstrumentationActive)
			l.InstrumentationSettings = s
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan alertLevel: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AlertLevelProfiles 旧 schema 没有 profiles, 返回空
func (r *AlertSystemRepository) AlertLevelProfiles(ctx context.Context) ([]ProfileLink, error) {
	if r.legacy {
		return []ProfileLink{}, nil
	}
	rows, err := r.query(ctx, `SELECT alertLevel, profileId FROM alertLevelsProfiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alertLevelsProfiles: %w", err)
	}
	defer rows.Close()

	out := []ProfileLink{}
	for rows.Next() {
		var l ProfileLink
		if err := rows.Scan(&l.AlertLevel, &l.ProfileID); err != nil {
			return nil, fmt.Errorf("failed to scan alertLevelsProfiles: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SensorAlerts 按 id 倒序; rng 无效时返回全部
func (r *AlertSystemRepository) SensorAlerts(ctx context.Context, rng *Range) ([]models.SensorAlert, error) {
	query := `SELECT id, sensorId, state, description, timeReceived, dataJson, dataType FROM sensorAlerts ORDER BY id DESC`
	var args []any
	if rng.Valid() {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, rng.Number, rng.Start)
	}
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensorAlerts: %w", err)
	}
	defer rows.Close()

	out := []models.SensorAlert{}
	for rows.Next() {
		var (
			sa       models.SensorAlert
			dataJSON sql.NullString
		)
		if err := rows.Scan(&sa.ID, &sa.SensorID, &sa.State, &sa.Description, &sa.TimeReceived,
			&dataJSON, &sa.DataType); err != nil {
			return nil, fmt.Errorf("failed to scan sensorAlert: %w", err)
		}
		sa.OptionalData = dataJSON.String
		sa.AlertLevels = []int{}
		sa.Data = models.NoData()
		out = append(out, sa)
	}
	return out, rows.Err()
}

// Events 按 id 倒序; rng 无效时返回全部
func (r *AlertSystemRepository) Events(ctx context.Context, rng *Range) ([]models.Event, error) {
	query := `SELECT id, timeOccurred, type FROM events ORDER BY id DESC`
	var args []any
	if rng.Valid() {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, rng.Number, rng.Start)
	}
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	out := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.TimeOccurred, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// eventDetailBatchSize 每条 IN 查询最多绑定的 eventId 数, 低于 sqlite 和 postgres 的参数上限
const eventDetailBatchSize = 500

// EventDetails 查询某类事件的明细表, 只取 eventIDs 中的事件
// 同一 eventId 多行时保留第一行
func (r *AlertSystemRepository) EventDetails(ctx context.Context, eventType string, eventIDs []int64) (map[int64]models.EventDetail, error) {
	out := map[int64]models.EventDetail{}
	t, ok := eventDetailTables[eventType]
	if !ok || len(eventIDs) == 0 {
		return out, nil
	}

	for start := 0; start < len(eventIDs); start += eventDetailBatchSize {
		end := min(start+eventDetailBatchSize, len(eventIDs))
		if err := r.eventDetailBatch(ctx, t, eventIDs[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *AlertSystemRepository) eventDetailBatch(ctx context.Context, t eventDetailTable, eventIDs []int64, out map[int64]models.EventDetail) error {
	placeholders := make([]string, len(eventIDs))
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE eventId IN (%s) ORDER BY id`,
		t.columns, t.table, strings.Join(placeholders, ", "))

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID int64
		d, err := t.scan(rows, &eventID)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", t.table, err)
		}
		if _, exists := out[eventID]; exists {
			continue
		}
		out[eventID] = d
	}
	return rows.Err()
}
