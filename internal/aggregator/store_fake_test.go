package aggregator_test

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/sqall01/alertR/internal/models"
	"github.com/sqall01/alertR/internal/repository"
)

// fakeStore 内存中的 repository.Store
type fakeStore struct {
	internals        []models.Internal
	options          []models.Option
	profiles         []models.Profile
	nodes            []models.Node
	sensors          []models.Sensor
	sensorLinks      []repository.AlertLevelLink
	sensorData       map[int]models.SensorData
	alerts           []models.Alert
	alertLinks       []repository.AlertLevelLink
	managers         []models.Manager
	alertLevels      []models.AlertLevel
	profileLinks     []repository.ProfileLink
	sensorAlerts     []models.SensorAlert
	sensorAlertLinks []repository.AlertLevelLink
	sensorAlertData  map[int64]models.SensorData
	events           []models.Event
	eventDetails     map[string]map[int64]models.EventDetail
	eventData        map[int64]models.SensorData

	failOn        string
	onNodes       func()
	detailLookups []string
	calls         int
}

var errStoreDown = errors.New("connection refused")

func (f *fakeStore) check(name string) error {
	f.calls++
	if f.failOn == name {
		return errStoreDown
	}
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.check("ping") }

func (f *fakeStore) Internals(ctx context.Context) ([]models.Internal, error) {
	return append([]models.Internal{}, f.internals...), f.check("internals")
}

func (f *fakeStore) Options(ctx context.Context) ([]models.Option, error) {
	return append([]models.Option{}, f.options...), f.check("options")
}

func (f *fakeStore) Profiles(ctx context.Context) ([]models.Profile, error) {
	return append([]models.Profile{}, f.profiles...), f.check("profiles")
}

func (f *fakeStore) Nodes(ctx context.Context) ([]models.Node, error) {
	out := append([]models.Node{}, f.nodes...)
	if f.onNodes != nil {
		f.onNodes()
	}
	return out, f.check("nodes")
}

func (f *fakeStore) Sensors(ctx context.Context) ([]models.Sensor, error) {
	out := []models.Sensor{}
	for _, s := range f.sensors {
		s.AlertLevels = []int{}
		s.Data = models.NoData()
		out = append(out, s)
	}
	return out, f.check("sensors")
}

func (f *fakeStore) SensorAlertLevels(ctx context.Context) ([]repository.AlertLevelLink, error) {
	return f.sensorLinks, f.check("sensorLinks")
}

func (f *fakeStore) SensorData(ctx context.Context, id int, t models.SensorDataType) (models.SensorData, error) {
	if t == models.DataTypeNone {
		return models.NoData(), nil
	}
	if d, ok := f.sensorData[id]; ok {
		return d, f.check("sensorData")
	}
	return models.NoData(), f.check("sensorData")
}

func (f *fakeStore) Alerts(ctx context.Context) ([]models.Alert, error) {
	return append([]models.Alert{}, f.alerts...), f.check("alerts")
}

func (f *fakeStore) AlertAlertLevels(ctx context.Context) ([]repository.AlertLevelLink, error) {
	return f.alertLinks, f.check("alertLinks")
}

func (f *fakeStore) Managers(ctx context.Context) ([]models.Manager, error) {
	return append([]models.Manager{}, f.managers...), f.check("managers")
}

func (f *fakeStore) AlertLevels(ctx context.Context) ([]models.AlertLevel, error) {
	out := []models.AlertLevel{}
	for _, l := range f.alertLevels {
		if l.InstrumentationSettings != nil {
			s := *l.InstrumentationSettings
			l.InstrumentationSettings = &s
		}
		out = append(out, l)
	}
	return out, f.check("alertLevels")
}

func (f *fakeStore) AlertLevelProfiles(ctx context.Context) ([]repository.ProfileLink, error) {
	return f.profileLinks, f.check("profileLinks")
}

func (f *fakeStore) SensorAlerts(ctx context.Context, rng *repository.Range) ([]models.SensorAlert, error) {
	all := append([]models.SensorAlert{}, f.sensorAlerts...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, rng), f.check("sensorAlerts")
}

func (f *fakeStore) SensorAlertAlertLevels(ctx context.Context) ([]repository.AlertLevelLink, error) {
	return f.sensorAlertLinks, f.check("sensorAlertLinks")
}

func (f *fakeStore) SensorAlertData(ctx context.Context, id int64, t models.SensorDataType) (models.SensorData, error) {
	if d, ok := f.sensorAlertData[id]; ok && t != models.DataTypeNone {
		return d, nil
	}
	return models.NoData(), nil
}

func (f *fakeStore) Events(ctx context.Context, rng *repository.Range) ([]models.Event, error) {
	all := append([]models.Event{}, f.events...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, rng), f.check("events")
}

func (f *fakeStore) EventDetails(ctx context.Context, typ string, ids []int64) (map[int64]models.EventDetail, error) {
	f.detailLookups = append(f.detailLookups, typ)
	out := map[int64]models.EventDetail{}
	for _, id := range ids {
		if d, ok := f.eventDetails[typ][id]; ok {
			out[id] = d
		}
	}
	return out, f.check("eventDetails")
}

func (f *fakeStore) EventData(ctx context.Context, id int64, t models.SensorDataType) (models.SensorData, error) {
	if d, ok := f.eventData[id]; ok && t != models.DataTypeNone {
		return d, nil
	}
	return models.NoData(), nil
}

func page[T any](all []T, rng *repository.Range) []T {
	if !rng.Valid() {
		return all
	}
	if rng.Start >= len(all) {
		return []T{}
	}
	end := rng.Start + rng.Number
	if end > len(all) {
		end = len(all)
	}
	return all[rng.Start:end]
}

var _ repository.Store = (*fakeStore)(nil)

func itoa(i int) string {
	return strconv.Itoa(i)
}
