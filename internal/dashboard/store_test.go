package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sqall01/alertR/internal/models"
)

func withMsgTime(v float64) *models.Response {
	return &models.Response{Internals: []models.Internal{{Type: models.InternalMsgTime, Value: v}}}
}

func TestStore_CheckOnline(t *testing.T) {
	start := time.Unix(1000, 0)
	st := NewStore(start)
	assert.False(t, st.Online)

	st.Apply(withMsgTime(500), start)
	assert.True(t, st.CheckOnline(start, 80*time.Second))
	assert.True(t, st.Online)
	assert.Equal(t, int64(500), st.LastMsgTime)

	// msgTime 不变, 未超时
	assert.False(t, st.CheckOnline(start.Add(79*time.Second), 80*time.Second))
	assert.True(t, st.Online)

	// 超过 80 秒没有前进
	assert.True(t, st.CheckOnline(start.Add(81*time.Second), 80*time.Second))
	assert.False(t, st.Online)

	// 前进后恢复
	st.Apply(withMsgTime(600), start.Add(82*time.Second))
	assert.True(t, st.CheckOnline(start.Add(82*time.Second), 80*time.Second))
	assert.True(t, st.Online)
}

func TestStore_CheckOnlineLegacyServerTime(t *testing.T) {
	start := time.Unix(1000, 0)
	st := NewStore(start)
	st.Apply(&models.Response{Internals: []models.Internal{{Type: models.InternalServerTime, Value: 42}}}, start)

	st.CheckOnline(start, time.Minute)
	assert.True(t, st.Online)
	assert.Equal(t, int64(42), st.LastMsgTime)
}

func TestStore_NeedsFetch(t *testing.T) {
	settings := DefaultSettings()
	now := time.Unix(2000, 0)
	st := NewStore(now)

	assert.True(t, st.NeedsFetch(settings, ViewNodes, now, 10*time.Second))

	st.Apply(&models.Response{
		Internals: []models.Internal{},
		Options:   []models.Option{},
		Profiles:  []models.Profile{},
		Nodes:     []models.Node{},
	}, now)
	assert.False(t, st.NeedsFetch(settings, ViewNodes, now.Add(5*time.Second), 10*time.Second))
	assert.True(t, st.NeedsFetch(settings, ViewNodes, now.Add(11*time.Second), 10*time.Second))
	assert.True(t, st.NeedsFetch(settings, ViewSensors, now, 10*time.Second))
}

func TestStore_MarkFailedKeepsData(t *testing.T) {
	st := NewStore(time.Now())
	st.Apply(&models.Response{Nodes: []models.Node{{ID: 1}}}, time.Now())
	st.MarkFailed(assert.AnError)

	assert.True(t, st.Stale)
	assert.Equal(t, assert.AnError.Error(), st.LastError)
	assert.Len(t, st.Data.Nodes, 1)
}

func TestSettings_RequestFor(t *testing.T) {
	s := DefaultSettings()

	overview := s.RequestFor(ViewOverview)
	assert.Equal(t, []models.Category{
		models.CategoryInternals, models.CategoryOptions, models.CategoryProfiles,
		models.CategoryNodes, models.CategorySensors, models.CategorySensorAlerts,
	}, overview.Categories)
	assert.Equal(t, 0, overview.SensorAlertsRange.Start)
	assert.Equal(t, 10, overview.SensorAlertsRange.Number)
	assert.Nil(t, overview.EventsRange)

	events := s.RequestFor(ViewEvents)
	assert.Equal(t, 50, events.EventsRange.Number)
	assert.Nil(t, events.SensorAlertsRange)

	nodes := s.RequestFor(ViewNodes)
	assert.Nil(t, nodes.SensorAlertsRange)
	assert.Nil(t, nodes.EventsRange)

	s.Legacy = true
	assert.NotContains(t, s.RequiredCategories(ViewAlertLevels), models.CategoryProfiles)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("sensorAlerts")
	assert.NoError(t, err)
	assert.Equal(t, ViewSensorAlerts, v)

	_, err = ParseView("bogus")
	assert.Error(t, err)
}
