package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqall01/alertR/internal/models"
)

func TestSortNodes(t *testing.T) {
	nodes := []models.Node{
		{ID: 4, Connected: 1, NodeType: "sensor", Instance: "a", Hostname: "b"},
		{ID: 3, Connected: 1, NodeType: "alert", Instance: "z", Hostname: "a"},
		{ID: 2, Connected: 0, NodeType: "sensor", Instance: "a", Hostname: "a"},
		{ID: 1, Connected: 1, NodeType: "sensor", Instance: "a", Hostname: "b"},
		{ID: 5, Connected: 1, NodeType: "sensor", Instance: "a", Hostname: "a"},
	}
	SortNodes(nodes)

	var ids []int
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int{2, 3, 5, 1, 4}, ids)
}

func TestSortSensors(t *testing.T) {
	sensors := []models.Sensor{
		{ID: 1, Description: "window"},
		{ID: 2, Description: "Door"},
		{ID: 3, Description: "door"},
	}

	SortSensors(sensors, false)
	assert.Equal(t, []int{2, 3, 1}, []int{sensors[0].ID, sensors[1].ID, sensors[2].ID})

	// 旧版本区分大小写, 大写字母在前
	sensors = []models.Sensor{
		{ID: 1, Description: "door"},
		{ID: 2, Description: "Window"},
	}
	SortSensors(sensors, true)
	assert.Equal(t, 2, sensors[0].ID)
}

func TestSortAlertsAndManagers(t *testing.T) {
	alerts := []models.Alert{{ID: 2, Description: "b"}, {ID: 3, Description: "B"}, {ID: 1, Description: "b"}}
	SortAlerts(alerts)
	assert.Equal(t, []int{3, 1, 2}, []int{alerts[0].ID, alerts[1].ID, alerts[2].ID})

	managers := []models.Manager{{ID: 9, Description: "web"}, {ID: 1, Description: "mobile"}}
	SortManagers(managers)
	assert.Equal(t, 1, managers[0].ID)
}

func TestSortSensorAlertsAndEvents(t *testing.T) {
	alerts := []models.SensorAlert{{ID: 1, TimeReceived: 10}, {ID: 2, TimeReceived: 30}, {ID: 3, TimeReceived: 20}}
	SortSensorAlerts(alerts)
	assert.Equal(t, []int64{2, 3, 1}, []int64{alerts[0].ID, alerts[1].ID, alerts[2].ID})

	events := []models.Event{{ID: 1, TimeOccurred: 5}, {ID: 3, TimeOccurred: 5}, {ID: 2, TimeOccurred: 9}}
	SortEvents(events)
	assert.Equal(t, []int64{2, 3, 1}, []int64{events[0].ID, events[1].ID, events[2].ID})
}

func TestSortAlertLevels(t *testing.T) {
	levels := []models.AlertLevel{{AlertLevel: 3}, {AlertLevel: 1}, {AlertLevel: 2}}
	SortAlertLevels(levels)
	assert.Equal(t, []int{1, 2, 3}, []int{levels[0].AlertLevel, levels[1].AlertLevel, levels[2].AlertLevel})
}
