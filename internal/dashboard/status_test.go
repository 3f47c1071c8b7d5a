package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqall01/alertR/internal/models"
)

func TestNodeStatus(t *testing.T) {
	assert.Equal(t, ClassNormal, NodeStatus(models.Node{Connected: 1, Persistent: 1}))
	assert.Equal(t, ClassFail, NodeStatus(models.Node{Connected: 0, Persistent: 1}))
	assert.Equal(t, ClassNeutral, NodeStatus(models.Node{Connected: 0, Persistent: 0}))
}

func TestSensorStatus(t *testing.T) {
	online := &models.Node{Connected: 1}
	offline := &models.Node{Connected: 0}

	tests := []struct {
		name   string
		sensor models.Sensor
		node   *models.Node
		want   CellClass
	}{
		{"node offline wins", models.Sensor{State: 1, ErrorState: models.SensorErrorTimeout}, offline, ClassFail},
		{"missing node", models.Sensor{}, nil, ClassFail},
		{"error before triggered", models.Sensor{State: 1, ErrorState: models.SensorErrorTimeout}, online, ClassError},
		{"triggered", models.Sensor{State: 1}, online, ClassTriggered},
		{"normal", models.Sensor{State: 0}, online, ClassNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SensorStatus(tt.sensor, tt.node))
		})
	}
}

func TestVersionOutdated(t *testing.T) {
	node := func(version float64, rev int, newest float64, newestRev int) models.Node {
		return models.Node{Version: version, Rev: rev, NodeUpdateInfo: &models.NodeUpdateInfo{NewestVersion: newest, NewestRev: newestRev}}
	}

	tests := []struct {
		name string
		node models.Node
		want bool
	}{
		{"newer version", node(0.500, 3, 0.501, 0), true},
		{"same version newer rev", node(0.500, 3, 0.500, 4), true},
		{"up to date", node(0.500, 3, 0.500, 3), false},
		{"newer rev on older version", node(0.501, 0, 0.500, 9), false},
		{"major bump", node(0.999, 1, 1.000, 0), true},
		{"no update info", models.Node{Version: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionOutdated(tt.node))
		})
	}

	assert.Equal(t, ClassFail, VersionStatus(node(0.500, 3, 0.501, 0)))
	assert.Equal(t, ClassNeutral, VersionStatus(node(0.500, 3, 0.500, 3)))
}
