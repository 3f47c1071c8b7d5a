package repository

import (
	"github.com/sqall01/alertR/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// eventDetailTable 每种事件类型对应的明细表
type eventDetailTable struct {
	table   string
	columns string
	scan    func(s rowScanner, eventID *int64) (models.EventDetail, error)
}

// EventDetailTypes 所有有明细表的事件类型, 按固定顺序查询
var EventDetailTypes = []string{
	models.EventSensorAlert,
	models.EventStateChange,
	models.EventConnectedChange,
	models.EventSensorTimeOut,
	models.EventNewVersion,
	models.EventNewOption,
	models.EventNewNode,
	models.EventNewSensor,
	models.EventNewAlert,
	models.EventNewManager,
	models.EventChangeOption,
	models.EventChangeNode,
	models.EventChangeSensor,
	models.EventChangeAlert,
	models.EventChangeManager,
	models.EventDeleteNode,
	models.EventDeleteSensor,
	models.EventDeleteAlert,
	models.EventDeleteManager,
}

var eventDetailTables = map[string]eventDetailTable{
	models.EventSensorAlert: {
		table:   "eventsSensorAlert",
		columns: "eventId, description, state, dataType",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.SensorAlertEvent{Data: models.NoData()}
			return d, s.Scan(id, &d.Description, &d.State, &d.DataType)
		},
	},
	models.EventStateChange: {
		table:   "eventsStateChange",
		columns: "eventId, hostname, description, state, dataType",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.StateChangeEvent{Data: models.NoData()}
			return d, s.Scan(id, &d.Hostname, &d.Description, &d.State, &d.DataType)
		},
	},
	models.EventConnectedChange: {
		table:   "eventsConnectedChange",
		columns: "eventId, hostname, nodeType, instance, connected",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ConnectedChangeEvent{}
			return d, s.Scan(id, &d.Hostname, &d.NodeType, &d.Instance, &d.Connected)
		},
	},
	models.EventSensorTimeOut: {
		table:   "eventsSensorTimeOut",
		columns: "eventId, hostname, description, state",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.SensorTimeOutEvent{}
			return d, s.Scan(id, &d.Hostname, &d.Description, &d.State)
		},
	},
	models.EventNewVersion: {
		table:   "eventsNewVersion",
		columns: "eventId, usedVersion, usedRev, newVersion, newRev, instance, hostname",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewVersionEvent{}
			return d, s.Scan(id, &d.UsedVersion, &d.UsedRev, &d.NewVersion, &d.NewRev, &d.Instance, &d.Hostname)
		},
	},
	models.EventNewOption: {
		table:   "eventsNewOption",
		columns: "eventId, type, value",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewOptionEvent{}
			return d, s.Scan(id, &d.OptionType, &d.Value)
		},
	},
	models.EventNewNode: {
		table:   "eventsNewNode",
		columns: "eventId, hostname, nodeType, instance",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewNodeEvent{}
			return d, s.Scan(id, &d.Hostname, &d.NodeType, &d.Instance)
		},
	},
	models.EventNewSensor: {
		table:   "eventsNewSensor",
		columns: "eventId, hostname, description, state",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewSensorEvent{}
			return d, s.Scan(id, &d.Hostname, &d.Description, &d.State)
		},
	},
	models.EventNewAlert: {
		table:   "eventsNewAlert",
		columns: "eventId, hostname, description",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewAlertEvent{}
			return d, s.Scan(id, &d.Hostname, &d.Description)
		},
	},
	models.EventNewManager: {
		table:   "eventsNewManager",
		columns: "eventId, hostname, description",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.NewManagerEvent{}
			return d, s.Scan(id, &d.Hostname, &d.Description)
		},
	},
	models.EventChangeOption: {
		table:   "eventsChangeOption",
		columns: "eventId, type, oldValue, newValue",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ChangeOptionEvent{}
			return d, s.Scan(id, &d.OptionType, &d.OldValue, &d.NewValue)
		},
	},
	models.EventChangeNode: {
		table: "eventsChangeNode",
		columns: "eventId, oldHostname, oldNodeType, oldInstance, oldVersion, oldRev, oldUsername, oldPersistent, " +
			"newHostname, newNodeType, newInstance, newVersion, newRev, newUsername, newPersistent",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ChangeNodeEvent{}
			return d, s.Scan(id,
				&d.OldHostname, &d.OldNodeType, &d.OldInstance, &d.OldVersion, &d.OldRev, &d.OldUsername, &d.OldPersistent,
				&d.NewHostname, &d.NewNodeType, &d.NewInstance, &d.NewVersion, &d.NewRev, &d.NewUsername, &d.NewPersistent)
		},
	},
	models.EventChangeSensor: {
		table:   "eventsChangeSensor",
		columns: "eventId, oldAlertDelay, oldDescription, oldRemoteSensorId, newAlertDelay, newDescription, newRemoteSensorId",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ChangeSensorEvent{}
			return d, s.Scan(id, &d.OldAlertDelay, &d.OldDescription, &d.OldRemoteSensorID,
				&d.NewAlertDelay, &d.NewDescription, &d.NewRemoteSensorID)
		},
	},
	models.EventChangeAlert: {
		table:   "eventsChangeAlert",
		columns: "eventId, oldDescription, oldRemoteAlertId, newDescription, newRemoteAlertId",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ChangeAlertEvent{}
			return d, s.Scan(id, &d.OldDescription, &d.OldRemoteAlertID, &d.NewDescription, &d.NewRemoteAlertID)
		},
	},
	models.EventChangeManager: {
		table:   "eventsChangeManager",
		columns: "eventId, oldDescription, newDescription",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.ChangeManagerEvent{}
			return d, s.Scan(id, &d.OldDescription, &d.NewDescription)
		},
	},
	models.EventDeleteNode: {
		table:   "eventsDeleteNode",
		columns: "eventId, hostname, nodeType, instance",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.DeleteNodeEvent{}
			return d, s.Scan(id, &d.Hostname, &d.NodeType, &d.Instance)
		},
	},
	models.EventDeleteSensor: {
		table:   "eventsDeleteSensor",
		columns: "eventId, description",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.DeleteSensorEvent{}
			return d, s.Scan(id, &d.Description)
		},
	},
	models.EventDeleteAlert: {
		table:   "eventsDeleteAlert",
		columns: "eventId, description",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.DeleteAlertEvent{}
			return d, s.Scan(id, &d.Description)
		},
	},
	models.EventDeleteManager: {
		table:   "eventsDeleteManager",
		columns: "eventId, description",
		scan: func(s rowScanner, id *int64) (models.EventDetail, error) {
			d := &models.DeleteManagerEvent{}
			return d, s.Scan(id, &d.Description)
		},
	},
}
