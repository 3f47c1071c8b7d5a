package models

import (
	"encoding/json"
	"fmt"
)

// 事件类型
const (
	EventSensorAlert     = "sensorAlert"
	EventStateChange     = "stateChange"
	EventConnectedChange = "connectedChange"
	EventSensorTimeOut   = "sensorTimeOut"
	EventNewVersion      = "newVersion"
	EventNewOption       = "newOption"
	EventNewNode         = "newNode"
	EventNewSensor       = "newSensor"
	EventNewAlert        = "newAlert"
	EventNewManager      = "newManager"
	EventChangeOption    = "changeOption"
	EventChangeNode      = "changeNode"
	EventChangeSensor    = "changeSensor"
	EventChangeAlert     = "changeAlert"
	EventChangeManager   = "changeManager"
	EventDeleteNode      = "deleteNode"
	EventDeleteSensor    = "deleteSensor"
	EventDeleteAlert     = "deleteAlert"
	EventDeleteManager   = "deleteManager"
)

// EventDetail 各类型事件的明细
type EventDetail interface {
	EventType() string
}

// Event 事件记录; Detail 为 nil 时只输出 id/timeOccurred/type
type Event struct {
	ID           int64
	TimeOccurred int64
	Type         string
	Detail       EventDetail
}

type eventBase struct {
	ID           int64  `json:"id"`
	TimeOccurred int64  `json:"timeOccurred"`
	Type         string `json:"type"`
}

// MarshalJSON 明细字段平铺到事件对象中
func (e Event) MarshalJSON() ([]byte, error) {
	base := eventBase{ID: e.ID, TimeOccurred: e.TimeOccurred, Type: e.Type}
	if e.Detail == nil {
		return json.Marshal(base)
	}

	raw, err := json.Marshal(e.Detail)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event detail: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten event detail: %w", err)
	}
	fields["id"], _ = json.Marshal(e.ID)
	fields["timeOccurred"], _ = json.Marshal(e.TimeOccurred)
	fields["type"], _ = json.Marshal(e.Type)
	return json.Marshal(fields)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var base eventBase
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	e.ID, e.TimeOccurred, e.Type = base.ID, base.TimeOccurred, base.Type
	e.Detail = nil

	detail := NewEventDetail(base.Type)
	if detail == nil {
		return nil
	}
	if err := json.Unmarshal(b, detail); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", base.Type, err)
	}
	switch d := detail.(type) {
	case *SensorAlertEvent:
		d.Data = d.Data.As(d.DataType)
	case *StateChangeEvent:
		d.Data = d.Data.As(d.DataType)
	}
	e.Detail = detail
	return nil
}

// NewEventDetail 返回对应类型的空明细指针, 未知类型返回 nil
func NewEventDetail(eventType string) EventDetail {
	switch eventType {
	case EventSensorAlert:
		return &SensorAlertEvent{}
	case EventStateChange:
		return &StateChangeEvent{}
	case EventConnectedChange:
		return &ConnectedChangeEvent{}
	case EventSensorTimeOut:
		return &SensorTimeOutEvent{}
	case EventNewVersion:
		return &NewVersionEvent{}
	case EventNewOption:
		return &NewOptionEvent{}
	case EventNewNode:
		return &NewNodeEvent{}
	case EventNewSensor:
		return &NewSensorEvent{}
	case EventNewAlert:
		return &NewAlertEvent{}
	case EventNewManager:
		return &NewManagerEvent{}
	case EventChangeOption:
		return &ChangeOptionEvent{}
	case EventChangeNode:
		return &ChangeNodeEvent{}
	case EventChangeSensor:
		return &ChangeSensorEvent{}
	case EventChangeAlert:
		return &ChangeAlertEvent{}
	case EventChangeManager:
		return &ChangeManagerEvent{}
	case EventDeleteNode:
		return &DeleteNodeEvent{}
	case EventDeleteSensor:
		return &DeleteSensorEvent{}
	case EventDeleteAlert:
		return &DeleteAlertEvent{}
	case EventDeleteManager:
		return &DeleteManagerEvent{}
	default:
		return nil
	}
}

type SensorAlertEvent struct {
	Description string         `json:"description"`
	State       int            `json:"state"`
	DataType    SensorDataType `json:"dataType"`
	Data        SensorData     `json:"data"`
}

type StateChangeEvent struct {
	Hostname    string         `json:"hostname"`
	Description string         `json:"description"`
	State       int            `json:"state"`
	DataType    SensorDataType `json:"dataType"`
	Data        SensorData     `json:"data"`
}

type ConnectedChangeEvent struct {
	Hostname  string `json:"hostname"`
	NodeType  string `json:"nodeType"`
	Instance  string `json:"instance"`
	Connected int    `json:"connected"`
}

type SensorTimeOutEvent struct {
	Hostname    string `json:"hostname"`
	Description string `json:"description"`
	State       int    `json:"state"`
}

type NewVersionEvent struct {
	UsedVersion float64 `json:"usedVersion"`
	UsedRev     int     `json:"usedRev"`
	NewVersion  float64 `json:"newVersion"`
	NewRev      int     `json:"newRev"`
	Instance    string  `json:"instance"`
	Hostname    string  `json:"hostname"`
}

type NewOptionEvent struct {
	OptionType string  `json:"optionType"`
	Value      float64 `json:"value"`
}

type NewNodeEvent struct {
	Hostname string `json:"hostname"`
	NodeType string `json:"nodeType"`
	Instance string `json:"instance"`
}

type NewSensorEvent struct {
	Hostname    string `json:"hostname"`
	Description string `json:"description"`
	State       int    `json:"state"`
}

type NewAlertEvent struct {
	Hostname    string `json:"hostname"`
	Description string `json:"description"`
}

type NewManagerEvent struct {
	Hostname    string `json:"hostname"`
	Description string `json:"description"`
}

type ChangeOptionEvent struct {
	OptionType string  `json:"optionType"`
	OldValue   float64 `json:"oldValue"`
	NewValue   float64 `json:"newValue"`
}

type ChangeNodeEvent struct {
	OldHostname   string  `json:"oldHostname"`
	OldNodeType   string  `json:"oldNodeType"`
	OldInstance   string  `json:"oldInstance"`
	OldVersion    float64 `json:"oldVersion"`
	OldRev        int     `json:"oldRev"`
	OldUsername   string  `json:"oldUsername"`
	OldPersistent int     `json:"oldPersistent"`
	NewHostname   string  `json:"newHostname"`
	NewNodeType   string  `json:"newNodeType"`
	NewInstance   string  `json:"newInstance"`
	NewVersion    float64 `json:"newVersion"`
	NewRev        int     `json:"newRev"`
	NewUsername   string  `json:"newUsername"`
	NewPersistent int     `json:"newPersistent"`
}

type ChangeSensorEvent struct {
	OldAlertDelay     int    `json:"oldAlertDelay"`
	OldDescription    string `json:"oldDescription"`
	OldRemoteSensorID int    `json:"oldRemoteSensorId"`
	NewAlertDelay     int    `json:"newAlertDelay"`
	NewDescription    string `json:"newDescription"`
	NewRemoteSensorID int    `json:"newRemoteSensorId"`
}

type ChangeAlertEvent struct {
	OldDescription   string `json:"oldDescription"`
	OldRemoteAlertID int    `json:"oldRemoteAlertId"`
	NewDescription   string `json:"newDescription"`
	NewRemoteAlertID int    `json:"newRemoteAlertId"`
}

type ChangeManagerEvent struct {
	OldDescription string `json:"oldDescription"`
	NewDescription string `json:"newDescription"`
}

type DeleteNodeEvent struct {
	Hostname string `json:"hostname"`
	NodeType string `json:"nodeType"`
	Instance string `json:"instance"`
}

type DeleteSensorEvent struct {
	Description string `json:"description"`
}

type DeleteAlertEvent struct {
	Description string `json:"description"`
}

type DeleteManagerEvent struct {
	Description string `json:"description"`
}

func (*SensorAlertEvent) EventType() string     { return EventSensorAlert }
func (*StateChangeEvent) EventType() string     { return EventStateChange }
func (*ConnectedChangeEvent) EventType() string { return EventConnectedChange }
func (*SensorTimeOutEvent) EventType() string   { return EventSensorTimeOut }
func (*NewVersionEvent) EventType() string      { return EventNewVersion }
func (*NewOptionEvent) EventType() string       { return EventNewOption }
func (*NewNodeEvent) EventType() string         { return EventNewNode }
func (*NewSensorEvent) EventType() string       { return EventNewSensor }
func (*NewAlertEvent) EventType() string        { return EventNewAlert }
func (*NewManagerEvent) EventType() string      { return EventNewManager }
func (*ChangeOptionEvent) EventType() string    { return EventChangeOption }
func (*ChangeNodeEvent) EventType() string      { return EventChangeNode }
func (*ChangeSensorEvent) EventType() string    { return EventChangeSensor }
func (*ChangeAlertEvent) EventType() string     { return EventChangeAlert }
func (*ChangeManagerEvent) EventType() string   { return EventChangeManager }
func (*DeleteNodeEvent) EventType() string      { return EventDeleteNode }
func (*DeleteSensorEvent) EventType() string    { return EventDeleteSensor }
func (*DeleteAlertEvent) EventType() string     { return EventDeleteAlert }
func (*DeleteManagerEvent) EventType() string   { return EventDeleteManager }
