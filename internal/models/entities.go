package models

// Internal 系统内部信息 (type/value)
type Internal struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// internals 中的特殊类型
const (
	InternalMsgTime    = "msgTime"
	InternalServerTime = "serverTime" // 旧版本
	InternalVersion    = "version"
	InternalRev        = "rev"
)

// Option 系统设置
type Option struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

const (
	OptionAlertSystemActive = "alertSystemActive"
	OptionProfile           = "profile"
)

// Profile 系统运行模式
type Profile struct {
	ProfileID int    `json:"profileId"`
	Name      string `json:"name"`
}

// Node 连接到服务器的客户端实例
type Node struct {
	ID         int     `json:"id"`
	Hostname   string  `json:"hostname"`
	NodeType   string  `json:"nodeType"`
	Instance   string  `json:"instance"`
	Connected  int     `json:"connected"`
	Version    float64 `json:"version"`
	Rev        int     `json:"rev"`
	Username   string  `json:"username"`
	Persistent int     `json:"persistent"`

	*NodeUpdateInfo
}

// NodeUpdateInfo 旧版本 schema 才有的最新可用版本字段
type NodeUpdateInfo struct {
	NewestVersion float64 `json:"newestVersion"`
	NewestRev     int     `json:"newestRev"`
}

// IsConnected connected=1
func (n Node) IsConnected() bool { return n.Connected == 1 }

// ConnectionFailed 应该在线但未连接
func (n Node) ConnectionFailed() bool { return n.Connected == 0 && n.Persistent == 1 }

// SensorErrorState 传感器错误状态
type SensorErrorState int

const (
	SensorErrorOK         SensorErrorState = 0
	SensorErrorGeneric    SensorErrorState = 1
	SensorErrorProcessing SensorErrorState = 2
	SensorErrorTimeout    SensorErrorState = 3
	SensorErrorConnection SensorErrorState = 4
	SensorErrorExecution  SensorErrorState = 5
	SensorErrorValue      SensorErrorState = 6
)

func (s SensorErrorState) String() string {
	switch s {
	case SensorErrorOK:
		return "OK"
	case SensorErrorGeneric:
		return "GenericError"
	case SensorErrorProcessing:
		return "ProcessingError"
	case SensorErrorTimeout:
		return "TimeoutError"
	case SensorErrorConnection:
		return "ConnectionError"
	case SensorErrorExecution:
		return "ExecutionError"
	case SensorErrorValue:
		return "ValueError"
	default:
		return "UnknownError"
	}
}

// Sensor 传感器, 属于一个 Node
type Sensor struct {
	ID               int              `json:"id"`
	ClientSensorID   int              `json:"clientSensorId"`
	NodeID           int              `json:"nodeId"`
	Description      string           `json:"description"`
	LastStateUpdated int64            `json:"lastStateUpdated"`
	State            int              `json:"state"`
	AlertLevels      []int            `json:"alertLevels"`
	DataType         SensorDataType   `json:"dataType"`
	Data             SensorData       `json:"data"`
	ErrorState       SensorErrorState `json:"errorState"`
	ErrorMsg         string           `json:"errorMsg"`
}

// Alert 报警输出
type Alert struct {
	ID            int    `json:"id"`
	ClientAlertID int    `json:"clientAlertId"`
	NodeID        int    `json:"nodeId"`
	Description   string `json:"description"`
	AlertLevels   []int  `json:"alertLevels"`
}

// Manager 管理客户端
type Manager struct {
	ID          int    `json:"id"`
	NodeID      int    `json:"nodeId"`
	Description string `json:"description"`
}

// AlertLevel 报警级别
// 当前 schema 使用 InstrumentationSettings, 旧 schema 使用 NotificationSettings
type AlertLevel struct {
	AlertLevel int    `json:"alertLevel"`
	Name       string `json:"name"`

	*InstrumentationSettings
	*NotificationSettings
}

// InstrumentationSettings 当前 schema
type InstrumentationSettings struct {
	InstrumentationActive int   `json:"instrumentation_active"`
	Profiles              []int `json:"profiles"`
}

// NotificationSettings 旧 schema (SMTP 通知)
type NotificationSettings struct {
	TriggerAlways int    `json:"triggerAlways"`
	SMTPActivated int    `json:"smtpActivated"`
	ToAddr        string `json:"toAddr"`
}

// SensorAlert 传感器触发记录, 只追加
type SensorAlert struct {
	ID           int64          `json:"id"`
	SensorID     int            `json:"sensorId"`
	State        int            `json:"state"`
	Description  string         `json:"description"`
	TimeReceived int64          `json:"timeReceived"`
	AlertLevels  []int          `json:"alertLevels"`
	OptionalData string         `json:"optionalData"`
	DataType     SensorDataType `json:"dataType"`
	Data         SensorData     `json:"data"`
}
