package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sqall01/alertR/internal/models"
)

// Cell 视图中的一个单元格
type Cell struct {
	Text  string
	Class CellClass
}

// Row 表格行
type Row []Cell

// Table 视图中的一张表
type Table struct {
	Title   string
	Columns []string
	Rows    []Row
}

// Page 渲染结果, 与输出格式无关; TextEncoder 和 HTMLEncoder 都基于它
type Page struct {
	View   View
	Title  string
	Banner string

	Online      bool
	LastMsgTime string
	Status      []Cell

	AlertSystemActive bool
	ActiveProfile     int
	Profiles          []models.Profile

	Tables []Table
}

// Renderer 接收 Controller 渲染好的页面
type Renderer interface {
	Render(Page) error
}

// RenderFunc 函数适配 Renderer
type RenderFunc func(Page) error

func (f RenderFunc) Render(p Page) error { return f(p) }

// PageBuilder 把缓存转换成页面, 不修改缓存
type PageBuilder struct {
	Settings Settings
	Location *time.Location
}

func (b PageBuilder) loc() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

func (b PageBuilder) formatTime(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).In(b.loc()).Format("2006-01-02 15:04:05")
}

// Build 生成页面
func (b PageBuilder) Build(v View, st *Store) Page {
	data := &st.Data
	p := Page{View: v, Title: "alertR " + string(v), Online: st.Online}

	if st.LastMsgTime > 0 {
		p.LastMsgTime = b.formatTime(st.LastMsgTime)
	} else {
		p.LastMsgTime = "-"
	}
	if st.Stale {
		p.Banner = fmt.Sprintf("Server unreachable, showing data from %s (%s)",
			st.LastResponse.In(b.loc()).Format("15:04:05"), st.LastError)
	}

	b.buildStatus(&p, data)

	switch v {
	case ViewOverview:
		p.Tables = []Table{b.sensorsTable(data, false), b.sensorAlertsTable(data, b.Settings.OverviewAlertsCount)}
	case ViewNodes:
		p.Tables = []Table{b.nodesTable(data)}
	case ViewSensors:
		p.Tables = []Table{b.sensorsTable(data, true)}
	case ViewAlerts:
		p.Tables = []Table{b.alertsTable(data)}
	case ViewManagers:
		p.Tables = []Table{b.managersTable(data)}
	case ViewSensorAlerts:
		p.Tables = []Table{b.sensorAlertsTable(data, b.Settings.SensorAlertsNumber)}
	case ViewAlertLevels:
		p.Tables = []Table{b.alertLevelsTable(data)}
	case ViewEvents:
		p.Tables = []Table{b.eventsTable(data)}
	}
	return p
}

func (b PageBuilder) buildStatus(p *Page, data *models.Response) {
	online := Cell{Text: "offline", Class: ClassFail}
	if p.Online {
		online = Cell{Text: "online", Class: ClassNormal}
	}
	p.Status = append(p.Status, online, Cell{Text: "last message " + p.LastMsgTime, Class: ClassNeutral})

	for _, o := range data.Options {
		switch o.Type {
		case models.OptionAlertSystemActive:
			p.AlertSystemActive = o.Value == 1
		case models.OptionProfile:
			p.ActiveProfile = int(o.Value)
		}
	}
	p.Profiles = data.Profiles

	if data.Options != nil {
		if p.AlertSystemActive {
			p.Status = append(p.Status, Cell{Text: "alert system activated", Class: ClassNormal})
		} else {
			p.Status = append(p.Status, Cell{Text: "alert system deactivated", Class: ClassFail})
		}
	}
	if data.Profiles != nil {
		name := strconv.Itoa(p.ActiveProfile)
		for _, pr := range data.Profiles {
			if pr.ProfileID == p.ActiveProfile {
				name = pr.Name
			}
		}
		p.Status = append(p.Status, Cell{Text: "profile " + name, Class: ClassNeutral})
	}
}

func nodeIndex(nodes []models.Node) map[int]*models.Node {
	idx := make(map[int]*models.Node, len(nodes))
	for i := range nodes {
		idx[nodes[i].ID] = &nodes[i]
	}
	return idx
}

func (b PageBuilder) levelNames(data *models.Response, levels []int) string {
	names := make(map[int]string, len(data.AlertLevels))
	for _, l := range data.AlertLevels {
		names[l.AlertLevel] = l.Name
	}
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if n, ok := names[l]; ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, strconv.Itoa(l))
		}
	}
	return strings.Join(parts, ", ")
}

func hostname(idx map[int]*models.Node, id int) string {
	if n, ok := idx[id]; ok {
		return n.Hostname
	}
	return "-"
}

func (b PageBuilder) nodesTable(data *models.Response) Table {
	nodes := append([]models.Node(nil), data.Nodes...)
	SortNodes(nodes)

	t := Table{Title: "Nodes", Columns: []string{"Hostname", "Type", "Instance", "Username", "Version", "Connected"}}
	for _, n := range nodes {
		connected := "no"
		if n.IsConnected() {
			connected = "yes"
		}
		version := Cell{Text: fmt.Sprintf("%.3f-%d", n.Version, n.Rev), Class: ClassNeutral}
		if b.Settings.Legacy {
			version.Class = VersionStatus(n)
		}
		t.Rows = append(t.Rows, Row{
			{Text: n.Hostname, Class: ClassBox},
			{Text: n.NodeType, Class: ClassNeutral},
			{Text: n.Instance, Class: ClassNeutral},
			{Text: n.Username, Class: ClassNeutral},
			version,
			{Text: connected, Class: NodeStatus(n)},
		})
	}
	return t
}

func sensorStateText(s models.Sensor, node *models.Node) string {
	switch {
	case node == nil || !node.IsConnected():
		return "node offline"
	case s.ErrorState != models.SensorErrorOK:
		if s.ErrorMsg != "" {
			return s.ErrorState.String() + ": " + s.ErrorMsg
		}
		return s.ErrorState.String()
	case s.State == 1:
		return "triggered"
	default:
		return "normal"
	}
}

func (b PageBuilder) sensorsTable(data *models.Response, detailed bool) Table {
	sensors := append([]models.Sensor(nil), data.Sensors...)
	SortSensors(sensors, b.Settings.Legacy)
	idx := nodeIndex(data.Nodes)

	t := Table{Title: "Sensors", Columns: []string{"Description", "State"}}
	if detailed {
		t.Columns = append(t.Columns, "Host", "Data", "Last Updated", "Alert Levels")
	}
	for _, s := range sensors {
		node := idx[s.NodeID]
		row := Row{
			{Text: s.Description, Class: ClassBox},
			{Text: sensorStateText(s, node), Class: SensorStatus(s, node)},
		}
		if detailed {
			row = append(row,
				Cell{Text: hostname(idx, s.NodeID), Class: ClassNeutral},
				Cell{Text: s.Data.String(), Class: ClassNeutral},
				Cell{Text: b.formatTime(s.LastStateUpdated), Class: ClassNeutral},
				Cell{Text: b.levelNames(data, s.AlertLevels), Class: ClassNeutral},
			)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (b PageBuilder) alertsTable(data *models.Response) Table {
	alerts := append([]models.Alert(nil), data.Alerts...)
	SortAlerts(alerts)
	idx := nodeIndex(data.Nodes)

	t := Table{Title: "Alerts", Columns: []string{"Description", "Host", "Alert Levels"}}
	for _, a := range alerts {
		host := Cell{Text: hostname(idx, a.NodeID), Class: ClassFail}
		if n, ok := idx[a.NodeID]; ok {
			host.Class = NodeStatus(*n)
		}
		t.Rows = append(t.Rows, Row{
			{Text: a.Description, Class: ClassBox},
			host,
			{Text: b.levelNames(data, a.AlertLevels), Class: ClassNeutral},
		})
	}
	return t
}

func (b PageBuilder) managersTable(data *models.Response) Table {
	managers := append([]models.Manager(nil), data.Managers...)
	SortManagers(managers)
	idx := nodeIndex(data.Nodes)

	t := Table{Title: "Managers", Columns: []string{"Description", "Host"}}
	for _, m := range managers {
		host := Cell{Text: hostname(idx, m.NodeID), Class: ClassFail}
		if n, ok := idx[m.NodeID]; ok {
			host.Class = NodeStatus(*n)
		}
		t.Rows = append(t.Rows, Row{{Text: m.Description, Class: ClassBox}, host})
	}
	return t
}

func (b PageBuilder) sensorAlertsTable(data *models.Response, limit int) Table {
	alerts := append([]models.SensorAlert(nil), data.SensorAlerts...)
	SortSensorAlerts(alerts)
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}

	t := Table{Title: "Sensor Alerts", Columns: []string{"Time", "Description", "State", "Data", "Alert Levels"}}
	for _, a := range alerts {
		state := Cell{Text: "normal", Class: ClassNormal}
		if a.State == 1 {
			state = Cell{Text: "triggered", Class: ClassTriggered}
		}
		t.Rows = append(t.Rows, Row{
			{Text: b.formatTime(a.TimeReceived), Class: ClassNeutral},
			{Text: a.Description, Class: ClassBox},
			state,
			{Text: a.Data.String(), Class: ClassNeutral},
			{Text: b.levelNames(data, a.AlertLevels), Class: ClassNeutral},
		})
	}
	return t
}

func yesNo(v int) string {
	if v == 1 {
		return "yes"
	}
	return "no"
}

func (b PageBuilder) alertLevelsTable(data *models.Response) Table {
	levels := append([]models.AlertLevel(nil), data.AlertLevels...)
	SortAlertLevels(levels)

	t := Table{Title: "Alert Levels", Columns: []string{"Level", "Name"}}
	if b.Settings.Legacy {
		t.Columns = append(t.Columns, "Trigger Always", "SMTP", "To")
	} else {
		t.Columns = append(t.Columns, "Instrumentation", "Profiles")
	}

	profileNames := make(map[int]string, len(data.Profiles))
	for _, p := range data.Profiles {
		profileNames[p.ProfileID] = p.Name
	}

	for _, l := range levels {
		row := Row{
			{Text: strconv.Itoa(l.AlertLevel), Class: ClassBox},
			{Text: l.Name, Class: ClassNeutral},
		}
		switch {
		case l.NotificationSettings != nil:
			row = append(row,
				Cell{Text: yesNo(l.TriggerAlways), Class: ClassNeutral},
				Cell{Text: yesNo(l.SMTPActivated), Class: ClassNeutral},
				Cell{Text: l.ToAddr, Class: ClassNeutral},
			)
		case l.InstrumentationSettings != nil:
			names := make([]string, 0, len(l.Profiles))
			for _, id := range l.Profiles {
				if n, ok := profileNames[id]; ok {
					names = append(names, n)
				} else {
					names = append(names, strconv.Itoa(id))
				}
			}
			row = append(row,
				Cell{Text: yesNo(l.InstrumentationActive), Class: ClassNeutral},
				Cell{Text: strings.Join(names, ", "), Class: ClassNeutral},
			)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (b PageBuilder) eventsTable(data *models.Response) Table {
	events := append([]models.Event(nil), data.Events...)
	SortEvents(events)

	t := Table{Title: "Events", Columns: []string{"Time", "Type", "Details"}}
	for _, e := range events {
		t.Rows = append(t.Rows, Row{
			{Text: b.formatTime(e.TimeOccurred), Class: ClassNeutral},
			{Text: e.Type, Class: ClassBox},
			{Text: DescribeEvent(e), Class: ClassNeutral},
		})
	}
	return t
}

func stateText(state int) string {
	if state == 1 {
		return "triggered"
	}
	return "normal"
}

// DescribeEvent 事件明细的单行描述; 没有明细返回空串
func DescribeEvent(e models.Event) string {
	switch d := e.Detail.(type) {
	case *models.SensorAlertEvent:
		return strings.TrimSpace(fmt.Sprintf("%s %s %s", d.Description, stateText(d.State), d.Data.String()))
	case *models.StateChangeEvent:
		return strings.TrimSpace(fmt.Sprintf("%s: %s %s %s", d.Hostname, d.Description, stateText(d.State), d.Data.String()))
	case *models.ConnectedChangeEvent:
		status := "disconnected"
		if d.Connected == 1 {
			status = "connected"
		}
		return fmt.Sprintf("%s (%s/%s) %s", d.Hostname, d.NodeType, d.Instance, status)
	case *models.SensorTimeOutEvent:
		return fmt.Sprintf("%s: %s timed out (%s)", d.Hostname, d.Description, stateText(d.State))
	case *models.NewVersionEvent:
		return fmt.Sprintf("%s (%s): %.3f-%d available, using %.3f-%d",
			d.Hostname, d.Instance, d.NewVersion, d.NewRev, d.UsedVersion, d.UsedRev)
	case *models.NewOptionEvent:
		return fmt.Sprintf("%s = %g", d.OptionType, d.Value)
	case *models.NewNodeEvent:
		return fmt.Sprintf("%s (%s/%s)", d.Hostname, d.NodeType, d.Instance)
	case *models.NewSensorEvent:
		return fmt.Sprintf("%s: %s (%s)", d.Hostname, d.Description, stateText(d.State))
	case *models.NewAlertEvent:
		return fmt.Sprintf("%s: %s", d.Hostname, d.Description)
	case *models.NewManagerEvent:
		return fmt.Sprintf("%s: %s", d.Hostname, d.Description)
	case *models.ChangeOptionEvent:
		return fmt.Sprintf("%s: %g -> %g", d.OptionType, d.OldValue, d.NewValue)
	case *models.ChangeNodeEvent:
		return fmt.Sprintf("%s (%s/%s) -> %s (%s/%s)",
			d.OldHostname, d.OldNodeType, d.OldInstance, d.NewHostname, d.NewNodeType, d.NewInstance)
	case *models.ChangeSensorEvent:
		return fmt.Sprintf("%s -> %s", d.OldDescription, d.NewDescription)
	case *models.ChangeAlertEvent:
		return fmt.Sprintf("%s -> %s", d.OldDescription, d.NewDescription)
	case *models.ChangeManagerEvent:
		return fmt.Sprintf("%s -> %s", d.OldDescription, d.NewDescription)
	case *models.DeleteNodeEvent:
		return fmt.Sprintf("%s (%s/%s)", d.Hostname, d.NodeType, d.Instance)
	case *models.DeleteSensorEvent:
		return d.Description
	case *models.DeleteAlertEvent:
		return d.Description
	case *models.DeleteManagerEvent:
		return d.Description
	}
	return ""
}
