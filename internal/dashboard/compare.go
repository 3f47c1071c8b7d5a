package dashboard

import (
	"sort"
	"strings"

	"github.com/sqall01/alertR/internal/models"
)

// 排序规则与网页版一致, 都是稳定排序

// NodeLess 未连接的在前, 然后按 nodeType, instance, hostname, id
func NodeLess(a, b models.Node) bool {
	if a.Connected != b.Connected {
		return a.Connected < b.Connected
	}
	if a.NodeType != b.NodeType {
		return a.NodeType < b.NodeType
	}
	if a.Instance != b.Instance {
		return a.Instance < b.Instance
	}
	if a.Hostname != b.Hostname {
		return a.Hostname < b.Hostname
	}
	return a.ID < b.ID
}

func descriptionLess(a, b string, aID, bID int, fold bool) bool {
	if fold {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	if a != b {
		return a < b
	}
	return aID < bID
}

// SortNodes 原地排序
func SortNodes(nodes []models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return NodeLess(nodes[i], nodes[j]) })
}

// SortSensors 描述忽略大小写, 旧版本区分大小写
func SortSensors(sensors []models.Sensor, legacy bool) {
	sort.SliceStable(sensors, func(i, j int) bool {
		return descriptionLess(sensors[i].Description, sensors[j].Description, sensors[i].ID, sensors[j].ID, !legacy)
	})
}

func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return descriptionLess(alerts[i].Description, alerts[j].Description, alerts[i].ID, alerts[j].ID, false)
	})
}

func SortManagers(managers []models.Manager) {
	sort.SliceStable(managers, func(i, j int) bool {
		return descriptionLess(managers[i].Description, managers[j].Description, managers[i].ID, managers[j].ID, false)
	})
}

// SortSensorAlerts 最新的在前
func SortSensorAlerts(alerts []models.SensorAlert) {
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].TimeReceived > alerts[j].TimeReceived })
}

// SortEvents 最新的在前, 同一时间按 id 倒序
func SortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TimeOccurred != events[j].TimeOccurred {
			return events[i].TimeOccurred > events[j].TimeOccurred
		}
		return events[i].ID > events[j].ID
	})
}

func SortAlertLevels(levels []models.AlertLevel) {
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].AlertLevel < levels[j].AlertLevel })
}
