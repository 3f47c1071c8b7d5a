package dashboard

import (
	"math"

	"github.com/Masterminds/semver/v3"

	"github.com/sqall01/alertR/internal/models"
)

// CellClass 单元格样式, 与网页版 CSS class 同名
type CellClass string

const (
	ClassNormal    CellClass = "normalTd"
	ClassFail      CellClass = "failTd"
	ClassTriggered CellClass = "triggeredTd"
	ClassNeutral   CellClass = "neutralTd"
	ClassError     CellClass = "errorTd"
	ClassBox       CellClass = "boxEntryTd"
)

// NodeStatus 在线为 normal; 持久节点掉线为 fail; 非持久节点掉线为 neutral
func NodeStatus(n models.Node) CellClass {
	switch {
	case n.IsConnected():
		return ClassNormal
	case n.ConnectionFailed():
		return ClassFail
	default:
		return ClassNeutral
	}
}

// SensorStatus 优先级: 节点掉线 > 错误状态 > 触发 > 正常
// node 为 nil 表示找不到所属节点, 按掉线处理
func SensorStatus(s models.Sensor, node *models.Node) CellClass {
	switch {
	case node == nil || !node.IsConnected():
		return ClassFail
	case s.ErrorState != models.SensorErrorOK:
		return ClassError
	case s.State == 1:
		return ClassTriggered
	default:
		return ClassNormal
	}
}

// alertrVersion 把 0.xyz 形式的版本号和 rev 转成 semver
func alertrVersion(version float64, rev int) *semver.Version {
	major := math.Floor(version)
	minor := math.Round((version - major) * 1000)
	if rev < 0 {
		rev = 0
	}
	return semver.New(uint64(major), uint64(minor), uint64(rev), "", "")
}

// VersionOutdated 旧 schema: 有更新的版本, 或版本相同但有更新的 rev
func VersionOutdated(n models.Node) bool {
	if n.NodeUpdateInfo == nil {
		return false
	}
	used := alertrVersion(n.Version, n.Rev)
	newest := alertrVersion(n.NewestVersion, n.NewestRev)
	return newest.GreaterThan(used)
}

// VersionStatus 版本单元格样式
func VersionStatus(n models.Node) CellClass {
	if VersionOutdated(n) {
		return ClassFail
	}
	return ClassNeutral
}
