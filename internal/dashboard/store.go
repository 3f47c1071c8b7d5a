package dashboard

import (
	"time"

	"github.com/sqall01/alertR/internal/models"
)

// Store 客户端缓存: 最近一次获取的各分类数据和连接状态
type Store struct {
	Data         models.Response
	LastResponse time.Time

	// Stale 最近一次请求失败, 显示的是旧数据
	Stale     bool
	LastError string

	Online        bool
	LastMsgTime   int64
	lastMsgChange time.Time
}

// NewStore now 作为在线检测的起点
func NewStore(now time.Time) *Store {
	return &Store{lastMsgChange: now}
}

// Apply 合并一次成功的响应
func (s *Store) Apply(resp *models.Response, at time.Time) {
	s.Data.Merge(resp)
	s.LastResponse = at
	s.Stale = false
	s.LastError = ""
}

// MarkFailed 请求失败, 保留旧数据
func (s *Store) MarkFailed(err error) {
	s.Stale = true
	s.LastError = err.Error()
}

// NeedsFetch 缓存缺少分类, 超过 maxAge, 或分页页面缓存的行数少于页大小
func (s *Store) NeedsFetch(settings Settings, v View, now time.Time, maxAge time.Duration) bool {
	for _, c := range settings.RequiredCategories(v) {
		if !s.Data.Has(c) {
			return true
		}
	}
	if s.LastResponse.IsZero() || now.Sub(s.LastResponse) > maxAge {
		return true
	}
	switch v {
	case ViewSensorAlerts:
		return len(s.Data.SensorAlerts) < settings.SensorAlertsNumber
	case ViewEvents:
		return len(s.Data.Events) < settings.EventsNumber
	}
	return false
}

// MessageTime 最新的 msgTime (旧版本为 serverTime)
func (s *Store) MessageTime() (int64, bool) {
	for _, it := range s.Data.Internals {
		if it.Type == models.InternalMsgTime || it.Type == models.InternalServerTime {
			return int64(it.Value), true
		}
	}
	return 0, false
}

// CheckOnline msgTime 前进则在线; 超过 timeout 没有前进则离线
// 返回状态或时间戳是否变化
func (s *Store) CheckOnline(now time.Time, timeout time.Duration) bool {
	wasOnline, prevMsg := s.Online, s.LastMsgTime

	if msg, ok := s.MessageTime(); ok && msg > s.LastMsgTime {
		s.LastMsgTime = msg
		s.lastMsgChange = now
		s.Online = true
	} else if now.Sub(s.lastMsgChange) > timeout {
		s.Online = false
	}
	return wasOnline != s.Online || prevMsg != s.LastMsgTime
}
