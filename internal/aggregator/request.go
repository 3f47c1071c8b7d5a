package aggregator

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sqall01/alertR/internal/models"
	"github.com/sqall01/alertR/internal/repository"
)

// ErrCategoriesNotSet data[] 参数缺失
var ErrCategoriesNotSet = errors.New("data categories not set correctly")

// query 参数名
const (
	ParamData                   = "data[]"
	ParamSensorAlertsRangeStart = "sensorAlertsRangeStart"
	ParamSensorAlertsNumber     = "sensorAlertsNumber"
	ParamEventsRangeStart       = "eventsRangeStart"
	ParamEventsNumber           = "eventsNumber"
)

// Request 一次聚合请求
type Request struct {
	Categories        []models.Category // 去重, 按 models.AllCategories 顺序
	SensorAlertsRange *repository.Range
	EventsRange       *repository.Range
}

// ParseQuery 解析 ?data[]=...&sensorAlertsRangeStart=..&sensorAlertsNumber=..
// data[] 不存在或全部为空值时返回 ErrCategoriesNotSet; 未知分类忽略
func ParseQuery(q url.Values) (Request, error) {
	raw, ok := q[ParamData]
	if !ok || allBlank(raw) {
		return Request{}, ErrCategoriesNotSet
	}
	return Request{
		Categories:        NormalizeCategories(raw),
		SensorAlertsRange: parseRange(q, ParamSensorAlertsRangeStart, ParamSensorAlertsNumber),
		EventsRange:       parseRange(q, ParamEventsRangeStart, ParamEventsNumber),
	}, nil
}

func allBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeCategories 大小写不敏感, 去重, 忽略未知名称
func NormalizeCategories(names []string) []models.Category {
	seen := map[models.Category]bool{}
	for _, n := range names {
		if c, ok := models.ParseCategory(n); ok {
			seen[c] = true
		}
	}
	out := []models.Category{}
	for _, c := range models.AllCategories {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// parseRange 两个参数都存在且为整数, start >= 0, number > 0 时才生效
func parseRange(q url.Values, startKey, numberKey string) *repository.Range {
	if !q.Has(startKey) || !q.Has(numberKey) {
		return nil
	}
	start, err := strconv.Atoi(strings.TrimSpace(q.Get(startKey)))
	if err != nil {
		return nil
	}
	number, err := strconv.Atoi(strings.TrimSpace(q.Get(numberKey)))
	if err != nil {
		return nil
	}
	rng := &repository.Range{Start: start, Number: number}
	if !rng.Valid() {
		return nil
	}
	return rng
}

// Has 是否请求了分类 c
func (r Request) Has(c models.Category) bool {
	for _, x := range r.Categories {
		if x == c {
			return true
		}
	}
	return false
}

// Query 编码为 URL 参数 (客户端使用)
func (r Request) Query() url.Values {
	q := url.Values{}
	for _, c := range r.Categories {
		q.Add(ParamData, string(c))
	}
	if r.SensorAlertsRange.Valid() {
		q.Set(ParamSensorAlertsRangeStart, strconv.Itoa(r.SensorAlertsRange.Start))
		q.Set(ParamSensorAlertsNumber, strconv.Itoa(r.SensorAlertsRange.Number))
	}
	if r.EventsRange.Valid() {
		q.Set(ParamEventsRangeStart, strconv.Itoa(r.EventsRange.Start))
		q.Set(ParamEventsNumber, strconv.Itoa(r.EventsRange.Number))
	}
	return q
}

// CacheKey 规范化后的请求标识, 相同语义的请求得到相同的 key
func (r Request) CacheKey() string {
	names := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		names = append(names, string(c))
	}
	sort.Strings(names)

	key := strings.Join(names, ",")
	if r.Has(models.CategorySensorAlerts) && r.SensorAlertsRange.Valid() {
		key += ":sa=" + strconv.Itoa(r.SensorAlertsRange.Start) + "+" + strconv.Itoa(r.SensorAlertsRange.Number)
	}
	if r.Has(models.CategoryEvents) && r.EventsRange.Valid() {
		key += ":ev=" + strconv.Itoa(r.EventsRange.Start) + "+" + strconv.Itoa(r.EventsRange.Number)
	}
	return key
}
