package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sqall01/alertR/internal/aggregator"
	"github.com/sqall01/alertR/internal/dashboard"
	"github.com/sqall01/alertR/internal/models"
)

// 与 PHP 版本一致的错误文本
const (
	msgDataNotSet   = "Error: $data not set correctly."
	msgQueryFailed  = "Error: database query failed."
	msgBridgeFailed = "Error: could not send command to local manager client: "
)

// DataService 聚合查询
type DataService interface {
	Aggregate(ctx context.Context, req aggregator.Request) ([]byte, error)
	Snapshot(ctx context.Context, req aggregator.Request) (*models.Response, error)
}

// CommandSender 选项变更命令通道
type CommandSender interface {
	SetAlertSystemActive(ctx context.Context, active bool) error
	ChangeProfile(ctx context.Context, profileID int) error
}

// Pinger 健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// ManagerHandlerConfig 页面参数
type ManagerHandlerConfig struct {
	Settings        dashboard.Settings
	SettleDelay     time.Duration
	Refresh         time.Duration
	LivenessTimeout time.Duration
	Location        *time.Location
}

// ManagerHandler mobile manager 的 HTTP 接口
type ManagerHandler struct {
	cfg     ManagerHandlerConfig
	service DataService
	bridge  CommandSender
	pinger  Pinger
	logger  *zap.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// NewManagerHandler bridge 为 nil 时忽略 activate/profilechange 参数
func NewManagerHandler(cfg ManagerHandlerConfig, service DataService, bridge CommandSender, pinger Pinger, logger *zap.Logger) *ManagerHandler {
	if cfg.Refresh <= 0 {
		cfg.Refresh = 10 * time.Second
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = 80 * time.Second
	}
	return &ManagerHandler{
		cfg:     cfg,
		service: service,
		bridge:  bridge,
		pinger:  pinger,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// GetJSON GET /getJson?data[]=nodes&data[]=sensors...
// 没有 data[] 参数时返回 400, 不访问数据库
func (h *ManagerHandler) GetJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := aggregator.ParseQuery(r.URL.Query())
	if err != nil {
		writeText(w, http.StatusBadRequest, msgDataNotSet)
		return
	}

	body, err := h.service.Aggregate(r.Context(), req)
	if err != nil {
		h.logger.Error("Failed to aggregate manager data",
			zap.String("categories", req.CacheKey()),
			zap.Error(err),
		)
		writeText(w, http.StatusInternalServerError, msgQueryFailed)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

// Index GET / 服务端渲染的页面
// ?activate=0|1 和 ?profilechange=<id> 通过 bridge 发送命令, 成功后重定向回页面
func (h *ManagerHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	view, err := dashboard.ParseView(q.Get("view"))
	if err != nil {
		view = dashboard.ViewOverview
	}

	if h.bridge != nil && (q.Has("activate") || q.Has("profilechange")) {
		if err := h.sendCommand(r.Context(), q.Has("activate"), parseInt(q.Get("activate"), 0), parseInt(q.Get("profilechange"), 0)); err != nil {
			h.logger.Warn("Failed to send command to manager client", zap.Error(err))
			writeText(w, http.StatusBadGateway, msgBridgeFailed+err.Error())
			return
		}
		// 等待 server 处理完变更再显示
		h.sleep(r.Context(), h.cfg.SettleDelay)
		http.Redirect(w, r, "/?view="+string(view), http.StatusSeeOther)
		return
	}

	resp, err := h.service.Snapshot(r.Context(), h.cfg.Settings.RequestFor(view))
	if err != nil {
		h.logger.Error("Failed to load view", zap.String("view", string(view)), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgQueryFailed)
		return
	}

	page := h.buildPage(view, resp, h.cfg.Settings)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	enc := dashboard.HTMLEncoder{Refresh: h.cfg.Refresh, Actions: h.bridge != nil}
	if err := enc.Encode(w, page); err != nil {
		h.logger.Warn("Failed to write page", zap.Error(err))
	}
}

func (h *ManagerHandler) sendCommand(ctx context.Context, activate bool, active, profileID int) error {
	if activate {
		return h.bridge.SetAlertSystemActive(ctx, active == 1)
	}
	return h.bridge.ChangeProfile(ctx, profileID)
}

// buildPage 服务端直接读数据库, 在线状态按 msgTime 距今是否超时判断
func (h *ManagerHandler) buildPage(view dashboard.View, resp *models.Response, settings dashboard.Settings) dashboard.Page {
	now := h.now()
	st := dashboard.NewStore(now)
	st.Apply(resp, now)
	if msg, ok := st.MessageTime(); ok {
		st.LastMsgTime = msg
		st.Online = now.Sub(time.Unix(msg, 0)) <= h.cfg.LivenessTimeout
	}
	b := dashboard.PageBuilder{Settings: settings, Location: h.cfg.Location}
	return b.Build(view, st)
}

// Export GET /export.xlsx 导出所有分类
func (h *ManagerHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.service.Snapshot(r.Context(), aggregator.Request{Categories: h.exportCategories()})
	if err != nil {
		h.logger.Error("Failed to load export data", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgQueryFailed)
		return
	}

	// 导出全部 sensor alert, 不截断
	settings := h.cfg.Settings
	settings.SensorAlertsNumber = 0

	var tables []dashboard.Table
	for _, v := range []dashboard.View{
		dashboard.ViewNodes, dashboard.ViewSensors, dashboard.ViewAlerts, dashboard.ViewManagers,
		dashboard.ViewAlertLevels, dashboard.ViewSensorAlerts, dashboard.ViewEvents,
	} {
		tables = append(tables, h.buildPage(v, resp, settings).Tables...)
	}

	data, err := GenerateWorkbook(tables)
	if err != nil {
		h.logger.Error("Failed to generate workbook", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error: export failed.")
		return
	}

	filename := fmt.Sprintf("alertr-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ManagerHandler) exportCategories() []models.Category {
	var out []models.Category
	for _, c := range models.AllCategories {
		if h.cfg.Settings.Legacy && c == models.CategoryProfiles {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Healthz GET /healthz
func (h *ManagerHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		status := "unavailable"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": status, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
