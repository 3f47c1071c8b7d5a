package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/sqall01/alertR/internal/aggregator"
	"github.com/sqall01/alertR/internal/models"
)

// ErrStaleResponse 响应返回时用户已切换到其他页面
var ErrStaleResponse = errors.New("response belongs to a view that is no longer active")

// ControllerConfig Controller 参数
type ControllerConfig struct {
	PollInterval     time.Duration
	LivenessInterval time.Duration
	LivenessTimeout  time.Duration
	RequestTimeout   time.Duration
	RetryMax         time.Duration
	InitialView      View
	Settings         Settings
	Location         *time.Location
}

func (cfg *ControllerConfig) setDefaults() {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.LivenessInterval <= 0 {
		cfg.LivenessInterval = 2 * time.Second
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = 80 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = cfg.PollInterval
	}
	if cfg.InitialView == "" {
		cfg.InitialView = ViewOverview
	}
}

type fetchResult struct {
	view View
	resp *models.Response
	err  error
}

// Controller 客户端状态机
// 所有状态只在 loop goroutine 中修改; 网络请求在独立 goroutine 中进行, 结果通过 results 送回
type Controller struct {
	cfg      ControllerConfig
	fetcher  Fetcher
	renderer Renderer
	builder  PageBuilder
	logger   *zap.Logger
	now      func() time.Time

	store    *Store
	current  View
	inFlight map[View]bool
	retry    *backoff.ExponentialBackOff

	pollTimer *time.Timer
	pollC     <-chan time.Time

	commands chan func(context.Context)
	results  chan fetchResult

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	fetches sync.WaitGroup
}

// NewController 创建 Controller, 调用 Start 后开始工作
func NewController(cfg ControllerConfig, fetcher Fetcher, renderer Renderer, logger *zap.Logger) *Controller {
	cfg.setDefaults()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = time.Second
	retry.MaxInterval = cfg.RetryMax
	retry.MaxElapsedTime = 0
	retry.Reset()

	c := &Controller{
		cfg:      cfg,
		fetcher:  fetcher,
		renderer: renderer,
		builder:  PageBuilder{Settings: cfg.Settings, Location: cfg.Location},
		logger:   logger,
		now:      time.Now,
		current:  cfg.InitialView,
		inFlight: make(map[View]bool),
		retry:    retry,
		commands: make(chan func(context.Context)),
		results:  make(chan fetchResult, len(Views)),
	}
	c.store = NewStore(c.now())
	return c
}

// Start 启动事件循环, 立即加载初始页面
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return errors.New("controller already started")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.store = NewStore(c.now())

	go c.loop(ctx)
	return nil
}

// Stop 停止事件循环并等待进行中的请求返回
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	c.fetches.Wait()
}

// ChangeOutput 切换页面
func (c *Controller) ChangeOutput(v View) {
	c.do(func(ctx context.Context) { c.changeOutput(ctx, v) })
}

// SetSensorAlertsNumber 修改 sensorAlerts 页面显示的条数
func (c *Controller) SetSensorAlertsNumber(n int) {
	if n <= 0 {
		return
	}
	c.do(func(ctx context.Context) {
		c.cfg.Settings.SensorAlertsNumber = n
		c.builder.Settings = c.cfg.Settings
		if c.current == ViewSensorAlerts {
			c.requestData(ctx, c.current)
		}
	})
}

// Refresh 立即重新请求当前页面
func (c *Controller) Refresh() {
	c.do(func(ctx context.Context) { c.requestData(ctx, c.current) })
}

// do 在 loop goroutine 中执行; 未启动或已停止时丢弃
func (c *Controller) do(fn func(context.Context)) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case c.commands <- fn:
	case <-done:
	}
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)

	liveness := time.NewTicker(c.cfg.LivenessInterval)
	defer liveness.Stop()
	defer c.stopPoll()

	c.changeOutput(ctx, c.current)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.commands:
			fn(ctx)
		case r := <-c.results:
			if err := c.handleResult(r); err != nil && !errors.Is(err, ErrStaleResponse) {
				c.logger.Warn("Failed to fetch manager data", zap.String("view", string(r.view)), zap.Error(err))
			}
		case <-c.pollC:
			c.pollC = nil
			c.requestData(ctx, c.current)
		case <-liveness.C:
			c.checkOnline()
		}
	}
}

// changeOutput 缓存可用时直接渲染, 否则请求数据
func (c *Controller) changeOutput(ctx context.Context, v View) {
	c.current = v
	if c.store.NeedsFetch(c.cfg.Settings, v, c.now(), c.cfg.PollInterval) {
		c.requestData(ctx, v)
		return
	}
	c.render()
	if c.inFlight[v] {
		// 请求完成后再重新计时
		c.stopPoll()
		return
	}
	c.armPoll(c.cfg.PollInterval)
}

// requestData 同一页面同时最多一个请求
func (c *Controller) requestData(ctx context.Context, v View) {
	c.stopPoll()
	if c.inFlight[v] {
		return
	}
	c.inFlight[v] = true

	req := c.cfg.Settings.RequestFor(v)
	c.fetches.Add(1)
	go c.fetch(ctx, v, req)
}

func (c *Controller) fetch(ctx context.Context, v View, req aggregator.Request) {
	defer c.fetches.Done()

	fctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	resp, err := c.fetcher.Fetch(fctx, req)
	cancel()

	select {
	case c.results <- fetchResult{view: v, resp: resp, err: err}:
	case <-ctx.Done():
	}
}

// handleResult 非当前页面的响应只合并到缓存, 不渲染; 失败时保留旧数据并按退避时间重试
func (c *Controller) handleResult(r fetchResult) error {
	delete(c.inFlight, r.view)

	if r.view != c.current {
		if r.err == nil {
			c.store.Apply(r.resp, c.now())
		}
		c.logger.Debug("Skipping render of inactive view", zap.String("view", string(r.view)), zap.String("current", string(c.current)))
		return ErrStaleResponse
	}

	if r.err != nil {
		c.store.MarkFailed(r.err)
		c.render()
		c.armPoll(c.retry.NextBackOff())
		return r.err
	}

	c.store.Apply(r.resp, c.now())
	c.retry.Reset()
	c.store.CheckOnline(c.now(), c.cfg.LivenessTimeout)
	c.render()
	c.armPoll(c.cfg.PollInterval)
	return nil
}

func (c *Controller) checkOnline() {
	if c.store.CheckOnline(c.now(), c.cfg.LivenessTimeout) {
		c.render()
	}
}

func (c *Controller) render() {
	page := c.builder.Build(c.current, c.store)
	if err := c.renderer.Render(page); err != nil {
		c.logger.Warn("Failed to render view", zap.String("view", string(c.current)), zap.Error(err))
	}
}

func (c *Controller) armPoll(d time.Duration) {
	c.stopPoll()
	c.pollTimer = time.NewTimer(d)
	c.pollC = c.pollTimer.C
}

func (c *Controller) stopPoll() {
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
	c.pollC = nil
}
