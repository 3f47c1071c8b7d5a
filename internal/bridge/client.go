// Package bridge 通过 unix socket 把选项变更发给本地 alertR manager 客户端
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sqall01/alertR/internal/models"
	"go.uber.org/zap"
)

// ErrCommandRejected 对端返回的 result 不是 "ok"
var ErrCommandRejected = errors.New("command rejected")

const maxResponseSize = 1024

// Message 发送给本地 manager 的消息
type Message struct {
	Message string        `json:"message"`
	Payload OptionPayload `json:"payload"`
}

// OptionPayload option 消息内容
type OptionPayload struct {
	OptionType string `json:"optionType"`
	Value      int    `json:"value"`
	TimeDelay  int    `json:"timeDelay"`
}

type response struct {
	Payload struct {
		Result string `json:"result"`
	} `json:"payload"`
}

// Client unix socket 命令客户端
type Client struct {
	socketPath string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient timeout 同时用于连接和读写
func NewClient(socketPath string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout, logger: logger}
}

// SetAlertSystemActive 启用/停用报警系统
func (c *Client) SetAlertSystemActive(ctx context.Context, active bool) error {
	value := 0
	if active {
		value = 1
	}
	return c.SendOption(ctx, models.OptionAlertSystemActive, value)
}

// ChangeProfile 切换 profile
func (c *Client) ChangeProfile(ctx context.Context, profileID int) error {
	return c.SendOption(ctx, models.OptionProfile, profileID)
}

// SendOption 发送一条 option 消息并等待 result == "ok"
func (c *Client) SendOption(ctx context.Context, optionType string, value int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("could not connect to local manager client: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	msg := Message{
		Message: "option",
		Payload: OptionPayload{OptionType: optionType, Value: value, TimeDelay: 0},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal option message: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return fmt.Errorf("failed to send option message: %w", err)
	}

	buf := make([]byte, maxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("failed to read server response: %w", err)
	}

	var resp response
	if err := json.Unmarshal(buf[:n], &resp); err != nil {
		return fmt.Errorf("could not decode server response: %w", err)
	}
	if resp.Payload.Result != "ok" {
		return fmt.Errorf("%w: received response is not 'ok': %s", ErrCommandRejected, resp.Payload.Result)
	}

	c.logger.Info("Option change accepted",
		zap.String("option_type", optionType),
		zap.Int("value", value),
	)
	return nil
}
