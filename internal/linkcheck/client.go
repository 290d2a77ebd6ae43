// internal/linkcheck/client.go
package linkcheck

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Client is the one Modbus call a link check needs.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]byte, error)
	Close() error
}

// Dialer opens a Client for cfg.
type Dialer func(cfg Config) (Client, error)

// Config is one probe: line parameters plus the register to read.
type Config struct {
	Device   string
	Baud     uint32
	DataBits uint8
	StopBits uint8
	Parity   string

	SlaveID  uint8
	Address  uint16
	Quantity uint16
	Timeout  time.Duration
}

func (c Config) validate() error {
	if c.Device == "" {
		return errors.New("linkcheck: device required")
	}
	if c.Baud == 0 {
		return errors.New("linkcheck: baud required")
	}
	if c.SlaveID == 0 || c.SlaveID > 247 {
		return fmt.Errorf("linkcheck: slave id %d out of range", c.SlaveID)
	}
	if c.Quantity == 0 || c.Quantity > 125 {
		return fmt.Errorf("linkcheck: quantity %d out of range", c.Quantity)
	}
	return nil
}

// rtuClient is a single RTU connection on one serial line.
type rtuClient struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// DialRTU opens the serial line as a Modbus RTU master.
func DialRTU(cfg Config) (Client, error) {
	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = int(cfg.Baud)
	h.DataBits = int(cfg.DataBits)
	h.StopBits = int(cfg.StopBits)
	h.Parity = cfg.Parity
	h.SlaveId = cfg.SlaveID
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &rtuClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *rtuClient) ReadHoldingRegisters(addr, qty uint16) ([]byte, error) {
	return c.client.ReadHoldingRegisters(addr, qty)
}

func (c *rtuClient) Close() error {
	return c.handler.Close()
}

func unpackRegisters(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return out
}
