// internal/config/config.go
package config

type Config struct {
	SuperIO SuperIOConfig `yaml:"superio"`
	Serial  SerialConfig  `yaml:"serial"`
	Ports   []PortConfig  `yaml:"ports"`
	Status  StatusConfig  `yaml:"status"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SUPER I/O ----

// The mailbox ports themselves (0x2E/0x2F) are fixed and not configurable.
type SuperIOConfig struct {
	LockFile   string `yaml:"lock_file"`
	LockWaitMs int    `yaml:"lock_wait_ms"` // 0 = single attempt
}

// ---- UART DRIVER ----

type SerialConfig struct {
	Devices   []string `yaml:"devices"` // tty lines handed out to discovered ports
	TimeoutMs int      `yaml:"timeout_ms"`
}

// ---- PER-PORT LINE SETTINGS (optional) ----

type PortConfig struct {
	LDN      uint8  `yaml:"ldn"`
	Baud     uint32 `yaml:"baud"`
	DataBits uint8  `yaml:"data_bits"`
	StopBits uint8  `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`

	LinkCheck *LinkCheckConfig `yaml:"link_check"`
}

// LinkCheckConfig describes one Modbus RTU read used to prove the line works.
type LinkCheckConfig struct {
	SlaveID   uint8  `yaml:"slave_id"`
	Address   uint16 `yaml:"address"`
	Quantity  uint16 `yaml:"quantity"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STATUS ----

type StatusConfig struct {
	File       string `yaml:"file"`
	IntervalMs int    `yaml:"interval_ms"` // 0 = write once after init
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}
