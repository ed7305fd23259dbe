package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Input and output backends selectable from the config file.
const (
	GPSSourceSerial = "serial"
	GPSSourceMock   = "mock"
	GPSSourceFile   = "file"

	LightSourceADS1115 = "ads1115"
	LightSourceMock    = "mock"

	ButtonSourceGPIO  = "gpio"
	ButtonSourceStdin = "stdin"
	ButtonSourceNone  = "none"

	DisplayBackendSSD1306 = "ssd1306"
	DisplayBackendPNG     = "png"

	BacklightBackendPanel = "panel"
	BacklightBackendSysfs = "sysfs"
	BacklightBackendNone  = "none"
)

// Config holds all application configuration values.
type Config struct {
	// GPS
	GPSSource         string
	GPSSerialPort     string
	GPSBaudRate       int
	GPSReplayFile     string
	GPSReplayInterval int // milliseconds between replayed lines

	// Ambient light sensor
	LightSource  string
	LightI2CBus  string // "" picks the first bus
	LightI2CAddr uint16
	LightChannel int // ADS1115 single-ended input 0-3

	// Unit toggle button
	ButtonSource   string
	ButtonPin      string
	ButtonRepeatMS int

	// Display
	DisplayBackend string
	DisplayI2CBus  string
	DisplayI2CAddr uint16
	DisplayPNGPath string
	DisplayWidth   int // frame size the layout is drawn at
	DisplayHeight  int
	AssetDir       string

	// Backlight
	BacklightBackend   string
	BacklightSysfsPath string

	// Loop timing
	ScreenUpdateInterval int // milliseconds
	LoopIdleMS           int // sleep per loop iteration, 0 = busy poll

	// Backlight controller
	MinBacklightLevel   float64
	MaxBacklightLevel   float64
	MaxAmbientLevel     float64
	BacklightAdjustStep float64
	AmbientScale        float64 // raw ADC average -> ambient level

	// MQTT
	MQTTBroker          string // "" disables telemetry on the device
	MQTTClientIDDevice  string
	MQTTClientIDWeb     string
	MQTTClientIDConsole string
	TopicTelemetry      string

	// Web Server
	WebServerPort int
}

// Default returns the configuration of the handheld as shipped. A config
// file only needs the keys it changes.
func Default() *Config {
	return &Config{
		GPSSource:         GPSSourceSerial,
		GPSSerialPort:     "/dev/serial0",
		GPSBaudRate:       9600,
		GPSReplayInterval: 200,

		LightSource:  LightSourceADS1115,
		LightI2CAddr: 0x48,
		LightChannel: 0,

		ButtonSource:   ButtonSourceGPIO,
		ButtonPin:      "GPIO12",
		ButtonRepeatMS: 200,

		DisplayBackend: DisplayBackendSSD1306,
		DisplayI2CAddr: 0x3C,
		DisplayPNGPath: "frame.png",
		DisplayWidth:   320,
		DisplayHeight:  240,
		AssetDir:       "assets",

		BacklightBackend:   BacklightBackendPanel,
		BacklightSysfsPath: "/sys/class/backlight/backlight/brightness",

		ScreenUpdateInterval: 1000,
		LoopIdleMS:           1,

		MinBacklightLevel:   0.5,
		MaxBacklightLevel:   1.0,
		MaxAmbientLevel:     180,
		BacklightAdjustStep: 0.05,
		AmbientScale:        0.01007,

		MQTTClientIDDevice:  "gps-compass-device",
		MQTTClientIDWeb:     "gps-compass-web",
		MQTTClientIDConsole: "gps-compass-console",
		TopicTelemetry:      "compass/telemetry",

		WebServerPort: 8080,
	}
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file on top of Default().
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return ParseYAML(file)
	}
	return Parse(file)
}

// ParseYAML reads the same keys as Parse from a flat YAML mapping. Keys are
// case-insensitive, so gps_source and GPS_SOURCE are the same setting.
func ParseYAML(r io.Reader) (*Config, error) {
	values := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid yaml config: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Default()
	for _, k := range keys {
		if err := cfg.setValue(strings.ToUpper(k), strings.TrimSpace(values[k])); err != nil {
			return nil, fmt.Errorf("config key %s: %w", k, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads KEY=VALUE lines from r on top of Default(). Blank lines and
// lines starting with # are skipped; unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

func oneOf(key, value string, allowed ...string) (string, error) {
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// GPS
	case "GPS_SOURCE":
		c.GPSSource, err = oneOf(key, value, GPSSourceSerial, GPSSourceMock, GPSSourceFile)
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)
	case "GPS_REPLAY_FILE":
		c.GPSReplayFile = value
	case "GPS_REPLAY_INTERVAL":
		c.GPSReplayInterval, err = parseInt(key, value)

	// Light sensor
	case "LIGHT_SOURCE":
		c.LightSource, err = oneOf(key, value, LightSourceADS1115, LightSourceMock)
	case "LIGHT_I2C_BUS":
		c.LightI2CBus = value
	case "LIGHT_I2C_ADDR":
		c.LightI2CAddr, err = parseAddr(key, value)
	case "LIGHT_CHANNEL":
		ch, perr := parseInt(key, value)
		if perr != nil {
			return perr
		}
		if ch < 0 || ch > 3 {
			return fmt.Errorf("LIGHT_CHANNEL must be 0-3, got %d", ch)
		}
		c.LightChannel = ch

	// Button
	case "BUTTON_SOURCE":
		c.ButtonSource, err = oneOf(key, value, ButtonSourceGPIO, ButtonSourceStdin, ButtonSourceNone)
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "BUTTON_REPEAT_MS":
		c.ButtonRepeatMS, err = parseInt(key, value)

	// Display
	case "DISPLAY_BACKEND":
		c.DisplayBackend, err = oneOf(key, value, DisplayBackendSSD1306, DisplayBackendPNG)
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		c.DisplayI2CAddr, err = parseAddr(key, value)
	case "DISPLAY_PNG_PATH":
		c.DisplayPNGPath = value
	case "DISPLAY_WIDTH":
		c.DisplayWidth, err = parseInt(key, value)
	case "DISPLAY_HEIGHT":
		c.DisplayHeight, err = parseInt(key, value)
	case "ASSET_DIR":
		c.AssetDir = value

	// Backlight
	case "BACKLIGHT_BACKEND":
		c.BacklightBackend, err = oneOf(key, value, BacklightBackendPanel, BacklightBackendSysfs, BacklightBackendNone)
	case "BACKLIGHT_SYSFS_PATH":
		c.BacklightSysfsPath = value

	// Timing
	case "SCREEN_UPDATE_INTERVAL":
		c.ScreenUpdateInterval, err = parseInt(key, value)
	case "LOOP_IDLE_MS":
		c.LoopIdleMS, err = parseInt(key, value)

	// Backlight controller
	case "MIN_BACKLIGHT_LEVEL":
		c.MinBacklightLevel, err = parseFloat(key, value)
	case "MAX_BACKLIGHT_LEVEL":
		c.MaxBacklightLevel, err = parseFloat(key, value)
	case "MAX_AMBIENT_LEVEL":
		c.MaxAmbientLevel, err = parseFloat(key, value)
	case "BACKLIGHT_ADJUST_STEP":
		c.BacklightAdjustStep, err = parseFloat(key, value)
	case "AMBIENT_SCALE":
		c.AmbientScale, err = parseFloat(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_DEVICE":
		c.MQTTClientIDDevice = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_TELEMETRY":
		c.TopicTelemetry = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that the selected backends have what they need and that
// the backlight range makes sense.
func (c *Config) validate() error {
	switch c.GPSSource {
	case GPSSourceSerial:
		if c.GPSSerialPort == "" {
			return fmt.Errorf("GPS_SERIAL_PORT is required")
		}
		if c.GPSBaudRate <= 0 {
			return fmt.Errorf("GPS_BAUD_RATE is required")
		}
	case GPSSourceFile:
		if c.GPSReplayFile == "" {
			return fmt.Errorf("GPS_REPLAY_FILE is required")
		}
		if c.GPSReplayInterval <= 0 {
			return fmt.Errorf("GPS_REPLAY_INTERVAL must be positive")
		}
	}
	if c.ButtonSource == ButtonSourceGPIO && c.ButtonPin == "" {
		return fmt.Errorf("BUTTON_PIN is required")
	}
	if c.ButtonRepeatMS < 0 {
		return fmt.Errorf("BUTTON_REPEAT_MS must not be negative")
	}
	if c.DisplayBackend == DisplayBackendPNG && c.DisplayPNGPath == "" {
		return fmt.Errorf("DISPLAY_PNG_PATH is required")
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("DISPLAY_WIDTH and DISPLAY_HEIGHT must be positive")
	}
	if c.BacklightBackend == BacklightBackendSysfs && c.BacklightSysfsPath == "" {
		return fmt.Errorf("BACKLIGHT_SYSFS_PATH is required")
	}
	if c.BacklightBackend == BacklightBackendPanel && c.DisplayBackend != DisplayBackendSSD1306 {
		return fmt.Errorf("BACKLIGHT_BACKEND=panel needs DISPLAY_BACKEND=ssd1306")
	}
	if c.ScreenUpdateInterval <= 0 {
		return fmt.Errorf("SCREEN_UPDATE_INTERVAL must be positive")
	}
	if c.LoopIdleMS < 0 {
		return fmt.Errorf("LOOP_IDLE_MS must not be negative")
	}
	if c.MinBacklightLevel < 0 || c.MaxBacklightLevel > 1 || c.MinBacklightLevel > c.MaxBacklightLevel {
		return fmt.Errorf("backlight range [%v, %v] must lie within [0, 1]", c.MinBacklightLevel, c.MaxBacklightLevel)
	}
	if c.MaxAmbientLevel <= 0 {
		return fmt.Errorf("MAX_AMBIENT_LEVEL must be positive")
	}
	if c.BacklightAdjustStep <= 0 {
		return fmt.Errorf("BACKLIGHT_ADJUST_STEP must be positive")
	}
	if c.AmbientScale <= 0 {
		return fmt.Errorf("AMBIENT_SCALE must be positive")
	}
	if c.TopicTelemetry == "" {
		return fmt.Errorf("TOPIC_TELEMETRY is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
