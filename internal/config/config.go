package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. All configuration is static for the process
// lifetime; there is no hot reload.
const (
	EnvBridgeSecret     = "VYAAS_BRIDGE_SECRET"
	EnvBridgeListen     = "VYAAS_BRIDGE_LISTEN"
	EnvBridgeURL        = "VYAAS_BRIDGE_URL"
	EnvSessionURL       = "VYAAS_SESSION_URL"
	EnvSessionSecret    = "VYAAS_SESSION_TOKEN_SECRET"
	EnvSessionRoom      = "VYAAS_ROOM_NAME"
	EnvWhatsAppURL      = "VYAAS_WHATSAPP_URL"
	EnvPollInterval     = "VYAAS_POLL_INTERVAL_SECONDS"
	EnvMonitorInterval  = "VYAAS_MONITOR_INTERVAL_SECONDS"
	EnvCPUThreshold     = "VYAAS_CPU_THRESHOLD"
	EnvRAMThreshold     = "VYAAS_RAM_THRESHOLD"
	EnvDiskThreshold    = "VYAAS_DISK_THRESHOLD"
	EnvProcThreshold    = "VYAAS_PROCESS_CPU_THRESHOLD"
	EnvAlertCooldown    = "VYAAS_ALERT_COOLDOWN_SECONDS"
	EnvMonitorExclude   = "VYAAS_MONITOR_EXCLUDE"
	EnvDiskPath         = "VYAAS_DISK_PATH"
	EnvEnableNATMapping = "VYAAS_NAT_MAP"
	EnvEnableRelay      = "VYAAS_CHANNEL_RELAY"
	EnvCommandTimeout   = "VYAAS_COMMAND_TIMEOUT_SECONDS"
)

// Config holds every knob the bridge and agent processes read at startup.
type Config struct {
	// Secret is the shared secret presented in every command envelope. It may
	// be a plaintext value or a bcrypt hash produced by tools/secret_tool;
	// hashes start with "$2" and are compared with bcrypt.
	Secret string

	ListenAddr    string
	BridgeBaseURL string

	SessionURL         string
	SessionTokenSecret string
	RoomName           string

	WhatsAppServiceURL string
	PollInterval       time.Duration

	MonitorInterval     time.Duration
	CPUThreshold        float64
	RAMThreshold        float64
	DiskThreshold       float64
	ProcessCPUThreshold float64
	AlertCooldown       time.Duration
	// ProcessExclusions are process names (case-insensitive, exact match)
	// skipped by the per-process alert check, typically the assistant's own
	// processes.
	ProcessExclusions []string
	DiskPath          string

	EnableNATMapping bool
	EnableRelay      bool
	CommandTimeout   time.Duration
}

// Load reads configuration from the environment. A .env file next to the
// working directory is loaded first, best-effort, so a desktop install can
// ship credentials in a file instead of the machine environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Secret:              os.Getenv(EnvBridgeSecret),
		ListenAddr:          envString(EnvBridgeListen, ":8765"),
		BridgeBaseURL:       envString(EnvBridgeURL, "http://127.0.0.1:8765"),
		SessionURL:          os.Getenv(EnvSessionURL),
		SessionTokenSecret:  os.Getenv(EnvSessionSecret),
		RoomName:            envString(EnvSessionRoom, "vyaas_assist_room"),
		WhatsAppServiceURL:  envString(EnvWhatsAppURL, "http://127.0.0.1:3001"),
		PollInterval:        envSeconds(EnvPollInterval, 2*time.Second),
		MonitorInterval:     envSeconds(EnvMonitorInterval, 2*time.Second),
		CPUThreshold:        envFloat(EnvCPUThreshold, 90),
		RAMThreshold:        envFloat(EnvRAMThreshold, 90),
		DiskThreshold:       envFloat(EnvDiskThreshold, 90),
		ProcessCPUThreshold: envFloat(EnvProcThreshold, 80),
		AlertCooldown:       envSeconds(EnvAlertCooldown, 60*time.Second),
		ProcessExclusions:   envList(EnvMonitorExclude, defaultExclusions()),
		DiskPath:            envString(EnvDiskPath, defaultDiskPath()),
		EnableNATMapping:    envBool(EnvEnableNATMapping),
		EnableRelay:         envBool(EnvEnableRelay),
		CommandTimeout:      envSeconds(EnvCommandTimeout, 30*time.Second),
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("%s is not set; refusing to start an unauthenticated bridge", EnvBridgeSecret)
	}
	return cfg, nil
}

func defaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

func defaultExclusions() []string {
	return []string{"vyaas-bridge", "vyaas-bridge.exe", "vyaas-agent", "vyaas-agent.exe", "System Idle Process"}
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envBool(key string) bool {
	val := os.Getenv(key)
	if val == "" {
		return false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Second
}

func envList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
