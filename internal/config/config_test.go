package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 200<<20 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 200<<20)
	}
	if cfg.Display.DefaultPageSize != 10 || cfg.Display.DefaultPage != 1 {
		t.Errorf("Display defaults = %d/%d, want 10/1", cfg.Display.DefaultPageSize, cfg.Display.DefaultPage)
	}
	if cfg.Session.CookieName != "rr_session" {
		t.Errorf("Session.CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Report.MissingWarnRatio != 0.5 {
		t.Errorf("Report.MissingWarnRatio = %v, want 0.5", cfg.Report.MissingWarnRatio)
	}
	if !cfg.Report.Correlations {
		t.Error("Report.Correlations should default to true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":               "9090",
		"UPLOAD_MAX_CONCURRENT":     "10",
		"LOG_LEVEL":                 "debug",
		"DISPLAY_DEFAULT_PAGE_SIZE": "25",
		"REPORT_MISSING_WARN_RATIO": "0.25",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Display.DefaultPageSize != 25 {
		t.Errorf("Display.DefaultPageSize = %d, want 25", cfg.Display.DefaultPageSize)
	}
	if cfg.Report.MissingWarnRatio != 0.25 {
		t.Errorf("Report.MissingWarnRatio = %v, want 0.25", cfg.Report.MissingWarnRatio)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"PORT": "3000"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}

	cfg, err = LoadFrom(env(map[string]string{"PORT": "3000", "SERVER_PORT": "4000"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("primary variable should win: Server.Port = %d, want 4000", cfg.Server.Port)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	var target struct {
		Key string `env:"SECRET_KEY" required:"true"`
	}
	err := loadStruct(reflect.ValueOf(&target).Elem(), env(nil))
	if err == nil {
		t.Fatal("loadStruct() expected error for missing SECRET_KEY")
	}
	if !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Errorf("error should mention SECRET_KEY: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT":  "45s",
		"UPLOAD_MAX_WAIT_TIME": "1m30s",
		"SESSION_IDLE_TTL":     "30m",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Errorf("Session.IdleTTL = %v, want 30m", cfg.Session.IdleTTL)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{"SERVER_PORT": "eighty"}))
	if err == nil {
		t.Fatal("LoadFrom() expected error for non-numeric port")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should mention SERVER_PORT: %v", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if !reflect.DeepEqual(cfg.Security.TrustedProxies, expected) {
		t.Errorf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, expected)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		mention string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"page size too small", func(c *Config) { c.Display.DefaultPageSize = 4 }, "DISPLAY_DEFAULT_PAGE_SIZE"},
		{"page size too large", func(c *Config) { c.Display.DefaultPageSize = 101 }, "DISPLAY_DEFAULT_PAGE_SIZE"},
		{"zero default page", func(c *Config) { c.Display.DefaultPage = 0 }, "DISPLAY_DEFAULT_PAGE"},
		{"missing ratio", func(c *Config) { c.Report.MissingWarnRatio = 1.5 }, "REPORT_MISSING_WARN_RATIO"},
		{"bad proxy", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.1"} }, "TRUSTED_PROXIES"},
		{"api key without keys", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"sweep without interval", func(c *Config) { c.Session.SweepInterval = 0 }, "SESSION_SWEEP_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error should mention %s: %v", tt.mention, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksAPIKeys(t *testing.T) {
	cfg := validConfig(t)
	cfg.Security.APIKeys = []string{"super-secret-key"}
	str := cfg.String()
	if strings.Contains(str, "super-secret-key") {
		t.Error("String() should mask API keys")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
