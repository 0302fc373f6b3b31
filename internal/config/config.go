package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig    `yaml:"api"`
	Audio    AudioConfig  `yaml:"audio"`
	Hotkey   HotkeyConfig `yaml:"hotkey"`
	Output   OutputConfig `yaml:"output"`
	Signs    SignsConfig  `yaml:"signs"`
	Render   RenderConfig `yaml:"render"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

// APIConfig holds the speech API settings.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Mode           string        `yaml:"mode"` // "translate" or "transcribe"
	Model          string        `yaml:"model"`
	LanguageCode   string        `yaml:"language_code"`
	WithTimestamps bool          `yaml:"with_timestamps"`
	KeyEnv         string        `yaml:"key_env"`
	Timeout        time.Duration `yaml:"timeout"`
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate  uint32        `yaml:"sample_rate"`
	Channels    uint32        `yaml:"channels"`
	Duration    time.Duration `yaml:"duration"`
	MinDuration time.Duration `yaml:"min_duration"`
	SaveDir     string        `yaml:"save_dir"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
	Mode string   `yaml:"mode"` // "hold" or "toggle"
}

// OutputConfig controls where transcripts go.
type OutputConfig struct {
	Method         string `yaml:"method"` // "print", "type" or "paste"
	SignTranscript bool   `yaml:"sign_transcript"`
}

// SignsConfig holds the word-to-video lookup settings.
type SignsConfig struct {
	Dictionary       string        `yaml:"dictionary"`
	CacheDir         string        `yaml:"cache_dir"`
	Fingerspell      bool          `yaml:"fingerspell"`
	StripPunctuation bool          `yaml:"strip_punctuation"`
	UnmappedPause    time.Duration `yaml:"unmapped_pause"`
	Buffer           int           `yaml:"buffer"`
	// ObjectStore serves s3://bucket/key locators when Endpoint is set.
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
}

// ObjectStoreConfig points at a MinIO or S3 compatible endpoint.
type ObjectStoreConfig struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
	UseSSL       bool   `yaml:"use_ssl"`
}

// Credentials reads the access and secret keys from the environment.
func (o *ObjectStoreConfig) Credentials() (accessKey, secretKey string) {
	return os.Getenv(o.AccessKeyEnv), os.Getenv(o.SecretKeyEnv)
}

// RenderConfig holds playback and landmark drawing settings.
type RenderConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Window    string  `yaml:"window"`
	ShowFPS   bool    `yaml:"show_fps"`
	ShowWord  bool    `yaml:"show_word"`
	Detector  string  `yaml:"detector"` // "sidecar", "openpose" or "none"
	PoseProto string  `yaml:"pose_proto"`
	PoseModel string  `yaml:"pose_model"`
	HandProto string  `yaml:"hand_proto"`
	HandModel string  `yaml:"hand_model"`
	Threshold float64 `yaml:"threshold"`
	// SkipPose replaces the built-in pose skip list when set. An explicit
	// empty list draws every pose connection.
	SkipPose []int   `yaml:"skip_pose,omitempty"`
	Output   string  `yaml:"output"`
	FPS      float64 `yaml:"fps"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default model identifiers per API mode.
const (
	TranslateModel  = "saaras:v1"
	TranscribeModel = "saarika:v1"
)

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "signspeak")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultCacheDir returns the directory downloaded sign videos are kept in.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "signspeak", "videos")
	}
	return filepath.Join(home, ".cache", "signspeak", "videos")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.sarvam.ai",
			Mode:           "translate",
			LanguageCode:   "ta-IN",
			WithTimestamps: true,
			KeyEnv:         "SARVAM_API_KEY",
			Timeout:        60 * time.Second,
		},
		Audio: AudioConfig{
			SampleRate:  16000,
			Channels:    1,
			Duration:    5 * time.Second,
			MinDuration: 300 * time.Millisecond,
		},
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "r"},
			Mode: "hold",
		},
		Output: OutputConfig{
			Method: "print",
		},
		Signs: SignsConfig{
			CacheDir:      DefaultCacheDir(),
			UnmappedPause: time.Second,
			Buffer:        3,
			ObjectStore: ObjectStoreConfig{
				AccessKeyEnv: "MINIO_ACCESS_KEY_ID",
				SecretKeyEnv: "MINIO_SECRET_ACCESS_KEY",
				UseSSL:       true,
			},
		},
		Render: RenderConfig{
			Width:     500,
			Height:    500,
			Window:    "Landmark Canvas",
			ShowWord:  true,
			Detector:  "sidecar",
			Threshold: 0.1,
			FPS:       25,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in path settings is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Audio.SaveDir = expandTilde(cfg.Audio.SaveDir)
	cfg.Signs.Dictionary = expandTilde(cfg.Signs.Dictionary)
	cfg.Signs.CacheDir = expandTilde(cfg.Signs.CacheDir)
	cfg.Render.PoseProto = expandTilde(cfg.Render.PoseProto)
	cfg.Render.PoseModel = expandTilde(cfg.Render.PoseModel)
	cfg.Render.HandProto = expandTilde(cfg.Render.HandProto)
	cfg.Render.HandModel = expandTilde(cfg.Render.HandModel)
	cfg.Render.Output = expandTilde(cfg.Render.Output)

	return cfg, nil
}

// LoadEnv loads environment files (default ".env") into the process
// environment. Files that do not exist are ignored; variables already set
// are never overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// APIKey returns the credential from the environment variable named by KeyEnv.
func (a *APIConfig) APIKey() string {
	return os.Getenv(a.KeyEnv)
}

// ModelName returns the configured model, or the default for the mode.
func (a *APIConfig) ModelName() string {
	if a.Model != "" {
		return a.Model
	}
	if a.Mode == "transcribe" {
		return TranscribeModel
	}
	return TranslateModel
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}

	switch c.API.Mode {
	case "translate", "transcribe":
	default:
		return fmt.Errorf("api.mode must be \"translate\" or \"transcribe\", got %q", c.API.Mode)
	}

	if c.API.KeyEnv == "" {
		return fmt.Errorf("api.key_env must not be empty")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}

	if c.Audio.Duration <= 0 {
		return fmt.Errorf("audio.duration must be > 0")
	}

	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	switch c.Output.Method {
	case "print", "type", "paste":
	default:
		return fmt.Errorf("output.method must be \"print\", \"type\" or \"paste\", got %q", c.Output.Method)
	}

	if c.Signs.Buffer < 1 {
		return fmt.Errorf("signs.buffer must be >= 1")
	}

	if c.Signs.UnmappedPause < 0 {
		return fmt.Errorf("signs.unmapped_pause must not be negative")
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render.width and render.height must be > 0")
	}

	switch c.Render.Detector {
	case "sidecar", "none":
	case "openpose":
		if c.Render.PoseProto == "" || c.Render.PoseModel == "" {
			return fmt.Errorf("render.detector openpose requires pose_proto and pose_model")
		}
		if (c.Render.HandProto == "") != (c.Render.HandModel == "") {
			return fmt.Errorf("render.hand_proto and render.hand_model must be set together")
		}
	default:
		return fmt.Errorf("render.detector must be sidecar, openpose, or none, got %q", c.Render.Detector)
	}

	if c.Render.Output != "" && c.Render.FPS <= 0 {
		return fmt.Errorf("render.fps must be > 0 when render.output is set")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level to a zap level. Unknown values map to info.
func ParseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

const defaultConfigHeader = `# signspeak configuration
#
# api.mode: "translate" sends speech to the speech-to-text-translate endpoint
# and returns English; "transcribe" keeps the spoken language.
# api.with_timestamps only applies to "transcribe".
# The API key is read from the environment variable named by api.key_env
# (a .env file in the working directory is loaded first).
#
# render.detector: "sidecar" reads <video>.landmarks.json next to each clip,
# "openpose" runs OpenCV DNN models, "none" shows the raw video.
# render.skip_pose replaces the built-in list of pose points left undrawn;
# leave it unset to keep the built-in list.

`

// WriteDefault writes the default config to DefaultConfigPath. It returns the
// written path, or "" if a config file already exists.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	content := append([]byte(defaultConfigHeader), data...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
