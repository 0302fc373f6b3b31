// Command signspeak turns speech into text with the Sarvam speech API and
// text into sign language video.
//
// Usage:
//
//	signspeak transcribe [--duration 5s | --file clip.wav] [--json]
//	signspeak sign "he wants an apple"
//	signspeak listen
//	signspeak serve [--addr :8080]
//	signspeak init-config
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/logging"
	"github.com/chaz8081/signspeak/internal/sarvam"
	"github.com/chaz8081/signspeak/internal/signs"
	"github.com/chaz8081/signspeak/internal/transcribe"
)

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

func init() {
	// OpenCV windows and the keyboard hook want the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	name, args := os.Args[1], os.Args[2:]
	var err error
	switch name {
	case "transcribe":
		err = runTranscribe(args)
	case "sign":
		err = runSign(args)
	case "listen":
		err = runListen(args)
	case "serve":
		err = runServe(args)
	case "init-config":
		err = runInitConfig(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "signspeak %s: %v\n", name, err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: signspeak <command> [flags]

Commands:
  transcribe   record (or read a WAV file) and print the transcript
  sign         play the sign videos for a sentence
  listen       push-to-talk: hold the hotkey, speak, get text (and signs)
  serve        run the HTTP API
  init-config  write the default config file

Run "signspeak <command> -h" for command flags.`)
}

// commonFlags are shared by every command that loads configuration.
type commonFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "path to config file (default: "+config.DefaultConfigPath()+")")
	fs.StringVar(&c.envFile, "env", ".env", "dotenv file with SARVAM_API_KEY")
	fs.StringVar(&c.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	return c
}

// app holds what every command needs after flag parsing.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *commonFlags) load() (*app, error) {
	if err := config.LoadEnv(c.envFile); err != nil {
		return nil, err
	}

	cfg, source, err := loadConfig(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded", zap.String("source", source))
	return &app{cfg: cfg, logger: logger}, nil
}

// loadConfig loads the config from path, or the default path when it
// exists, or the built-in defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, defaultPath, nil
	}
	return config.Default(), "defaults", nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// newTranscriber builds the API client and transcriber for the configured mode.
func (a *app) newTranscriber() (*transcribe.RemoteTranscriber, error) {
	api := a.cfg.API
	sc := sarvam.Config{
		APIKey:         api.APIKey(),
		BaseURL:        api.BaseURL,
		WithTimestamps: api.WithTimestamps,
		Timeout:        api.Timeout,
	}
	if api.Mode == "transcribe" {
		sc.TranscribeModel = api.ModelName()
	} else {
		sc.TranslateModel = api.ModelName()
	}

	client, err := sarvam.NewClient(sc, a.logger)
	if err != nil {
		return nil, fmt.Errorf("%w (set %s in the environment or %s)", err, api.KeyEnv, ".env")
	}
	return transcribe.New(a.cfg, client, a.logger)
}

func (a *app) dictionary() (*signs.Dictionary, error) {
	if a.cfg.Signs.Dictionary == "" {
		return signs.Default(), nil
	}
	return signs.LoadDictionary(a.cfg.Signs.Dictionary)
}

func (a *app) planOptions() signs.Options {
	return signs.Options{
		StripPunctuation: a.cfg.Signs.StripPunctuation,
		Fingerspell:      a.cfg.Signs.Fingerspell,
	}
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config, extra ...string) {
	fmt.Println("=== signspeak ===")
	fmt.Printf("  API:      %s (%s)\n", cfg.API.Mode, cfg.API.ModelName())
	if cfg.API.Mode == "transcribe" {
		fmt.Printf("  Language: %s\n", cfg.API.LanguageCode)
	}
	fmt.Printf("  Audio:    %dHz, %dch\n", cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Printf("  Output:   %s\n", cfg.Output.Method)
	fmt.Printf("  Render:   %s detector, %dx%d\n", cfg.Render.Detector, cfg.Render.Width, cfg.Render.Height)
	for _, line := range extra {
		fmt.Printf("  %s\n", line)
	}
	fmt.Printf("  Log:      %s\n", cfg.LogLevel)
	fmt.Println(strings.Repeat("=", 17))
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	fs.Parse(args)

	path, err := config.WriteDefault()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Printf("Config already exists at %s\n", config.DefaultConfigPath())
		return nil
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
