package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds the complete application configuration.
type Config struct {
	OpenAIAPIKey  string `toml:"-"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	SessionSecret string `toml:"-"`

	Addr               string   `toml:"addr"`
	TranscriptionModel string   `toml:"transcription_model"`
	TranslationModel   string   `toml:"translation_model"`
	TranscribeTimeout  Duration `toml:"transcribe_timeout"`
	TranslateTimeout   Duration `toml:"translate_timeout"`
	ThrottleInterval   Duration `toml:"throttle_interval"`
	Concurrency        int      `toml:"translation_concurrency"`
	SessionTTL         Duration `toml:"session_ttl"`
	TempDir            string   `toml:"temp_dir"`
	FFmpegPath         string   `toml:"ffmpeg_path"`
	FFprobePath        string   `toml:"ffprobe_path"`
}

// Duration wraps time.Duration so TOML files can say "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Addr:               ":3000",
		TranscriptionModel: "whisper-1",
		TranslationModel:   "gpt-3.5-turbo",
		TranscribeTimeout:  Duration{5 * time.Minute},
		TranslateTimeout:   Duration{2 * time.Minute},
		ThrottleInterval:   Duration{60 * time.Second},
		Concurrency:        4,
		SessionTTL:         Duration{time.Hour},
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
	}
}

// Load reads .env (if present), the optional TOML file named by
// VIDSCRIBE_CONFIG, then environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	cfg := Default()
	if path := os.Getenv("VIDSCRIBE_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto cfg.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *Duration, key string) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", key)
		}
		dst.Duration = d
		return nil
	}

	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.Addr, "VIDSCRIBE_ADDR")
	setString(&c.TranscriptionModel, "TRANSCRIPTION_MODEL")
	setString(&c.TranslationModel, "TRANSLATION_MODEL")
	setString(&c.TempDir, "VIDSCRIBE_TEMP_DIR")
	setString(&c.FFmpegPath, "FFMPEG_PATH")
	setString(&c.FFprobePath, "FFPROBE_PATH")

	for key, dst := range map[string]*Duration{
		"TRANSCRIBE_TIMEOUT": &c.TranscribeTimeout,
		"TRANSLATE_TIMEOUT":  &c.TranslateTimeout,
		"THROTTLE_INTERVAL":  &c.ThrottleInterval,
		"SESSION_TTL":        &c.SessionTTL,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	if v := getenv("TRANSLATION_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "TRANSLATION_CONCURRENCY")
		}
		c.Concurrency = n
	}
	return nil
}

// Validate reports settings the pipeline cannot start without.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("translation concurrency must not be negative")
	}
	if c.ThrottleInterval.Duration < 0 {
		return fmt.Errorf("throttle interval must not be negative")
	}
	return nil
}
