// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Algorithm names accepted by the engine.
const (
	AlgoViterbi  = "viterbi"
	AlgoForward  = "forward"
	AlgoBackward = "backward"
	AlgoAll      = "all"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Config is the run configuration. Every section has a usable default so a
// missing file or a partial one is fine.
type Config struct {
	Engine EngineConfig `yaml:"engine" json:"engine"`
	Output OutputConfig `yaml:"output" json:"output"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`
	Trace  TraceConfig  `yaml:"trace" json:"trace"`
}

type EngineConfig struct {
	ScoreType string `yaml:"score_type" json:"score_type" validate:"oneof=probability odds null"`
	Algorithm string `yaml:"algorithm" json:"algorithm" validate:"oneof=viterbi forward backward all"`
	Threads   int    `yaml:"threads" json:"threads" validate:"gte=0"` // 0 = all CPUs
	Posterior bool   `yaml:"posterior" json:"posterior"`
}

type OutputConfig struct {
	Format              string `yaml:"format" json:"format" validate:"oneof=text json jsonl"`
	Header              bool   `yaml:"header" json:"header"`
	Pretty              bool   `yaml:"pretty" json:"pretty"`
	Width               int    `yaml:"width" json:"width" validate:"gte=10,lte=1000"`
	Sort                bool   `yaml:"sort" json:"sort"`
	Rank                bool   `yaml:"rank" json:"rank"`
	NoAlignmentExitCode int    `yaml:"no_alignment_exit_code" json:"no_alignment_exit_code" validate:"gte=0,lte=255"`
}

type StoreConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Path     string `yaml:"path" json:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory bool   `yaml:"in_memory" json:"in_memory"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json" json:"json"`
	Quiet bool   `yaml:"quiet" json:"quiet"`
}

// TraceConfig selects where spans go. "none" keeps the no-op provider.
type TraceConfig struct {
	Exporter string `yaml:"exporter" json:"exporter" validate:"oneof=none stdout"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr" json:"addr" validate:"required,hostname_port"`
	WatchModel bool   `yaml:"watch_model" json:"watch_model"`
	MaxSeqLen  int    `yaml:"max_seq_len" json:"max_seq_len" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: EngineConfig{ScoreType: "probability", Algorithm: AlgoViterbi},
		Output: OutputConfig{Format: FormatText, Header: true, Width: 60, NoAlignmentExitCode: 1},
		Log:    LogConfig{Level: "warn"},
		Server: ServerConfig{Addr: "127.0.0.1:8080", MaxSeqLen: 10000},
		Trace:  TraceConfig{Exporter: "none"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
