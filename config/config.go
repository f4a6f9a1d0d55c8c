package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rafalpiotrowski/tx-guard/internal/ingest"
)

// Config is the runtime configuration of one processing run.
type Config struct {
	// Input is the path of the transaction CSV file.
	Input string
	// Buffer is the per-client mailbox capacity.
	Buffer int
	// OnMalformed decides whether a bad input row aborts the run or is
	// skipped.
	OnMalformed ingest.MalformedPolicy
	// JournalDir enables the audit journal when non-empty.
	JournalDir string
	// LogLevel is a zap level string (debug, info, warn, error).
	LogLevel string
	// Setup launches the interactive config wizard instead of a run.
	Setup bool
}

type configTmp struct {
	Input          string `yaml:"input"`
	BufferStr      string `yaml:"buffer,omitempty"`
	OnMalformedStr string `yaml:"on_malformed,omitempty"`
	JournalDir     string `yaml:"journal_dir,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
}

// Get reads configuration from a yaml file when --config is given,
// otherwise from CLI flags. The input file may also be passed as the first
// positional argument, matching `tx-guard transactions.csv` usage.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	input := flag.String("file", "", "path to transaction csv file")
	buffer := flag.Int("buffer", 32, "per-client mailbox capacity")
	onMalformed := flag.String("on-malformed", "abort", "policy for malformed input rows: abort or skip")
	journalDir := flag.String("journal", "", "directory for the audit journal (disabled when empty)")
	logLevel := flag.String("log-level", "error", "log level: debug, info, warn or error")
	setup := flag.Bool("setup", false, "run the interactive configuration wizard")

	flag.Parse()

	if *setup {
		return Config{Setup: true}, nil
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	path := *input
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		return Config{}, fmt.Errorf("no input file provided, use --file or a positional argument")
	}

	policy, err := ingest.ParseMalformedPolicy(*onMalformed)
	if err != nil {
		return Config{}, err
	}

	if *buffer <= 0 {
		return Config{}, fmt.Errorf("invalid --buffer=%d, must be positive", *buffer)
	}

	return Config{
		Input:           path,
		Buffer:          *buffer,
		OnMalformed:     policy,
		JournalDir:      *journalDir,
		LogLevel:        *logLevel,
	}, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	return fromTmp(tmp)
}

func fromTmp(tmp configTmp) (Config, error) {
	if tmp.Input == "" {
		return Config{}, fmt.Errorf("missing 'input' param in yaml config")
	}

	cfg := Config{
		Input:           tmp.Input,
		Buffer:          32,
		JournalDir:      tmp.JournalDir,
		LogLevel:        tmp.LogLevel,
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}

	if tmp.BufferStr != "" {
		buffer, err := strconv.Atoi(tmp.BufferStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'buffer' param in yaml config (must be an integer), error: %w", err)
		}
		if buffer <= 0 {
			return Config{}, fmt.Errorf("incorrect 'buffer' param in yaml config (must be positive), got: %d", buffer)
		}
		cfg.Buffer = buffer
	}

	policy, err := ingest.ParseMalformedPolicy(tmp.OnMalformedStr)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'on_malformed' param in yaml config, error: %w", err)
	}
	cfg.OnMalformed = policy

	return cfg, nil
}
