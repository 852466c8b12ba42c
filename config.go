package avcodec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pion/logging"
	"gopkg.in/yaml.v3"
)

// LibraryConfig tells the loader where to find the native libraries.
// Empty fields fall back to the standard search locations.
type LibraryConfig struct {
	AVCodecPath string   `yaml:"avcodec_path"` // libavcodec shared object
	AVUtilPath  string   `yaml:"avutil_path"`  // libavutil shared object
	ShimPath    string   `yaml:"shim_path"`    // libstream_avcodec field accessor shim
	SearchDirs  []string `yaml:"search_dirs"`  // extra directories tried first
}

// DefaultLibraryConfig returns a configuration filled from the environment:
// AVCODEC_LIB_PATH, AVUTIL_LIB_PATH, STREAM_AVCODEC_LIB_PATH and
// STREAM_SDK_LIB_PATH (a directory).
func DefaultLibraryConfig() LibraryConfig {
	cfg := LibraryConfig{
		AVCodecPath: os.Getenv("AVCODEC_LIB_PATH"),
		AVUtilPath:  os.Getenv("AVUTIL_LIB_PATH"),
		ShimPath:    os.Getenv("STREAM_AVCODEC_LIB_PATH"),
	}
	if dir := os.Getenv("STREAM_SDK_LIB_PATH"); dir != "" {
		cfg.SearchDirs = append(cfg.SearchDirs, dir)
	}
	return cfg
}

// ContextConfig configures a CodecContext.
type ContextConfig struct {
	// OutputBufferSize is the capacity of the encoder output buffer.
	OutputBufferSize int `yaml:"output_buffer_size"`

	// Capabilities overrides capability detection when set.
	Capabilities *Capabilities `yaml:"capabilities,omitempty"`

	// LoggerFactory creates the context logger. nil uses pion's default.
	LoggerFactory logging.LoggerFactory `yaml:"-"`
}

// DefaultContextConfig returns a default context configuration.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		OutputBufferSize: DefaultOutputBufferSize,
	}
}

// Config is the file form of the package configuration.
type Config struct {
	Library  LibraryConfig `yaml:"library"`
	Context  ContextConfig `yaml:"context"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultConfig returns defaults with environment overrides applied.
func DefaultConfig() Config {
	return Config{
		Library:  DefaultLibraryConfig(),
		Context:  DefaultContextConfig(),
		LogLevel: "warn",
	}
}

// ParseConfig decodes YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Context.OutputBufferSize < 0 {
		return Config{}, fmt.Errorf("%w: output_buffer_size %d", ErrInvalidArgument, cfg.Context.OutputBufferSize)
	}
	if cfg.Context.OutputBufferSize == 0 {
		cfg.Context.OutputBufferSize = DefaultOutputBufferSize
	}
	cfg.Context.LoggerFactory = NewLoggerFactory(cfg.LogLevel)
	return cfg, nil
}

// LoadConfig reads a YAML configuration file. Relative library paths are
// resolved against the file's directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	cfg.Library.AVCodecPath = resolve(cfg.Library.AVCodecPath)
	cfg.Library.AVUtilPath = resolve(cfg.Library.AVUtilPath)
	cfg.Library.ShimPath = resolve(cfg.Library.ShimPath)
	for i, dir := range cfg.Library.SearchDirs {
		cfg.Library.SearchDirs[i] = resolve(dir)
	}
	return cfg, nil
}
