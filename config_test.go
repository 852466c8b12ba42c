package avcodec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLibraryEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"AVCODEC_LIB_PATH", "AVUTIL_LIB_PATH", "STREAM_AVCODEC_LIB_PATH", "STREAM_SDK_LIB_PATH"} {
		t.Setenv(name, "")
	}
}

func TestDefaultLibraryConfig_Env(t *testing.T) {
	clearLibraryEnv(t)
	assert.Equal(t, LibraryConfig{}, DefaultLibraryConfig())

	t.Setenv("AVCODEC_LIB_PATH", "/opt/ffmpeg/lib/libavcodec.so.54")
	t.Setenv("STREAM_AVCODEC_LIB_PATH", "/opt/stream/libstream_avcodec.so")
	t.Setenv("STREAM_SDK_LIB_PATH", "/opt/stream/lib")

	cfg := DefaultLibraryConfig()
	assert.Equal(t, "/opt/ffmpeg/lib/libavcodec.so.54", cfg.AVCodecPath)
	assert.Empty(t, cfg.AVUtilPath)
	assert.Equal(t, "/opt/stream/libstream_avcodec.so", cfg.ShimPath)
	assert.Equal(t, []string{"/opt/stream/lib"}, cfg.SearchDirs)
}

func TestParseConfig(t *testing.T) {
	clearLibraryEnv(t)
	cfg, err := ParseConfig([]byte(`
log_level: debug
library:
  avcodec_path: /usr/lib/libavcodec.so.53
  search_dirs: [/opt/ffmpeg/lib]
context:
  output_buffer_size: 65536
  capabilities:
    open2: true
    decode_audio4: true
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/usr/lib/libavcodec.so.53", cfg.Library.AVCodecPath)
	assert.Equal(t, []string{"/opt/ffmpeg/lib"}, cfg.Library.SearchDirs)
	assert.Equal(t, 65536, cfg.Context.OutputBufferSize)
	require.NotNil(t, cfg.Context.Capabilities)
	assert.Equal(t, Capabilities{Open2: true, DecodeAudio4: true}, *cfg.Context.Capabilities)
	assert.Equal(t, GenerationTransitional, cfg.Context.Capabilities.Generation())

	f, ok := cfg.Context.LoggerFactory.(*logging.DefaultLoggerFactory)
	require.True(t, ok)
	assert.Equal(t, logging.LogLevelDebug, f.DefaultLogLevel)
}

func TestParseConfig_Defaults(t *testing.T) {
	clearLibraryEnv(t)
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultOutputBufferSize, cfg.Context.OutputBufferSize)
	assert.Nil(t, cfg.Context.Capabilities)
	assert.NotNil(t, cfg.Context.LoggerFactory)

	cfg, err = ParseConfig([]byte("context:\n  output_buffer_size: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputBufferSize, cfg.Context.OutputBufferSize)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("context:\n  output_buffer_size: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseConfig([]byte("library: [not, a, map]"))
	assert.Error(t, err)
}

func TestLoadConfig_RelativePaths(t *testing.T) {
	clearLibraryEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "avcodec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
library:
  avcodec_path: /abs/libavcodec.so.54
  shim_path: lib/libstream_avcodec.so
  search_dirs: [lib, /opt/lib]
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/abs/libavcodec.so.54", cfg.Library.AVCodecPath)
	assert.Equal(t, filepath.Join(dir, "lib", "libstream_avcodec.so"), cfg.Library.ShimPath)
	assert.Equal(t, []string{filepath.Join(dir, "lib"), "/opt/lib"}, cfg.Library.SearchDirs)
	assert.Empty(t, cfg.Library.AVUtilPath)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.LogLevel
	}{
		{"trace", logging.LogLevelTrace},
		{"DEBUG", logging.LogLevelDebug},
		{" info ", logging.LogLevelInfo},
		{"warn", logging.LogLevelWarn},
		{"error", logging.LogLevelError},
		{"disabled", logging.LogLevelDisabled},
		{"off", logging.LogLevelDisabled},
		{"", logging.LogLevelWarn},
		{"verbose", logging.LogLevelWarn},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
