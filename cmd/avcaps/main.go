// Command avcaps reports which libavcodec calling conventions the installed
// library supports and probes codecs through them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pion/logging"
	"github.com/urfave/cli/v2"

	"github.com/thesyncim/avcodec"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "avcaps:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "avcaps",
		Usage:   "inspect libavcodec capabilities",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "warn", Usage: "trace, debug, info, warn, error or disabled"},
			&cli.StringFlag{Name: "avcodec", Usage: "path to libavcodec", EnvVars: []string{"AVCODEC_LIB_PATH"}},
			&cli.StringFlag{Name: "avutil", Usage: "path to libavutil", EnvVars: []string{"AVUTIL_LIB_PATH"}},
			&cli.StringFlag{Name: "shim", Usage: "path to libstream_avcodec", EnvVars: []string{"STREAM_AVCODEC_LIB_PATH"}},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: text or yaml (default: text on a terminal)"},
		},
		Commands: []*cli.Command{
			capsCommand(),
			probeCommand(),
		},
	}
}

// env is the state shared by subcommands.
type env struct {
	cfg    avcodec.Config
	lib    *avcodec.NativeLibrary
	logger logging.LoggerFactory
	out    *printer
}

func setup(c *cli.Context) (*env, error) {
	cfg := avcodec.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = avcodec.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = c.String("log-level")
	}
	if p := c.String("avcodec"); p != "" {
		cfg.Library.AVCodecPath = p
	}
	if p := c.String("avutil"); p != "" {
		cfg.Library.AVUtilPath = p
	}
	if p := c.String("shim"); p != "" {
		cfg.Library.ShimPath = p
	}

	factory := avcodec.NewLoggerFactory(cfg.LogLevel)
	cfg.Context.LoggerFactory = factory
	log := factory.NewLogger("avcaps")

	lib, err := avcodec.LoadLibrary(cfg.Library)
	if err != nil {
		return nil, err
	}
	codecPath, utilPath, shimPath := lib.Paths()
	log.Debugf("loaded %s, %s, %s", codecPath, utilPath, shimPath)

	return &env{
		cfg:    cfg,
		lib:    lib,
		logger: factory,
		out:    newPrinter(os.Stdout, outputFormat(c.String("format"))),
	}, nil
}

func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return formatText
	}
	return formatYAML
}
