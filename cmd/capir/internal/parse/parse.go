package parse

import (
	"context"
	"os"

	"github.com/broady/capir"
	"github.com/broady/capir/cmd/capir/internal/input"
	"github.com/broady/capir/emit"
	"github.com/broady/capir/sink"
)

type Cmd struct {
	input.Flags

	Format string `help:"Output format: json, yaml, pp or c." short:"f"`
	Out    string `help:"Output directory (default: stdout)." short:"o"`
	Strict bool   `help:"Fail when any declaration was dropped."`
}

func (c *Cmd) Run(ctx context.Context) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if c.Strict {
		cfg.Strict = true
	}

	ext := capir.FromConfig(cfg)
	if cfg.Format != "" {
		f, err := emit.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		ext = ext.Format(f)
	}

	if cfg.OutDir == "" || cfg.OutDir == "-" {
		_, err = ext.ToSink(ctx, sink.NewWriterSink(os.Stdout))
		return err
	}
	_, err = ext.ToDir(ctx, cfg.OutDir)
	return err
}
