package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/capir/cmd/capir/internal/check"
	"github.com/broady/capir/cmd/capir/internal/parse"
	"github.com/broady/capir/internal/clog"
)

type CLI struct {
	LogLevel string `help:"Log level." enum:"debug,info,warn,error" default:"warn" name:"log-level"`
	NoColor  bool   `help:"Disable colored log output." env:"NO_COLOR"`

	Parse   parse.Cmd  `cmd:"" help:"Parse a header and write its IR."`
	Check   check.Cmd  `cmd:"" help:"Parse a header and report diagnostics without writing output."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("capir"),
		kong.Description("Extract the API surface of a C library header into a binding IR."),
		kong.UsageOnError(),
	)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		kctx.FatalIfErrorf(err)
	}
	_, ctx := clog.NewTerminalLogger(context.Background(), os.Stderr, level, cli.NoColor)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
