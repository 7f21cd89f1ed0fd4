package check

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/broady/capir"
	"github.com/broady/capir/cmd/capir/internal/input"
	"github.com/broady/capir/ir"
)

type Cmd struct {
	input.Flags

	Validate bool `help:"Also check that prefixed type references resolve." default:"true" negatable:""`
}

func (c *Cmd) Run(ctx context.Context) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}
	cfg.Strict = true

	res, err := capir.FromConfig(cfg).Extract(ctx)
	if res != nil {
		report(os.Stdout, res.Document, c.Validate)
	}
	return err
}

func report(w io.Writer, doc *ir.Document, validate bool) {
	meta := doc.Metadata()
	if meta.Version != "" {
		fmt.Fprintf(w, "✓ %s version %s\n", meta.Source, meta.Version)
	}
	fmt.Fprintf(w, "✓ %d functions, %d enums, %d structs, %d callbacks, %d typedefs\n",
		len(doc.Functions()), len(doc.Enums()), len(doc.Structs()), len(doc.Callbacks()), len(doc.Typedefs()))

	for _, d := range doc.Diagnostics() {
		mark := "✗"
		if d.Severity() == ir.SeverityWarning {
			mark = "!"
		}
		fmt.Fprintf(w, "%s %s\n", mark, d.Error())
	}

	if !validate {
		return
	}
	errs := doc.Validate()
	for _, err := range errs {
		fmt.Fprintf(w, "! %s\n", err)
	}
	if len(errs) == 0 {
		fmt.Fprintln(w, "✓ All type references resolvable")
	}
}
