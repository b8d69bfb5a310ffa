package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/internal/validator"
)

// Validate crawls the site from its layout props and reports broken
// references and templates that fail to parse.
func Validate(ctx context.Context, opts Options, w io.Writer) error {
	site, err := createSite(opts, createLogger(opts))
	if err != nil {
		return err
	}
	defer site.Close()

	loader := site.Manager.Loader()
	if loader == nil {
		return errors.New("nothing to validate: no template source configured")
	}
	reg := site.Manager.Registry()
	known := func(name string) bool {
		_, ok := reg.Helper(name)
		return ok
	}

	report, err := validator.New(loader, known).Validate(ctx, site.Props)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d templates valid\n", len(report.Checked))
	return nil
}
