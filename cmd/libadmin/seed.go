package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goliatone/go-library-admin/components/admin"
)

type seedValidateCmd struct {
	File string `required:"" type:"existingfile" help:"Seed manifest to validate."`
}

func (cmd *seedValidateCmd) Run(_ context.Context) error {
	return cmd.run(os.Stdout)
}

func (cmd *seedValidateCmd) run(out io.Writer) error {
	doc, err := admin.ReadSeedManifest(cmd.File)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %s is valid: %d books, %d members, %d loans\n",
		doc.Source, len(doc.Books), len(doc.Members), len(doc.Loans))
	return nil
}

type seedExportCmd struct {
	Out       string `required:"" type:"path" help:"Destination YAML file."`
	Name      string `default:"library-default" help:"Manifest name."`
	Overwrite bool   `help:"Replace the destination if it exists."`
}

func (cmd *seedExportCmd) Run(_ context.Context) error {
	return cmd.run(os.Stdout)
}

func (cmd *seedExportCmd) run(out io.Writer) error {
	if _, err := os.Stat(cmd.Out); err == nil && !cmd.Overwrite {
		return fmt.Errorf("libadmin: %s already exists (use --overwrite to replace)", cmd.Out)
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("libadmin: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("libadmin: create %s: %w", cmd.Out, err)
	}
	defer file.Close()

	if err := admin.EncodeSeedManifest(file, admin.ManifestFromSeed(cmd.Name, admin.DefaultSeed())); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ wrote %s\n", cmd.Out)
	return nil
}
