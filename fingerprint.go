package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/aperture-data/sensor.report/internal/prnu"
	"github.com/aperture-data/sensor.report/internal/report"
	"github.com/aperture-data/sensor.report/internal/store"
)

// runFingerprint builds a sensor fingerprint from reference frames and
// stores it with a chain-of-custody manifest of the input files.
func runFingerprint(args []string) error {
	fs := flag.NewFlagSet("fingerprint", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Path to the fingerprint database")
	migrationsDir := fs.String("migrations", defaultMigrationsDir, "Path to the migrations directory")
	label := fs.String("label", "", "Label for the stored fingerprint (required)")
	pngOut := fs.String("png", "", "Optional path to render the fingerprint map as PNG")
	var af analysisFlags
	af.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *label == "" {
		return fmt.Errorf("-label is required")
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("no reference image files given")
	}

	dn, minRef, workers, _, err := af.resolve()
	if err != nil {
		return err
	}
	if len(paths) < minRef {
		return &prnu.InsufficientReferenceFramesError{Got: len(paths), Need: minRef}
	}

	// Hash reference files before touching the pixels so the manifest
	// reflects the exact bytes that went in.
	refs := make([]store.ReferenceFile, 0, len(paths))
	for _, path := range paths {
		ref, err := store.HashReferenceFile(path)
		if err != nil {
			return err
		}
		log.Printf("[custody] %s sha256=%s", ref.Path, ref.SHA256)
		refs = append(refs, ref)
	}

	frames, err := loadFrames(paths)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fp, err := prnu.BuildFingerprint(ctx, frames, prnu.CompareConfig{
		Denoise:            dn,
		MinReferenceFrames: minRef,
		Workers:            workers,
	})
	if err != nil {
		return err
	}
	log.Printf("[fingerprint] built %s fingerprint from %d frames (%s filter)", fp.Shape(), fp.FrameCount, dn.Filter)

	database, err := openMigratedDB(*dbPath, *migrationsDir)
	if err != nil {
		return err
	}
	defer database.Close()

	rec := &store.FingerprintRecord{
		Label:       *label,
		Fingerprint: fp,
		Denoise:     dn,
		References:  refs,
	}
	if err := store.NewFingerprintStore(database.DB).Insert(rec); err != nil {
		return err
	}
	log.Printf("[fingerprint] stored %q as %s", *label, rec.FingerprintID)

	if *pngOut != "" {
		if err := report.RenderMapPNG(fp.Map, *label+" fingerprint", *pngOut); err != nil {
			return err
		}
		log.Printf("[fingerprint] rendered %s", *pngOut)
	}
	return nil
}
