package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aperture-data/sensor.report/internal/db"
	"github.com/aperture-data/sensor.report/internal/prnu"
	"github.com/aperture-data/sensor.report/internal/report"
	"github.com/aperture-data/sensor.report/internal/store"
)

// runCompare scores two sides against each other. A side is either a
// comma-separated list of image files (aggregated into a fingerprint) or
// the label of a fingerprint stored by the fingerprint command.
func runCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Path to the fingerprint database")
	migrationsDir := fs.String("migrations", defaultMigrationsDir, "Path to the migrations directory")
	aFiles := fs.String("a", "", "Side A: comma-separated image files")
	bFiles := fs.String("b", "", "Side B: comma-separated image files")
	aLabel := fs.String("a-label", "", "Side A: stored fingerprint label")
	bLabel := fs.String("b-label", "", "Side B: stored fingerprint label")
	matchMin := fs.Float64("match-min", 2, "Score at or above this is a match (required)")
	noMatchMax := fs.Float64("nomatch-max", 2, "Score at or below this is a no-match (required)")
	crop := fs.Bool("crop", false, "Center-crop both sides to their common region on shape mismatch")
	record := fs.Bool("record", false, "Record the comparison in the database")
	jsonOut := fs.String("json", "", "Optional path to write the result as JSON")
	pngDir := fs.String("png-dir", "", "Optional directory for side-by-side fingerprint PNGs")
	htmlOut := fs.String("html", "", "Optional path for an HTML report of recent comparisons")
	var af analysisFlags
	af.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	dn, minRef, workers, cfg, err := af.resolve()
	if err != nil {
		return err
	}
	if !*crop {
		*crop = cfg.GetCropOnMismatch()
	}
	thresholds, err := resolveThresholds(*matchMin, *noMatchMax, cfg)
	if err != nil {
		return err
	}

	compareCfg := prnu.CompareConfig{
		Denoise:            dn,
		Thresholds:         thresholds,
		CropOnMismatch:     *crop,
		MinReferenceFrames: minRef,
		Workers:            workers,
	}

	// The database is only needed for stored fingerprints, recording, and
	// the HTML report.
	var database *db.DB
	needDB := *aLabel != "" || *bLabel != "" || *record || *htmlOut != ""
	if needDB {
		database, err = openMigratedDB(*dbPath, *migrationsDir)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sideA, err := resolveSide(ctx, "A", *aLabel, splitFileList(*aFiles), database, compareCfg)
	if err != nil {
		return err
	}
	sideB, err := resolveSide(ctx, "B", *bLabel, splitFileList(*bFiles), database, compareCfg)
	if err != nil {
		return err
	}

	result, err := prnu.Compare(ctx, sideA, sideB, compareCfg)
	if err != nil {
		return err
	}

	log.Printf("[compare] %s vs %s: score=%.6f verdict=%s (frames %d/%d, shapes %s/%s, cropped=%v)",
		sideA.Label, sideB.Label, result.Score, result.Verdict,
		result.FramesA, result.FramesB, result.ShapeA, result.ShapeB, result.Cropped)

	if *jsonOut != "" {
		if err := exportJSON(result, *jsonOut); err != nil {
			return err
		}
		log.Printf("[compare] wrote %s", *jsonOut)
	}

	if *pngDir != "" {
		pathA, pathB, err := report.RenderComparisonMaps(
			sideA.Fingerprint.Map, sideB.Fingerprint.Map,
			sideA.Label, sideB.Label, *pngDir)
		if err != nil {
			return err
		}
		log.Printf("[compare] rendered %s and %s", pathA, pathB)
	}

	if *record {
		rec := &store.ComparisonRecord{
			Result:     result,
			LabelA:     sideA.Label,
			LabelB:     sideB.Label,
			MatchMin:   thresholds.MatchMin(),
			NoMatchMax: thresholds.NoMatchMax(),
		}
		if err := store.NewComparisonStore(database.DB).Insert(rec); err != nil {
			return err
		}
		log.Printf("[compare] recorded comparison %s", result.ComparisonID)
	}

	if *htmlOut != "" {
		recs, err := store.NewComparisonStore(database.DB).ListRecent(50)
		if err != nil {
			return err
		}
		if err := report.WriteComparisonReport(recs, *htmlOut); err != nil {
			return err
		}
		log.Printf("[compare] wrote %s", *htmlOut)
	}
	return nil
}

// resolveSide materializes one comparison side as a fingerprint, so the
// maps stay available for rendering after the comparison itself.
func resolveSide(ctx context.Context, name, label string, files []string, database *db.DB, cfg prnu.CompareConfig) (prnu.Side, error) {
	switch {
	case label != "" && len(files) > 0:
		return prnu.Side{}, fmt.Errorf("side %s: give either files or a stored label, not both", name)
	case label != "":
		rec, err := store.NewFingerprintStore(database.DB).GetByLabel(label)
		if err != nil {
			return prnu.Side{}, err
		}
		return prnu.Side{Label: label, Fingerprint: rec.Fingerprint}, nil
	case len(files) > 0:
		frames, err := loadFrames(files)
		if err != nil {
			return prnu.Side{}, err
		}
		fp, err := prnu.BuildFingerprint(ctx, frames, cfg)
		if err != nil {
			return prnu.Side{}, fmt.Errorf("side %s: %w", name, err)
		}
		return prnu.Side{Label: name, Fingerprint: fp}, nil
	default:
		return prnu.Side{}, fmt.Errorf("side %s: no input; use -%s or -%s-label", name, flagNameForSide(name), flagNameForSide(name))
	}
}

func flagNameForSide(name string) string {
	if name == "A" {
		return "a"
	}
	return "b"
}

func exportJSON(result *prnu.CorrelationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
