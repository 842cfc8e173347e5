// sensor-report determines whether RAW sensor captures originate from the
// same physical image sensor by comparing their PRNU noise fingerprints.
//
// Usage:
//
//	sensor-report fingerprint -label cam01 [flags] ref1.pgm ref2.pgm ...
//	sensor-report compare [flags] -match-min 0.3 -nomatch-max 0.05
//	sensor-report migrate (up|down|status) [flags]
//
// RAW container decoding is out of scope: inputs are already-demosaiced
// 16-bit PGM or PNG planes produced by an external decoder.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aperture-data/sensor.report/internal/db"
)

const defaultDBFile = "sensor_fingerprints.db"
const defaultMigrationsDir = "migrations"

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "fingerprint":
		err = runFingerprint(os.Args[2:])
	case "compare":
		err = runCompare(os.Args[2:])
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `sensor-report - PRNU sensor fingerprint comparison

Commands:
  fingerprint   Build a sensor fingerprint from reference frames and store it
  compare       Score two sides (frame sets or stored fingerprints) against each other
  migrate       Manage the fingerprint database schema (up|down|status)

Run "sensor-report <command> -h" for command flags.
`)
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Path to the fingerprint database")
	migrationsDir := fs.String("migrations", defaultMigrationsDir, "Path to the migrations directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("migrate requires exactly one action: up, down, or status")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch fs.Arg(0) {
	case "up":
		if err := database.MigrateUp(*migrationsDir); err != nil {
			return err
		}
		log.Printf("[migrate] database %s is up to date", *dbPath)
	case "down":
		if err := database.MigrateDown(*migrationsDir); err != nil {
			return err
		}
		log.Printf("[migrate] rolled back one migration on %s", *dbPath)
	case "status":
		version, dirty, err := database.MigrateVersion(*migrationsDir)
		if err != nil {
			return err
		}
		log.Printf("[migrate] %s: version=%d dirty=%v", *dbPath, version, dirty)
	default:
		return fmt.Errorf("unknown migrate action %q", fs.Arg(0))
	}
	return nil
}

// openMigratedDB opens the database and refuses to proceed on an empty or
// stale schema, pointing at the migrate command instead of guessing.
func openMigratedDB(path, migrationsDir string) (*db.DB, error) {
	database, err := db.NewDB(path)
	if err != nil {
		return nil, err
	}
	version, dirty, err := database.MigrateVersion(migrationsDir)
	if err != nil {
		database.Close()
		return nil, err
	}
	if version == 0 || dirty {
		database.Close()
		return nil, fmt.Errorf("database %s has no schema (version=%d dirty=%v); run \"sensor-report migrate up\" first", path, version, dirty)
	}
	return database, nil
}
