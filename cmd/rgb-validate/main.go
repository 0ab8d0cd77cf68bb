// Command rgb-validate validates a JSON-described consignment against its
// schema, printing the resulting Status as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rgb-wg/rgb-core-go/store"
	"github.com/rgb-wg/rgb-core-go/validation"
	"github.com/rgb-wg/rgb-core-go/witness"
)

// fixedHeightOracle answers every witness txid as Final at a fixed height —
// the CLI's default when no --witness-db is supplied, letting a caller
// exercise the pipeline without standing up a real indexer.
type fixedHeightOracle struct{ height uint32 }

func (o fixedHeightOracle) Status(_ [32]byte) (witness.WitnessOrd, error) {
	return witness.WitnessOrd{Kind: witness.Final, Height: o.height}, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rgb-validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	consignmentPath := fs.String("consignment", "", "path to a JSON consignment file (default: read from stdin)")
	witnessDBPath := fs.String("witness-db", "", "path to a bbolt witness-oracle cache (default: treat every witness as Final at --height)")
	height := fs.Uint("height", 1, "confirmation height to report when --witness-db is not supplied")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	metricsEnabled := fs.Bool("metrics", false, "register Prometheus collectors on an in-process registry (neither served nor printed)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --log-level: %v\n", err)
		return 2
	}
	logger := zerolog.New(stderr).Level(level).With().Timestamp().Logger()

	var raw []byte
	if *consignmentPath != "" {
		raw, err = os.ReadFile(*consignmentPath)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "read consignment: %v\n", err)
		return 1
	}

	var doc jsonConsignment
	if err := json.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintf(stderr, "parse consignment: %v\n", err)
		return 1
	}

	consignment, err := buildConsignment(doc)
	if err != nil {
		fmt.Fprintf(stderr, "build consignment: %v\n", err)
		return 1
	}

	var oracle witness.Oracle = fixedHeightOracle{height: uint32(*height)}
	if *witnessDBPath != "" {
		cache, err := store.OpenWitnessOracleCache(*witnessDBPath)
		if err != nil {
			fmt.Fprintf(stderr, "open witness db: %v\n", err)
			return 1
		}
		defer cache.Close()
		oracle = cache
	}

	var metrics *validation.Metrics
	if *metricsEnabled {
		metrics = validation.NewMetrics(prometheus.NewRegistry())
	}

	validator := validation.NewValidator(oracle, logger, metrics)
	status, _, err := validator.Validate(consignment)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(status); err != nil {
		fmt.Fprintf(stderr, "encode status: %v\n", err)
		return 1
	}
	if !status.Valid() {
		return 1
	}
	return 0
}
