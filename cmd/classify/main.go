// Command classify runs the classification and entity synthesis offline over
// a saved METAR API response, printing the entities the service would publish.
// Nothing is sent anywhere, which makes it handy for checking threshold
// changes against real weather.
//
// Usage:
//
//	curl -s 'https://aviationweather.gov/api/data/metar?ids=KBOS,KPVD&format=json' > metar.json
//	go run ./cmd/classify -in metar.json
//	go run ./cmd/classify -in metar.json -stations custom.yaml -at 2025-06-01T12:00:00Z -format json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/adapter/aviationweather"
	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"github.com/couchcryptid/metar-entity-sync/internal/stations"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	in := fs.String("in", "", "path to a METAR API JSON response (- for stdin)")
	stationsFile := fs.String("stations", "", "station YAML file (default: built-in New England table)")
	at := fs.String("at", "", "RFC3339 creation time for entities (default: now)")
	format := fs.String("format", "table", "output format: table or json")
	ttl := fs.Duration("ttl", domain.DefaultEntityTTL, "entity time-to-live")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	// A fixed clock makes the output reproducible.
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
		defer domain.SetClock(nil)
	}

	table, err := stations.Load(*stationsFile)
	if err != nil {
		return err
	}

	body, err := readInput(*in)
	if err != nil {
		return err
	}

	results, err := aviationweather.DecodeObservations(body, table.IDs())
	if err != nil {
		return err
	}

	var (
		entities []domain.StationEntity
		skipped  = map[string]error{}
	)
	for _, id := range table.IDs() {
		res := results[id]
		if res.Err != nil || res.Observation == nil {
			skipped[id] = res.Err
			continue
		}
		station, _ := table.Get(id)
		entities = append(entities, domain.SynthesizeNow(station, *res.Observation, *ttl))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entities); err != nil {
			return fmt.Errorf("encode entities: %w", err)
		}
	case "table":
		if err := writeTable(out, entities, skipped, table.IDs()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown -format %q", *format)
	}

	log.Printf("classified %d of %d stations", len(entities), table.Len())
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return body, nil
}

func writeTable(out io.Writer, entities []domain.StationEntity, skipped map[string]error, ids []string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tCATEGORY\tDISPOSITION\tHEALTH\tCOMPONENTS")
	for _, e := range entities {
		components := ""
		for i, c := range e.Components {
			if i > 0 {
				components += " "
			}
			components += fmt.Sprintf("%s=%s", c.Name, c.Health)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.StationID, e.FlightCategory, e.Disposition, e.Health, components)
	}
	for _, id := range ids {
		if err, ok := skipped[id]; ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tskipped: %v\n", id, err)
		}
	}
	return tw.Flush()
}
