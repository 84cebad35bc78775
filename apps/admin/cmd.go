package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/muchiri/karibu/core/campus"
)

var errHelp = errors.New("help provided")

type migrator interface {
	Migrate() error
}

type commandLine struct {
	campusSvc campus.ServiceInterface
	migrate   migrator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply pending database migrations")
	fmt.Println("  rebuildcache - recompute the visible-locations cache from the current boundary and registry")
	fmt.Println("  setboundary -nw LAT,LNG -ne LAT,LNG -sw LAT,LNG -se LAT,LNG - overwrite the map boundary")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setBoundaryCmd := flag.NewFlagSet("setboundary", flag.ExitOnError)
	nw := setBoundaryCmd.String("nw", "", "north-west corner as LAT,LNG")
	ne := setBoundaryCmd.String("ne", "", "north-east corner as LAT,LNG")
	sw := setBoundaryCmd.String("sw", "", "south-west corner as LAT,LNG")
	se := setBoundaryCmd.String("se", "", "south-east corner as LAT,LNG")

	switch args[1] {
	case "migrate":
		return cli.migrate.Migrate()
	case "rebuildcache":
		return cli.rebuildCache()
	case "setboundary":
		if err := setBoundaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *nw == "" || *ne == "" || *sw == "" || *se == "" {
			setBoundaryCmd.Usage()
			return errHelp
		}
		return cli.setBoundary(*nw, *ne, *sw, *se)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) rebuildCache() error {
	if err := cli.campusSvc.Rebuild(context.Background()); err != nil {
		return err
	}
	fmt.Println("visible-locations cache rebuilt")
	return nil
}

func (cli *commandLine) setBoundary(nw, ne, sw, se string) error {
	nb := campus.NewBoundary{}
	for _, c := range []struct {
		raw  string
		name string
		dst  **campus.Coordinate
	}{
		{nw, "nw", &nb.Northwest},
		{ne, "ne", &nb.Northeast},
		{sw, "sw", &nb.Southwest},
		{se, "se", &nb.Southeast},
	} {
		coord, err := parseCoordinate(c.raw)
		if err != nil {
			return fmt.Errorf("parsing -%s: %w", c.name, err)
		}
		*c.dst = coord
	}

	b, res, err := cli.campusSvc.SetBoundary(context.Background(), nb)
	if err != nil {
		return err
	}
	fmt.Printf("boundary saved: %+v\n", b)
	if !res.Rebuilt() {
		fmt.Printf("warning: cache rebuild failed: %v\n", res.Err)
	}
	return nil
}

func parseCoordinate(raw string) (*campus.Coordinate, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected LAT,LNG, got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	return &campus.Coordinate{Lat: lat, Lng: lng}, nil
}
