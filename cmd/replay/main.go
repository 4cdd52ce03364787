package main

// #region imports
import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/disposition-engine/internal/engine"
	"github.com/danielpatrickdp/disposition-engine/internal/replay"
)

// #endregion

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	sum, err := replay.Run(context.Background(), fixture,
		engine.DefaultConfig(), engine.DefaultActivityConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}

	if fixture.Description != "" {
		fmt.Printf("%s\n\n", fixture.Description)
	}
	fmt.Printf("%-20s %-12s %6s %6s %7s %8s\n",
		"ENTITY", "STATE", "TRANS", "INTER", "POINTS", "CHAPTER")
	for _, r := range sum.Results {
		fmt.Printf("%-20s %-12s %6d %6d %7d %8d\n",
			r.EntityID, r.Final.Current,
			r.Final.TransitionCount, r.Final.InteractionCount,
			r.RewardTotal, r.Chapter)
	}
	fmt.Printf("\nignored triggers: %d\n", sum.IgnoredTriggers)

	if !sum.OK() {
		fmt.Fprintln(os.Stderr, "\nexpectation mismatches:")
		for _, m := range sum.Mismatches {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
		os.Exit(1)
	}
}

// #endregion main
