package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/audit"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/store"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to disposition.db")
	entity := flag.String("entity", "", "filter to one entity id")
	last := flag.Int("last", 20, "show N most recent audit entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/disposition.db [--entity id] [--last N] [--json]")
		os.Exit(2)
	}

	sqlStore, err := store.NewSQLite(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	trail, err := audit.NewTrail(sqlStore.DB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open audit trail: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(ctx, sqlStore, trail, *entity, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region output

type entityRow struct {
	EntityID         string         `json:"entity_id"`
	Current          string         `json:"current_state"`
	Previous         string         `json:"previous_state,omitempty"`
	EnteredAt        string         `json:"entered_at"`
	TransitionCount  uint64         `json:"transition_count"`
	InteractionCount uint64         `json:"interaction_count"`
	Intensity        float64        `json:"intensity"`
	Context          map[string]any `json:"context,omitempty"`
}

func run(ctx context.Context, sqlStore *store.SQLite, trail *audit.Trail, entity string, last int, jsonOut bool) error {
	var states []*mood.EntityState
	if entity != "" {
		st, err := sqlStore.Load(ctx, entity)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("entity %s not found", entity)
		}
		states = append(states, st)
	} else {
		var err error
		states, err = sqlStore.ListEntities(ctx, 100)
		if err != nil {
			return err
		}
	}

	entries, err := trail.Recent(ctx, entity, last)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(states, entries)
	}
	printTable(states, entries)
	return nil
}

func printJSON(states []*mood.EntityState, entries []audit.Entry) error {
	rows := make([]entityRow, 0, len(states))
	for _, st := range states {
		rows = append(rows, entityRow{
			EntityID:         st.EntityID,
			Current:          string(st.Current),
			Previous:         string(st.Previous),
			EnteredAt:        st.EnteredAt.Format(time.RFC3339),
			TransitionCount:  st.TransitionCount,
			InteractionCount: st.InteractionCount,
			Intensity:        st.Intensity,
			Context:          st.Context,
		})
	}
	out := map[string]any{"entities": rows, "audit": entries}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(states []*mood.EntityState, entries []audit.Entry) {
	fmt.Printf("%-20s %-12s %-12s %6s %6s %9s  %s\n",
		"ENTITY", "STATE", "PREVIOUS", "TRANS", "INTER", "INTENSITY", "ENTERED")
	for _, st := range states {
		fmt.Printf("%-20s %-12s %-12s %6d %6d %9.2f  %s\n",
			st.EntityID, st.Current, st.Previous,
			st.TransitionCount, st.InteractionCount, st.Intensity,
			st.EnteredAt.Format(time.RFC3339))
	}

	if len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%-28s %-20s %-18s %s\n", "TIME", "ENTITY", "KIND", "DETAIL")
	for _, e := range entries {
		fmt.Printf("%-28s %-20s %-18s %s\n",
			e.CreatedAt.Format(time.RFC3339), e.EntityID, e.Kind, e.DetailJSON)
	}
}

// #endregion output
