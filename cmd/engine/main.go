package main

// #region imports
import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danielpatrickdp/disposition-engine/internal/audit"
	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/config"
	"github.com/danielpatrickdp/disposition-engine/internal/engine"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/sentiment"
	"github.com/danielpatrickdp/disposition-engine/internal/store"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	entity := flag.String("entity", "repl-user", "entity id for this session")
	lexicalOnly := flag.Bool("lexical", false, "skip the sentiment sidecar and score locally")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sqlStore, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer sqlStore.Close()

	trail, err := audit.NewTrail(sqlStore.DB())
	if err != nil {
		log.Fatalf("open audit trail: %v", err)
	}

	var scorer sentiment.Scorer = sentiment.NewLexical()
	if !*lexicalOnly && cfg.SentimentAddr != "" {
		client, err := sentiment.NewClient(cfg.SentimentAddr)
		if err != nil {
			log.Printf("sentiment sidecar unavailable, using lexical scorer: %v", err)
		} else {
			defer client.Close()
			scorer = client
		}
	}

	b := bus.New(cfg.Engine.MaxCascadeDepth)
	eng := engine.New(b, sqlStore, scorer, engine.Config{
		Mood: mood.Config{
			VolatileAfter:  cfg.Engine.VolatileAfter.Std(),
			IdleResetAfter: cfg.Engine.IdleResetAfter.Std(),
		},
		CacheTTL:      cfg.Engine.CacheTTL.Std(),
		SweepInterval: cfg.Engine.SweepInterval.Std(),
	})
	engine.NewActivity(b, engine.ActivityConfig{
		Window:    cfg.Engine.BurstWindow.Std(),
		Threshold: cfg.Engine.BurstThreshold,
	})
	rewards := engine.NewRewards(b)
	engine.NewNarrative(b)
	engine.NewAuditBridge(b, trail)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eng.StartSweep(ctx)
	defer func() {
		if err := eng.Close(context.Background()); err != nil {
			log.Printf("flush on close: %v", err)
		}
	}()

	fmt.Println("Disposition engine ready.")
	fmt.Printf("  DB: %s | entity: %s\n", cfg.DBPath, *entity)
	fmt.Println("Type a message (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		if err := eng.HandleMessage(ctx, *entity, text); err != nil {
			log.Printf("handle message: %v", err)
			continue
		}

		st, err := eng.StateFor(ctx, *entity)
		if err != nil {
			log.Printf("read state: %v", err)
			continue
		}
		mods := mood.ProfileFor(st.Current)
		fmt.Printf("[%s] mood=%s intensity=%.2f tone=%s length=%s points=%d\n",
			*entity, st.Current, st.Intensity, mods.Tone, mods.ResponseLength,
			rewards.Total(*entity))
	}
}

// #endregion main
