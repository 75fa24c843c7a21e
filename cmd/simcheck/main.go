// simcheck runs the simulation locally for a given seed and prints its
// checkpoints, final hash and summary. Used to cross-check the browser
// engine against this one without a server round trip.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/emberhold/fortress-replay-go/internal/engine"
	"github.com/emberhold/fortress-replay-go/internal/sim"
	"github.com/emberhold/fortress-replay-go/internal/token"
)

func main() {
	var (
		seed   = flag.Uint("seed", 1, "run seed")
		level  = flag.Int("level", 0, "commander level (progression bonus)")
		audits = flag.String("audits", "", "comma-separated audit ticks; empty derives them from the seed")
		events = flag.String("events", "", "path to a JSON file holding the command log")
	)
	flag.Parse()

	cfg := sim.DefaultConfig()
	cfg.PermanentBonus = sim.ProgressionBonus(*level)

	auditTicks, err := parseAudits(*audits, uint32(*seed), cfg)
	if err != nil {
		log.Fatalf("audits: %v", err)
	}

	var commands []sim.Command
	if *events != "" {
		raw, err := os.ReadFile(*events)
		if err != nil {
			log.Fatalf("read events: %v", err)
		}
		if err := json.Unmarshal(raw, &commands); err != nil {
			log.Fatalf("decode events: %v", err)
		}
	}

	res := sim.Run(cfg, uint32(*seed), commands, auditTicks)

	fmt.Printf("sim version: %d\n", engine.Version)
	fmt.Printf("seed:        %d\n", uint32(*seed))
	fmt.Printf("config hash: %08x\n", cfg.Hash())
	fmt.Printf("events:      %d\n", len(commands))
	fmt.Println()
	for _, cp := range res.Checkpoints {
		fmt.Printf("checkpoint tick=%-6d hash=%08x chain=%08x\n", cp.Tick, cp.Hash, cp.Chain)
	}
	fmt.Printf("final hash:  %08x\n", res.FinalHash)
	fmt.Printf("score:       %d\n", res.Score)

	summary, err := json.MarshalIndent(res.Summary, "", "  ")
	if err != nil {
		log.Fatalf("encode summary: %v", err)
	}
	fmt.Printf("summary:     %s\n", summary)
}

// parseAudits parses "100,200,300"; an empty spec derives the ticks
// the same way the issuance endpoint does.
func parseAudits(spec string, seed uint32, cfg sim.Config) ([]uint64, error) {
	if spec == "" {
		return token.SampleAuditTicks(seed, sim.MaxRunTicks(cfg)), nil
	}
	parts := strings.Split(spec, ",")
	ticks := make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad tick %q: %w", p, err)
		}
		ticks = append(ticks, v)
	}
	return ticks, nil
}
