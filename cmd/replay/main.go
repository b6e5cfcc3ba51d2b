package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/brensch/snekgrid/game"
	"github.com/brensch/snekgrid/store"
)

func main() {
	file := flag.String("file", getEnvOrDefault("SNAKE_REPLAY_FILE", ""), "Recording to replay (.parquet)")
	verify := flag.Bool("verify", false, "Only check the recording replays cleanly; do not print boards")
	flag.Parse()

	if *file == "" {
		log.Fatalf("-file is required")
	}
	rows, err := store.ReadGame(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	if len(rows) == 0 {
		log.Fatalf("%s has no turns", *file)
	}

	var show func(store.TurnRow, *game.Engine)
	if !*verify {
		show = func(row store.TurnRow, e *game.Engine) {
			status := ""
			switch {
			case row.GameOver:
				status = " game over"
			case row.Eating:
				status = " ate"
			}
			fmt.Printf("turn %d %s len=%d%s\n", row.Turn, game.Direction(row.Direction), e.Len(), status)
			for _, c := range row.Changes() {
				fmt.Printf("  %s -> %s\n", c.Position, c.Tile)
			}
			fmt.Print(game.FormatBoard(e.Board()))
			fmt.Println()
		}
	}

	e, err := store.Replay(rows, show)
	if err != nil {
		log.Fatalf("replay %s: %v", *file, err)
	}
	fmt.Printf("game %s: %d turns, length %d, over=%v\n", rows[0].GameID, e.Turn(), e.Len(), e.Over())
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
