// migrate applies the embedded SQL migrations: go run ./cmd/migrate -direction up
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/aryan0dhankhar/meetlog/pkg/config"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or export DATABASE_URL")
		os.Exit(1)
	}

	if err := database.Migrate(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, database.ErrNoChange) {
			fmt.Println("migrate: no change")
			return
		}
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Println("migrate:", *direction, "complete")
}
