package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Domenick1991/seatsync/config"
	"github.com/Domenick1991/seatsync/internal/bootstrap"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	flightID := flag.String("flight", "", "flight id to open a seat-hold session for")
	seats := flag.String("seats", "", "comma-separated seat numbers to hold")
	flag.Parse()

	if *flightID == "" {
		log.Fatal("missing -flight")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := bootstrap.NewSession(cfg, *flightID,
		bootstrap.WithTickObserver(func(seatNumber string, remaining int) {
			if remaining%30 == 0 && remaining > 0 {
				log.Printf("seat %s: %ds left on hold", seatNumber, remaining)
			}
		}),
		bootstrap.WithTotalObserver(func() {
			log.Printf("price update touched the selection")
		}),
	)
	if err != nil {
		log.Fatalf("build session: %v", err)
	}

	if err := session.Start(ctx); err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("close session: %v", err)
		}
	}()

	log.Printf("flight %s: %d seats loaded", *flightID, len(session.Seats()))

	sel := session.Selection()
	if *seats != "" {
		for _, seatNumber := range strings.Split(*seats, ",") {
			seatNumber = strings.TrimSpace(seatNumber)
			if seatNumber == "" {
				continue
			}
			if err := sel.Toggle(ctx, seatNumber); err != nil {
				log.Printf("hold seat %s: %v", seatNumber, err)
				continue
			}
			log.Printf("holding seat %s", seatNumber)
		}
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			selected := sel.Selected()
			log.Printf("selection: %v, total %.2f", selected, float64(sel.Total())/100)
		case <-ctx.Done():
			log.Printf("shutting down")
			return
		}
	}
}
