// Command tokend runs the local token-creation service on loopback.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lpaydat/game2048-cli/internal/tokend"
)

func main() {
	var (
		port   int
		dbPath string
	)
	flag.IntVar(&port, "port", 8080, "listen port (loopback only)")
	flag.StringVar(&dbPath, "db", "tokens.db", "path to the token database")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	store, err := tokend.NewStore(dbPath)
	if err != nil {
		log.WithError(err).Fatal("open token store")
	}
	defer store.Close()

	server := tokend.NewServer(store, port, log)
	if err := server.Start(); err != nil {
		log.WithError(err).Fatal("start token service")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
}
