package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/config"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/service"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/voting"
	"go.vocdoni.io/dvote/db/metadb"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Init(conf.Log.Level, conf.Log.Output, nil)

	if err := run(conf); err != nil {
		log.Fatal(err)
	}
}

func run(conf *config.Config) error {
	database, err := metadb.New(conf.DBType, filepath.Join(conf.DataDir, "db"))
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	hashFn := arbo.HashFunction(arbo.HashFunctionSha256)
	if conf.Voting.HashFunction == "blake2b" {
		hashFn = arbo.HashFunctionBlake2b
	}
	svc, err := voting.New(stg, voting.Options{
		EnforceDeadline: conf.Voting.EnforceDeadline,
		HashFunction:    hashFn,
		PendingSalts:    conf.Voting.PendingSalts,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiService := service.NewAPI(svc, conf.API.Host, conf.API.Port)
	if err := apiService.Start(ctx); err != nil {
		return err
	}
	host, port := apiService.HostPort()
	log.Infow("proposald started", "datadir", conf.DataDir, "host", host, "port", port,
		"hashFunction", conf.Voting.HashFunction, "enforceDeadline", conf.Voting.EnforceDeadline)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")
		apiService.Stop()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				proposals, err := svc.Proposals()
				if err != nil {
					log.Warnw("could not list proposals", "error", err)
					continue
				}
				active := 0
				for _, p := range proposals {
					if p.Active {
						active++
					}
				}
				log.Debugw("ledger status", "proposals", len(proposals), "active", active)
			}
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
