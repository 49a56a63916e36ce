package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/history"
	"github.com/mediabridge/mediabridge-go/pkg/services"
	"github.com/mediabridge/mediabridge-go/pkg/statusapi"
	"github.com/mediabridge/mediabridge-go/pkg/utils"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	addr := fs.String("addr", "", "Listen address (overrides config)")
	fs.Parse(args)

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	workspace := expandPath(st.cfg.Workspace)
	utils.SetupLogger(filepath.Join(workspace, "logs"))

	store := history.NewStore(expandPath(st.cfg.History.Dir))

	bus := services.NewEventBus()
	bus.Subscribe(func(ev services.StatusEvent) {
		log.Printf("Service %s %s (health %s -> %s)", ev.Service, ev.Kind, ev.Previous, ev.Status.Health)
	})
	go bus.Dispatch()

	watcher := services.NewWatcher(st.catalog, st.registry, st.prober, bus, expandPath(st.cfg.Watch.StatePath))
	if st.cfg.Watch.Interval > 0 {
		watcher.SetInterval(time.Duration(st.cfg.Watch.Interval) * time.Second)
	}
	if st.cfg.Watch.Schedule != "" {
		if err := watcher.SetSchedule(st.cfg.Watch.Schedule); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	watcher.Start()

	listen := *addr
	if listen == "" {
		listen = fmt.Sprintf("%s:%d", st.cfg.Status.Host, st.cfg.Status.Port)
	}
	handler := statusapi.NewHandler(st.catalog, st.registry, st.prober, st.index, store)
	srv := statusapi.NewServer(listen, handler)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Printf("Status API failed: %v\n", err)
			watcher.Stop()
			bus.Stop()
			os.Exit(1)
		}
	case <-sigCh:
		log.Println("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		watcher.Stop()
		bus.Stop()
	}
}
