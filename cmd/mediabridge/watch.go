package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/services"
	"github.com/mediabridge/mediabridge-go/pkg/utils"
)

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	schedule := fs.String("schedule", "", "Cron expression overriding the sweep interval")
	once := fs.Bool("once", false, "Run a single sweep and exit")
	fs.Parse(args)

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	workspace := expandPath(st.cfg.Workspace)
	utils.SetupLogger(filepath.Join(workspace, "logs"))

	bus := services.NewEventBus()
	bus.Subscribe(func(ev services.StatusEvent) {
		log.Printf("Service %s %s (health %s -> %s)", ev.Service, ev.Kind, ev.Previous, ev.Status.Health)
	})
	go bus.Dispatch()
	defer bus.Stop()

	watcher := services.NewWatcher(st.catalog, st.registry, st.prober, bus, expandPath(st.cfg.Watch.StatePath))
	if st.cfg.Watch.Interval > 0 {
		watcher.SetInterval(time.Duration(st.cfg.Watch.Interval) * time.Second)
	}
	expr := *schedule
	if expr == "" {
		expr = st.cfg.Watch.Schedule
	}
	if expr != "" {
		if err := watcher.SetSchedule(expr); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	if *once {
		reports := watcher.Sweep()
		healthy := 0
		for _, rep := range reports {
			if rep.Status.Healthy() {
				healthy++
			}
			fmt.Printf("%-14s %s\n", rep.Entry.Name, rep.Status.Health)
		}
		fmt.Printf("%d/%d services healthy\n", healthy, len(reports))
		return
	}

	watcher.Start()
	fmt.Println("Watching services. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down watcher")
	watcher.Stop()
}
