package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	fs.Parse(args)

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reports := st.prober.CheckAll(ctx, st.catalog, st.registry)

	healthy := 0
	for _, rep := range reports {
		base := "-"
		if rep.Handle != nil {
			base = rep.Handle.BaseURL
		}
		line := fmt.Sprintf("%-14s %-12s %-26s", rep.Entry.Name, rep.Status.Health, base)
		if rep.Status.Healthy() {
			healthy++
			line += fmt.Sprintf(" %dms", rep.Status.ResponseMs)
		} else if rep.Status.Error != "" {
			line += " " + rep.Status.Error
		}
		fmt.Println(line)
	}

	fmt.Printf("\n%d/%d services healthy\n", healthy, len(reports))
	if healthy < len(reports) {
		fmt.Println("Run 'mediabridge validate <service>' for details.")
		os.Exit(1)
	}
}

func runModels(args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	capFilter := fs.String("capability", "", "Filter by capability, e.g. text-to-image")
	providerFilter := fs.String("provider", "", "Filter by provider name")
	fs.Parse(args)

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var infos []media.ModelInfo
	if *capFilter != "" {
		c, err := media.ParseCapability(*capFilter)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		infos = st.index.ModelsForCapability(c)
	} else {
		infos = st.index.Models()
	}

	if *providerFilter != "" {
		var filtered []media.ModelInfo
		for _, info := range infos {
			if info.Provider == *providerFilter {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}

	if len(infos) == 0 {
		fmt.Println("No models matched.")
		return
	}

	for _, info := range infos {
		caps := make([]string, 0, len(info.Capabilities))
		for _, c := range info.Capabilities {
			caps = append(caps, string(c))
		}
		fmt.Printf("%-24s %-12s %s\n", info.ID, info.Provider, strings.Join(caps, ", "))
	}
}
