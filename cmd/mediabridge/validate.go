package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/services"
)

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: mediabridge validate <service>")
		fmt.Println("Checks that a Docker-backed service resolves and answers its health check.")
		os.Exit(1)
	}
	name := fs.Arg(0)

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	entry, ok := st.catalog.Lookup(name)
	if !ok {
		fmt.Printf("Unknown service: %s\n", name)
		fmt.Printf("Known services: %s\n", strings.Join(st.catalog.Names(), ", "))
		os.Exit(1)
	}

	fmt.Printf("Service:      %s\n", entry.Name)
	fmt.Printf("Ref:          %s\n", entry.Ref)
	fmt.Printf("Image:        %s\n", entry.Image)
	fmt.Printf("Env override: %s\n", entry.EnvVar)
	fmt.Printf("Capabilities: %s\n", joinCapabilities(entry))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Walk the resolution order explicitly so every step is visible.
	var baseURL, source string
	var resolved *services.ServiceHandle
	if override := os.Getenv(entry.EnvVar); entry.EnvVar != "" && override != "" {
		baseURL = strings.TrimRight(override, "/")
		source = fmt.Sprintf("environment (%s)", entry.EnvVar)
	} else if entry.Ref != "" {
		handle, err := st.registry.Resolve(ctx, entry.Ref)
		if err == nil {
			resolved = handle
			baseURL = handle.BaseURL
			source = fmt.Sprintf("registry (%s)", st.registry.BaseURL)
		} else {
			fmt.Printf("Registry lookup failed: %v\n", err)
		}
	}
	if baseURL == "" {
		if entry.DefaultURL == "" {
			fmt.Printf("No URL for service %s: set %s or configure the registry.\n", entry.Name, entry.EnvVar)
			os.Exit(1)
		}
		baseURL = strings.TrimRight(entry.DefaultURL, "/")
		source = "default"
	}
	if resolved == nil {
		if h, err := entry.ResolveHandle(ctx, nil); err == nil {
			resolved = h
		}
	}

	healthURL := entry.HealthURL(baseURL)
	fmt.Printf("Base URL:     %s (via %s)\n", baseURL, source)
	fmt.Printf("Health URL:   %s\n", healthURL)
	if resolved != nil {
		if resolved.Info.ContainerName != "" {
			fmt.Printf("Container:    %s\n", resolved.Info.ContainerName)
		}
		if len(resolved.Info.Ports) > 0 {
			fmt.Printf("Ports:        %s\n", formatPorts(resolved.Info.Ports))
		}
	}

	if p, err := st.index.Provider(entry.Name); err == nil {
		fmt.Printf("Models:       %s\n", strings.Join(p.AvailableModels(), ", "))
	}
	fmt.Println()

	status := st.prober.Check(ctx, healthURL)
	if status.Healthy() {
		fmt.Printf("Health:       %s (%dms)\n", status.Health, status.ResponseMs)
		fmt.Printf("\n%s is up and ready.\n", entry.Name)
		return
	}

	fmt.Printf("Health:       %s\n", status.Health)
	if status.Error != "" {
		fmt.Printf("Error:        %s\n", status.Error)
	}
	fmt.Println()
	printStartGuidance(entry, st.registry.BaseURL)
	os.Exit(1)
}

func formatPorts(ports []services.PortMapping) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		proto := p.Protocol
		if proto == "" {
			proto = "tcp"
		}
		parts = append(parts, fmt.Sprintf("%d->%d/%s", p.Host, p.Container, proto))
	}
	return strings.Join(parts, ", ")
}

func joinCapabilities(entry services.CatalogEntry) string {
	caps := make([]string, 0, len(entry.Capabilities))
	for _, c := range entry.Capabilities {
		caps = append(caps, string(c))
	}
	return strings.Join(caps, ", ")
}

func printStartGuidance(entry services.CatalogEntry, registryURL string) {
	fmt.Printf("%s is not reachable. To start it locally:\n", entry.Name)

	hostPort := defaultHostPort(entry)
	containerPort := entry.ContainerPort
	if containerPort == 0 {
		containerPort = hostPort
	}
	if entry.Image != "" && hostPort != 0 {
		fmt.Printf("  docker run -d -p %d:%d --name %s %s\n", hostPort, containerPort, entry.Name, entry.Image)
	}
	fmt.Printf("If it already runs elsewhere, point %s at it:\n", entry.EnvVar)
	fmt.Printf("  export %s=http://host:port\n", entry.EnvVar)
	if entry.Ref != "" {
		fmt.Printf("Or register %s with the registry at %s.\n", entry.Ref, registryURL)
	}
}

func defaultHostPort(entry services.CatalogEntry) int {
	u, err := url.Parse(entry.DefaultURL)
	if err != nil {
		return 0
	}
	p, _ := strconv.Atoi(u.Port())
	return p
}
