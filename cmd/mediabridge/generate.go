package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/history"
	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/utils"
)

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	modelID := fs.String("m", "", "Model to use (see 'mediabridge models')")
	source := fs.String("source", "", "Source image URL for image-to-* models")
	voice := fs.String("voice", "", "Voice for text-to-audio models")
	outDir := fs.String("out", "", "Directory to save the result into")
	fs.Parse(args)

	if *modelID == "" || fs.NArg() < 1 {
		fmt.Println("Usage: mediabridge generate -m <model> [-source url] [-voice voice] [-out dir] <prompt>")
		fmt.Println("Run 'mediabridge models' to see available models.")
		os.Exit(1)
	}
	prompt := strings.Join(fs.Args(), " ")

	st, err := buildStack(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	workspace := expandPath(st.cfg.Workspace)
	utils.SetupLogger(filepath.Join(workspace, "logs"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	model, err := st.index.Model(ctx, *modelID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Run 'mediabridge models' to see available models.")
		os.Exit(1)
	}

	info := model.Info()
	if needsSource(info) && *source == "" {
		fmt.Printf("Model %s needs a source image. Pass -source <url>.\n", info.ID)
		os.Exit(1)
	}

	start := time.Now()
	result, err := model.Generate(ctx, media.Request{
		Prompt:    prompt,
		SourceURL: *source,
		Voice:     *voice,
	})
	took := time.Since(start)
	if err != nil {
		fmt.Printf("Generation failed: %v\n", err)
		os.Exit(1)
	}

	if result.Text != "" {
		fmt.Println(result.Text)
	}
	if result.URL != "" {
		fmt.Printf("Result URL: %s\n", result.URL)
	}

	savedPath := result.Path
	if *outDir != "" {
		src := result.URL
		if src == "" {
			src = result.Path
		}
		if src != "" {
			path, err := utils.DownloadToFile(src, expandPath(*outDir))
			if err != nil {
				fmt.Printf("Warning: could not save result: %v\n", err)
			} else {
				savedPath = path
			}
		}
	}
	if savedPath != "" {
		fmt.Printf("Saved to: %s\n", savedPath)
	}
	fmt.Printf("Done in %s\n", took.Round(time.Millisecond))

	store := history.NewStore(expandPath(st.cfg.History.Dir))
	rec := history.Record{
		Model:      info.ID,
		Provider:   info.Provider,
		Capability: primaryCapability(info),
		Prompt:     prompt,
		ResultURL:  result.URL,
		ResultPath: savedPath,
		ResultText: truncate(result.Text, 200),
		TookMs:     took.Milliseconds(),
	}
	if _, err := store.Append(rec); err != nil {
		log.Printf("Failed to record history: %v", err)
	}
}

func needsSource(info media.ModelInfo) bool {
	for _, c := range info.Capabilities {
		if c.NeedsSource() {
			return true
		}
	}
	return false
}

func primaryCapability(info media.ModelInfo) string {
	if len(info.Capabilities) == 0 {
		return ""
	}
	return string(info.Capabilities[0])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
