package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soundsafari/xenocanto-dl/internal/config"
	"github.com/soundsafari/xenocanto-dl/internal/download"
	"github.com/soundsafari/xenocanto-dl/internal/model"
)

func main() {
	// Command line flags
	var (
		queryFlag      = flag.String("query", "", "xeno-canto search query (e.g. \"Phaethornis anthophilus\")")
		manifestFlag   = flag.String("manifest", "", "Path to a manifest CSV to replay instead of searching")
		outputFlag     = flag.String("output", "", "Output directory (overrides config)")
		workersFlag    = flag.Int("workers", 0, "Number of concurrent downloads (overrides config)")
		nameFieldsFlag = flag.String("name-fields", "", "Comma-separated manifest columns used to build filenames (e.g. \"Genus,Specific_epithet\")")
		configFlag     = flag.String("config", "", "Path to config file")
		playlistFlag   = flag.Bool("playlist", false, "Create playlist file")
		tagFlag        = flag.Bool("tag", false, "Write ID3 tags from recording metadata")
		sonogramsFlag  = flag.Bool("sonograms", false, "Download sonogram images alongside audio")
		csvFlag        = flag.Bool("csv", false, "Write the manifest CSV into the output directory")
		verboseFlag    = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag     = flag.Bool("dry-run", false, "Search and build the manifest without downloading")
	)

	flag.Parse()

	// CLI mode - require a query or a manifest to replay
	if *queryFlag == "" && *manifestFlag == "" && flag.NArg() == 0 {
		fmt.Println("xeno-canto Downloader - Retrieve bioacoustic recordings from xeno-canto")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  xc-dl -query <QUERY> [options]")
		fmt.Println("  xc-dl -manifest <CSV> [options]")
		fmt.Println("  xc-dl <QUERY> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: xc-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *workersFlag > 0 {
		settings.MaxConcurrentDownloads = *workersFlag
	}
	if *nameFieldsFlag != "" {
		fields := strings.Split(*nameFieldsFlag, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		settings.FileNameFields = fields
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *tagFlag {
		settings.ModifyTags = true
	}
	if *sonogramsFlag {
		settings.DownloadSonograms = true
	}
	if *csvFlag {
		settings.WriteManifest = true
	}

	query := *queryFlag
	if query == "" && flag.NArg() > 0 {
		query = flag.Arg(0)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	// Create manager with progress callback
	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := "   "
		switch event.Level {
		case download.LevelError:
			prefix = " x "
		case download.LevelWarning:
			prefix = " ! "
		case download.LevelSuccess:
			prefix = " + "
		case download.LevelInfo:
			prefix = " > "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("xeno-canto Downloader")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println()

	if *manifestFlag != "" {
		// Replay mode: skip the search entirely.
		file, err := os.Open(*manifestFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening manifest: %v\n", err)
			os.Exit(1)
		}
		manifest, err := model.LoadCSV(file)
		file.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
			os.Exit(1)
		}
		if err := manager.UseManifest(manifest); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf(" > Replaying manifest with %d recordings\n", manifest.Len())
	} else {
		if _, err := manager.Search(ctx, query); err != nil {
			fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
			os.Exit(1)
		}
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	fmt.Println("\nStarting downloads...")
	fmt.Println()

	if err := manager.Download(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	filesReceived, filesTotal, received := manager.GetProgress()
	fmt.Println()
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
}
