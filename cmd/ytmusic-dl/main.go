package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/handiism/ytmusic-downloader/internal/config"
	"github.com/handiism/ytmusic-downloader/internal/download"
	"github.com/handiism/ytmusic-downloader/internal/model"
)

const version = "1.0.0"

func main() {
	// Command line flags
	var (
		urlFlag          = flag.String("url", "", "YouTube or YouTube Music URL to download")
		outputFlag       = flag.String("out", "", "Output directory (overrides config)")
		formatFlag       = flag.String("format", "", "Output audio format: m4a, mp3 or flac (overrides config)")
		bitrateFlag      = flag.String("bitrate", "", "Output audio bitrate, e.g. 256k (overrides config)")
		settingsFlag     = flag.String("settings", "", "Path to settings file")
		saveSettingsFlag = flag.Bool("save-settings", false, "Write the effective settings to the settings file and exit")
		noArtFlag        = flag.Bool("no-art", false, "Skip cover art fetching and embedding")
		infoFlag         = flag.Bool("info", false, "Show track metadata without downloading")
		verboseFlag      = flag.Bool("verbose", false, "Show verbose output")
		versionFlag      = flag.Bool("version", false, "Print version and exit")
	)

	flag.Parse()

	if *versionFlag {
		fmt.Printf("ytmusic-dl %s\n", version)
		return
	}

	// Load settings
	settingsPath := *settingsFlag
	if settingsPath == "" {
		settingsPath = defaultSettingsPath()
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *formatFlag != "" {
		settings.AudioFormat = *formatFlag
	}
	if *bitrateFlag != "" {
		settings.AudioBitrate = *bitrateFlag
	}
	if *noArtFlag {
		settings.SaveCoverArtInTags = false
		settings.SaveCoverArtInFolder = false
	}

	if *saveSettingsFlag {
		if err := settings.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := settings.Save(settingsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Settings written to %s\n", settingsPath)
		return
	}

	// Get the URL: flag, positional argument, or interactive prompt
	url := *urlFlag
	if url == "" && flag.NArg() > 0 {
		url = flag.Arg(0)
	}
	if url == "" {
		url, err = promptURL()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if strings.TrimSpace(url) == "" {
		fmt.Fprintln(os.Stderr, "Error: no URL given")
		os.Exit(1)
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

	printer := newEventPrinter(*verboseFlag)

	pipeline, err := download.NewPipeline(settings, printer.print)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *infoFlag {
		track, err := pipeline.Resolve(ctx, url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printTrackInfo(track)
		return
	}

	outputPath, err := pipeline.Run(ctx, url)
	printer.finishBar()
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	color.New(color.FgGreen, color.Bold).Printf("Saved: %s\n", outputPath)
}

// defaultSettingsPath places the settings file in the user config
// directory, next to settings of other applications.
func defaultSettingsPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "ytmusic-downloader", "settings.json")
}

// promptURL reads the video URL interactively.
//
// On a terminal a survey prompt is shown. When stdin is a pipe, a
// single line is read instead, so the tool stays scriptable.
func promptURL() (string, error) {
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return "", fmt.Errorf("reading URL from stdin: %w", scanner.Err())
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	var url string
	prompt := &survey.Input{
		Message: "Video URL:",
	}
	if err := survey.AskOne(prompt, &url, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// printTrackInfo renders the resolved metadata as a table.
func printTrackInfo(track *model.Track) {
	duration := time.Duration(track.Duration * float64(time.Second)).Round(time.Second)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Title", track.Title})
	table.Append([]string{"Artist", track.Artist})
	table.Append([]string{"Album", track.Album})
	table.Append([]string{"Genre", track.Genre})
	table.Append([]string{"Year", track.Year})
	table.Append([]string{"Duration", duration.String()})
	table.Append([]string{"Video ID", track.VideoID})
	table.Append([]string{"Output", track.Path})
	table.Render()
}

// eventPrinter renders pipeline progress events on the terminal.
//
// Message events become colored log lines. Percent events drive a
// progress bar, one bar per stage, shown only when stdout is a
// terminal.
type eventPrinter struct {
	verbose bool
	isTTY   bool

	bar      *progressbar.ProgressBar
	barStage model.Stage

	infoColor    *color.Color
	verboseColor *color.Color
	warnColor    *color.Color
	errorColor   *color.Color
	successColor *color.Color
}

func newEventPrinter(verbose bool) *eventPrinter {
	isTTY := false
	if stat, err := os.Stdout.Stat(); err == nil {
		isTTY = stat.Mode()&os.ModeCharDevice != 0
	}

	return &eventPrinter{
		verbose:      verbose,
		isTTY:        isTTY,
		infoColor:    color.New(color.FgCyan),
		verboseColor: color.New(color.Faint),
		warnColor:    color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed),
		successColor: color.New(color.FgGreen),
	}
}

func (p *eventPrinter) print(event download.ProgressEvent) {
	if event.Message == "" {
		p.tick(event)
		return
	}

	p.finishBar()

	if event.Level == download.LevelVerbose && !p.verbose {
		return
	}

	switch event.Level {
	case download.LevelError:
		p.errorColor.Println("✗ " + event.Message)
	case download.LevelWarning:
		p.warnColor.Println("! " + event.Message)
	case download.LevelSuccess:
		p.successColor.Println("✓ " + event.Message)
	case download.LevelVerbose:
		p.verboseColor.Println("  " + event.Message)
	default:
		p.infoColor.Println("› " + event.Message)
	}
}

// tick advances the progress bar for percent-only events.
func (p *eventPrinter) tick(event download.ProgressEvent) {
	if !p.isTTY {
		return
	}

	if p.bar == nil || p.barStage != event.Stage {
		p.finishBar()
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription(event.Stage.Label()),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
		)
		p.barStage = event.Stage
	}

	_ = p.bar.Set(int(event.Percent * 100))
}

// finishBar clears an active progress bar so log lines stay intact.
func (p *eventPrinter) finishBar() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
