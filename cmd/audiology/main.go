package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OfficiallySp/Audiology/internal/artwork"
	"github.com/OfficiallySp/Audiology/internal/config"
	"github.com/OfficiallySp/Audiology/internal/logger"
	"github.com/OfficiallySp/Audiology/internal/metadata"
	"github.com/OfficiallySp/Audiology/internal/pipeline"
	"github.com/OfficiallySp/Audiology/internal/progress"
	"github.com/OfficiallySp/Audiology/internal/recognize"
	"github.com/OfficiallySp/Audiology/internal/sample"
	"github.com/OfficiallySp/Audiology/internal/shutdown"
	"github.com/OfficiallySp/Audiology/pkg/scan"
)

func main() {
	cfg, configPath, paths, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(2)
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Wait()

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if cfg.LogFile != "" {
		if err := log.SetFileLog(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
		}
	} else if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("audiology_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if cfg.Verbose && configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(2)
	}

	if err := run(sh, cfg, log, paths); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger, paths []string) error {
	files, err := scan.Discover(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files found in the given paths")
	}
	log.Debug("Found %d audio files", len(files))

	mode, err := metadata.ParseMergeMode(cfg.Merge)
	if err != nil {
		return err
	}

	runner := pipeline.New(log,
		sample.New(log, cfg.SampleSeconds),
		recognize.New(cfg.APIToken, cfg.Providers),
		artwork.NewFetcher(),
		pipeline.Options{
			Review: cfg.Review,
			Merge:  mode,
			Rename: cfg.Rename,
			DryRun: cfg.DryRun,
		})

	// The bar owns the terminal line, so it stays off whenever other
	// output needs it: verbose logs, dry-run reports, review prompts.
	var bar *progress.Bar
	if !cfg.Verbose && !cfg.DryRun && !cfg.Review {
		bar = progress.New()
		log.SetProgressBar(true)
	}

	done := make(chan []pipeline.Outcome, 1)
	go func() { done <- runner.Run(sh.Context(), files) }()

	stdin := bufio.NewReader(os.Stdin)
	for ev := range runner.Events() {
		switch ev.Kind {
		case pipeline.EventProgress:
			if bar != nil {
				bar.SetPercent(ev.Percent)
			}
		case pipeline.EventReview:
			resolveReview(stdin, ev.Review)
		case pipeline.EventFileDone:
			report(log, cfg, ev.Outcome)
		}
	}
	outcomes := <-done

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	var tagged, skipped, failed int
	for _, o := range outcomes {
		switch o.Status {
		case pipeline.StatusDone:
			tagged++
		case pipeline.StatusSkipped:
			skipped++
		case pipeline.StatusFailed:
			failed++
		}
	}
	log.Info("=== %d tagged, %d skipped, %d failed ===", tagged, skipped, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

// report prints one file's outcome. With a progress bar active these
// lines land in the file log only.
func report(log *logger.Logger, cfg config.Config, o *pipeline.Outcome) {
	switch o.Status {
	case pipeline.StatusDone:
		switch {
		case cfg.DryRun:
			log.Info("  would tag as %q by %q", o.Track.Title, o.Track.Artist)
			if o.NewPath != "" {
				log.Info("  would rename to %s", filepath.Base(o.NewPath))
			}
		case o.NewPath != "":
			log.Info("  tagged and renamed to %s", filepath.Base(o.NewPath))
		default:
			log.Info("  tagged as %q by %q", o.Track.Title, o.Track.Artist)
		}
	case pipeline.StatusSkipped:
		log.Info("  skipped: %s", o.Reason)
	case pipeline.StatusFailed:
		log.Warn("  failed (%s): %v", o.Stage, o.Err)
	}

	for _, w := range o.Warnings {
		log.Warn("  %s", w)
	}
}

// resolveReview runs the interactive comparison prompt for one file.
func resolveReview(stdin *bufio.Reader, req *pipeline.ReviewRequest) {
	fmt.Printf("\n--- Review: %s ---\n", filepath.Base(req.Path))
	printField("artist", req.Old.Artist, req.Proposed.Artist)
	printField("title", req.Old.Title, req.Proposed.Title)
	printField("album", req.Old.Album, req.Proposed.Album)
	printField("date", req.Old.ReleaseDate, req.Proposed.ReleaseDate)

	for {
		fmt.Print("Apply? [Y]es / [n]o / [e]dit: ")
		answer, err := stdin.ReadString('\n')
		if err != nil {
			req.Skip()
			return
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "y", "yes":
			req.Apply(metadata.EditOf(req.Proposed))
			return
		case "n", "no":
			req.Skip()
			return
		case "e", "edit":
			req.Apply(promptEdit(stdin, req.Proposed))
			return
		}
	}
}

func printField(name, old, proposed string) {
	if old == "" {
		old = "(empty)"
	}
	if proposed == "" {
		proposed = "(empty)"
	}
	fmt.Printf("  %-7s %s -> %s\n", name+":", old, proposed)
}

// promptEdit asks for each editable field, keeping the proposed value on
// an empty answer.
func promptEdit(stdin *bufio.Reader, proposed metadata.Track) metadata.Edit {
	edit := metadata.EditOf(proposed)
	edit.Artist = promptValue(stdin, "artist", edit.Artist)
	edit.Title = promptValue(stdin, "title", edit.Title)
	edit.Album = promptValue(stdin, "album", edit.Album)
	edit.ReleaseDate = promptValue(stdin, "date", edit.ReleaseDate)
	return edit
}

func promptValue(stdin *bufio.Reader, name, current string) string {
	fmt.Printf("  %s [%s]: ", name, current)
	answer, err := stdin.ReadString('\n')
	if err != nil {
		return current
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return current
	}
	return answer
}
