package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/johns/vibe-distill/internal/archive"
	"github.com/johns/vibe-distill/internal/config"
	"github.com/johns/vibe-distill/internal/discover"
	"github.com/johns/vibe-distill/internal/distill"
	"github.com/johns/vibe-distill/internal/event"
	"github.com/johns/vibe-distill/internal/journey"
	"github.com/johns/vibe-distill/internal/store"
	"github.com/johns/vibe-distill/internal/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	switch os.Args[1] {
	case "distill":
		if len(os.Args) < 3 {
			fatal("usage: vd distill <session-id>")
		}
		if err := distillOne(cfg, os.Args[2]); err != nil {
			fatal("distill: %v", err)
		}

	case "distill-all":
		sessions, err := discover.Sessions(cfg.CaptureDir)
		if err != nil {
			fatal("discover: %v", err)
		}
		for _, sf := range sessions {
			if err := distillOne(cfg, sf.SessionID); err != nil {
				fmt.Fprintf(os.Stderr, "vd: distill %s: %v\n", sf.SessionID, err)
			}
		}

	case "journeys":
		if err := printJourneys(cfg); err != nil {
			fatal("journeys: %v", err)
		}

	case "watch":
		settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
		w := watch.New(cfg.CaptureDir, settle)
		if w == nil {
			fatal("cannot watch %s", cfg.CaptureDir)
		}
		fmt.Printf("watching %s\n", cfg.CaptureDir)
		w.Run(context.Background(), func(sessionID string) {
			if err := distillOne(cfg, sessionID); err != nil {
				fmt.Fprintf(os.Stderr, "vd: distill %s: %v\n", sessionID, err)
			}
		})

	case "version":
		fmt.Printf("vd v%s\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func distillOne(cfg config.Config, sessionID string) error {
	logPath, err := discover.Find(cfg.CaptureDir, sessionID)
	if err != nil {
		return fmt.Errorf("find session log: %w", err)
	}

	events, err := event.ReadSessionFile(logPath)
	if err != nil {
		return err
	}
	links, err := event.ReadLinksFile(cfg.LinksPath())
	if err != nil {
		return err
	}

	in := distill.Input{
		SessionID:  sessionID,
		Events:     events,
		Links:      links,
		ProjectDir: cfg.ProjectDir,
	}
	if cfg.SpecFile != "" {
		if text, err := os.ReadFile(cfg.SpecFile); err == nil {
			in.SpecRef = cfg.SpecFile
			in.SpecText = string(text)
		}
	}

	ds := distill.Distill(in)

	s, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Save(context.Background(), ds, time.Now().UnixMilli()); err != nil {
		return err
	}
	fmt.Printf("distilled %s: %s\n", sessionID, ds.Summary)

	if cfg.Archive.Compress && !archive.IsArchived(sessionID, cfg.ArchiveDir()) {
		if _, err := archive.Archive(logPath, cfg.ArchiveDir()); err != nil {
			fmt.Fprintf(os.Stderr, "vd: archive %s: %v\n", sessionID, err)
		}
	}
	return nil
}

func printJourneys(cfg config.Config) error {
	files, err := discover.Sessions(cfg.CaptureDir)
	if err != nil {
		return err
	}

	var sessions []journey.Session
	for _, sf := range files {
		events, err := event.ReadSessionFile(sf.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vd: read %s: %v\n", sf.SessionID, err)
			continue
		}
		sessions = append(sessions, journey.SessionFromEvents(events))
	}

	for _, j := range journey.Compose(sessions) {
		fmt.Printf("%s  %s  %d sessions, %d tool calls, %d retries\n",
			j.ID, j.LifecycleType, len(j.Phases), j.Cumulative.ToolCalls, j.Cumulative.Retries)
		for _, p := range j.Phases {
			fmt.Printf("  %-20s %s\n", p.Type, p.SessionID)
		}
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `vd v%s — agent session distiller

Usage:
  vd distill <session-id>   Distill one captured session
  vd distill-all            Distill every session in the capture dir
  vd journeys               Chain sessions into journeys and print them
  vd watch                  Distill sessions as their logs settle
  vd version                Print version
  vd help                   Show this help

Configuration: ~/.config/vibe-distill/config.toml
`, version)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "vd: "+format+"\n", args...)
	os.Exit(1)
}
