package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/config"
	"github.com/MarianaDuarte/focal/internal/engine"
	"github.com/MarianaDuarte/focal/internal/relevance"
	"github.com/MarianaDuarte/focal/internal/report"
	"github.com/MarianaDuarte/focal/internal/scorecache"
	"github.com/MarianaDuarte/focal/internal/snapshot"
)

var (
	flagRoot   string
	flagTask   string
	flagPins   []string
	flagBudget int64
	flagRescan bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a project into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := resolveScope()
		if err != nil {
			return err
		}

		store := openStore()
		if store != nil {
			defer store.Close()
		}

		var prev *catalog.Snapshot
		if store != nil {
			if prev, err = store.Latest(root); err != nil {
				return err
			}
		}

		scanner := catalog.NewScanner(cfg.Exclude)
		snap, err := scanner.Scan(cmd.Context(), root)
		if err != nil {
			return err
		}

		delta := catalog.Diff(prev, snap)
		if store != nil {
			if err := store.Save(snap); err != nil {
				return err
			}
			_ = store.Prune(root, 5)
		}

		fmt.Printf("Scanned %s\n", root)
		fmt.Printf("Snapshot %s: %d items, %d bytes total\n", snap.ID, len(snap.Items), snap.TotalSize())
		fmt.Printf("Delta: %d added, %d changed, %d removed\n",
			len(delta.Added), len(delta.Changed), len(delta.Removed))
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select a working set for a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, profile, err := optimize(cmd)
		if err != nil {
			return err
		}

		ws := res.WorkingSet
		fmt.Printf("Working set: %d items, %d / %d bytes (%s), %d dropped\n\n",
			len(ws.Items), ws.TotalSize, profile.CapacityBudget, res.Verdict, ws.DroppedCount)
		for i, it := range ws.Items {
			marker := ""
			if profile.Pinned(it.ID) {
				marker = " [pinned]"
			}
			fmt.Printf("%2d. %s (%s, %d bytes, score %.3f)%s\n",
				i+1, it.ID, it.Kind, it.SizeBytes, res.Scores[it.ID], marker)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a context usage report",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, profile, err := optimize(cmd)
		if err != nil {
			return err
		}
		fmt.Print(report.Render(res, profile))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{scanCmd, selectCmd, reportCmd} {
		c.Flags().StringVar(&flagRoot, "root", "", "project root (default: current directory)")
	}
	for _, c := range []*cobra.Command{selectCmd, reportCmd} {
		c.Flags().StringVar(&flagTask, "task", "", "task description used for relevance scoring")
		c.Flags().StringArrayVar(&flagPins, "pin", nil, "item ID to force into the working set (repeatable)")
		c.Flags().Int64Var(&flagBudget, "budget", 0, "capacity budget in bytes (default: configured capacity_budget)")
		c.Flags().BoolVar(&flagRescan, "rescan", false, "force a fresh catalog scan before selecting")
		_ = c.MarkFlagRequired("task")
	}
}

// resolveScope normalizes --root and loads its config. The root is
// made absolute so it matches the scope key persisted snapshots are
// stored under.
func resolveScope() (string, config.Config, error) {
	root := flagRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", config.Config{}, fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("resolving root: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", config.Config{}, err
	}
	return root, cfg, nil
}

// openStore opens the snapshot store, degrading to nil (scan-only
// operation) when the data directory is unusable.
func openStore() *snapshot.Store {
	store, err := snapshot.Open(snapshot.DefaultDataDir())
	if err != nil {
		log.Printf("WARNING: snapshot persistence disabled: %v", err)
		return nil
	}
	return store
}

// optimize runs the shared scan-or-load → score → select pipeline for
// the select and report commands.
func optimize(cmd *cobra.Command) (*engine.Result, relevance.Profile, error) {
	root, cfg, err := resolveScope()
	if err != nil {
		return nil, relevance.Profile{}, err
	}

	budget := flagBudget
	if budget <= 0 {
		budget = cfg.CapacityBudget
	}
	profile := relevance.NewProfile(flagTask, flagPins, budget)
	profile.WarnThreshold = cfg.WarnThreshold
	if err := profile.Validate(); err != nil {
		return nil, relevance.Profile{}, err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	var snap *catalog.Snapshot
	if store != nil && !flagRescan {
		if snap, err = store.Latest(root); err != nil {
			return nil, relevance.Profile{}, err
		}
	}
	if snap == nil {
		scanner := catalog.NewScanner(cfg.Exclude)
		if snap, err = scanner.Scan(cmd.Context(), root); err != nil {
			return nil, relevance.Profile{}, err
		}
		if store != nil {
			if err := store.Save(snap); err != nil {
				return nil, relevance.Profile{}, err
			}
			_ = store.Prune(root, 5)
		}
	}

	eng := engine.New(cfg.Weights(), scorecache.New(cfg.CacheMaxEntries))
	res, err := eng.Optimize(cmd.Context(), snap, profile)
	if err != nil {
		return nil, relevance.Profile{}, err
	}
	return res, profile, nil
}
