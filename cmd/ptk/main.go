/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MylesManT/Producer-s-toolkit/internal/backend"
	"github.com/MylesManT/Producer-s-toolkit/internal/breakdown"
	"github.com/MylesManT/Producer-s-toolkit/internal/config"
	"github.com/MylesManT/Producer-s-toolkit/internal/crash"
	"github.com/MylesManT/Producer-s-toolkit/internal/domain"
	"github.com/MylesManT/Producer-s-toolkit/internal/fountain"
	applog "github.com/MylesManT/Producer-s-toolkit/internal/log"
	"github.com/MylesManT/Producer-s-toolkit/internal/preview"
	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
	"github.com/MylesManT/Producer-s-toolkit/internal/storage"
	"github.com/MylesManT/Producer-s-toolkit/internal/telemetry"
	"github.com/MylesManT/Producer-s-toolkit/internal/version"
)

func usage() {
	fmt.Println("Producer's Toolkit — shoot day scheduler")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ptk version|-v|--version                   Show version")
	fmt.Println("  ptk init <dir> <name>                      Create a new production at <dir>")
	fmt.Println("  ptk open <dir>                             Open production at <dir>, reindex and print summary")
	fmt.Println("  ptk breakdown [flags] <screenplay|dir>     Compute and print the shoot-day breakdown")
	fmt.Println("  ptk search -production <dir> [flags]       Search indexed scenes")
	fmt.Println("  ptk preview [flags] <screenplay|dir>       Serve the breakdown over HTTP")
	fmt.Println("  ptk push [flags] <dir>                     Push the breakdown to the production office")
	fmt.Println()
	fmt.Println("Run 'ptk <command> -h' for command flags.")
}

func main() {
	// .env is a developer convenience; absence is fine.
	_ = godotenv.Load()
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProductionHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Producer's Toolkit — shoot day scheduler")
		fmt.Println(version.String())
	case "init":
		ph = cmdInit(l, args[2:])
	case "open":
		ph = cmdOpen(l, args[2:])
	case "breakdown":
		ph = cmdBreakdown(l, args[2:])
	case "search":
		cmdSearch(l, args[2:])
	case "preview":
		ph = cmdPreview(l, args[2:])
	case "push":
		ph = cmdPush(l, args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func cmdInit(l *slog.Logger, args []string) *storage.ProductionHandle {
	if len(args) < 2 {
		fmt.Println("init requires <dir> and <name>")
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[0])
	name := args[1]
	l.Info("init production", slog.String("root", abs), slog.String("name", name))
	prod := domain.Production{
		ID:   uuid.New(),
		Name: name,
		Day:  domain.DefaultDayPlan(),
	}
	h, err := storage.InitProduction(abs, prod)
	if err != nil {
		fail(l, "init failed", err)
	}
	fmt.Println("Created production at", abs)
	return h
}

func cmdOpen(l *slog.Logger, args []string) *storage.ProductionHandle {
	if len(args) < 1 {
		fmt.Println("open requires <dir>")
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[0])
	l.Info("open production", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}

	scenes := loadScenes(l, h)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.UpdateIndex(ctx, h.Root, scenes); err != nil {
		l.Warn("scene index update failed", slog.Any("err", err))
	}

	fmt.Printf("Opened production: %s\n", h.Production.Name)
	fmt.Printf("Scenes: %d\n", len(scenes))
	fmt.Println("Root:", h.Root)
	return h
}

// dayFlags registers the shoot-day flags on fs, seeded from cfg, and
// returns a resolver. Resolution starts from the production's day plan
// when one is given, then explicitly-set flags override it; with no
// production the flag values stand alone.
func dayFlags(fs *flag.FlagSet, cfg config.ScheduleConfig) func(base *domain.DayPlan) (schedule.DayConfig, error) {
	start := fs.String("start", cfg.StartTime, "day start time (HH:MM)")
	wpp := fs.Int("wpp", cfg.WordsPerPage, "words per script page")
	setupMin := fs.Int("setup-min", cfg.SetupMinutes, "minutes charged per setup")
	lunchMode := fs.String("lunch-mode", "auto", "lunch placement: auto or fixed")
	lunchHours := fs.Int("lunch-hours", 6, "hours after start for fixed lunch")
	lunchMin := fs.Int("lunch-min", cfg.LunchDurationMin, "lunch duration in minutes")
	extras := fs.Bool("extras", true, "include lunch and company moves in totals")
	moves := fs.Int("moves", 0, "company move count")
	moveMin := fs.Int("move-min", cfg.MoveDurationMin, "minutes per company move")

	return func(base *domain.DayPlan) (schedule.DayConfig, error) {
		plan := domain.DayPlan{
			StartTime:        *start,
			WordsPerPage:     *wpp,
			SetupMinutes:     *setupMin,
			LunchMode:        *lunchMode,
			FixedLunchHours:  *lunchHours,
			LunchDurationMin: *lunchMin,
			IncludeExtras:    *extras,
			MoveCount:        *moves,
			MoveDurationMin:  *moveMin,
		}
		if base != nil {
			flagPlan := plan
			plan = *base
			fs.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "start":
					plan.StartTime = flagPlan.StartTime
				case "wpp":
					plan.WordsPerPage = flagPlan.WordsPerPage
				case "setup-min":
					plan.SetupMinutes = flagPlan.SetupMinutes
				case "lunch-mode":
					plan.LunchMode = flagPlan.LunchMode
				case "lunch-hours":
					plan.FixedLunchHours = flagPlan.FixedLunchHours
				case "lunch-min":
					plan.LunchDurationMin = flagPlan.LunchDurationMin
				case "extras":
					plan.IncludeExtras = flagPlan.IncludeExtras
				case "moves":
					plan.MoveCount = flagPlan.MoveCount
				case "move-min":
					plan.MoveDurationMin = flagPlan.MoveDurationMin
				}
			})
		}
		return plan.EngineConfig()
	}
}

// resolveInput loads scenes and, when the argument is a production
// directory, the production handle with its overrides.
func resolveInput(l *slog.Logger, arg string) ([]fountain.Scene, *storage.ProductionHandle) {
	abs, _ := filepath.Abs(arg)
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open production failed", err)
		}
		return loadScenes(l, h), h
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		fail(l, "read screenplay failed", err)
	}
	return fountain.Parse(string(data)), nil
}

func loadScenes(l *slog.Logger, h *storage.ProductionHandle) []fountain.Scene {
	path := h.ScreenplayPath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read screenplay failed", err)
	}
	return fountain.Parse(string(data))
}

// buildTable resolves the input, merges production overrides when
// present, and computes the breakdown.
func buildTable(l *slog.Logger, arg string, resolve func(*domain.DayPlan) (schedule.DayConfig, error)) (breakdown.Table, *storage.ProductionHandle, string) {
	scenes, h := resolveInput(l, arg)
	name := filepath.Base(arg)
	var base *domain.DayPlan
	var overrides breakdown.SetupOverride
	if h != nil {
		name = h.Production.Name
		base = &h.Production.Day
		overrides = h.Production.SetupOverrides()
	}
	cfg, err := resolve(base)
	if err != nil {
		fail(l, "invalid day configuration", err)
	}
	tbl := breakdown.Build(scenes, cfg, overrides)
	telemetry.Event("breakdown_computed", map[string]any{"scenes": len(scenes)})
	return tbl, h, name
}

func cmdBreakdown(l *slog.Logger, args []string) *storage.ProductionHandle {
	appCfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		appCfg = config.Defaults()
	}
	fs := flag.NewFlagSet("breakdown", flag.ExitOnError)
	engineCfg := dayFlags(fs, appCfg.Schedule)
	snapshot := fs.Bool("snapshot", true, "record the schedule in the production history")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("breakdown requires a screenplay file or production dir")
		os.Exit(2)
	}

	tbl, h, _ := buildTable(l, fs.Arg(0), engineCfg)
	if err := tbl.WriteText(os.Stdout); err != nil {
		fail(l, "render failed", err)
	}

	if h != nil && *snapshot {
		blob, err := json.Marshal(tbl.Rows)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := storage.SaveScheduleSnapshot(ctx, h, blob, "breakdown", time.Now()); err != nil {
				l.Warn("schedule snapshot failed", slog.Any("err", err))
			}
		}
	}
	return h
}

func cmdSearch(l *slog.Logger, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	dir := fs.String("production", "", "production directory")
	text := fs.String("text", "", "full-text query over sluglines and body")
	interior := fs.Bool("interior", false, "interior scenes only")
	exterior := fs.Bool("exterior", false, "exterior scenes only")
	_ = fs.Parse(args)
	if *dir == "" {
		fmt.Println("search requires -production <dir>")
		os.Exit(2)
	}
	q := storage.SceneQuery{Text: *text}
	if *interior != *exterior {
		q.Interior = interior
	}
	abs, _ := filepath.Abs(*dir)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hits, err := storage.SearchScenes(ctx, abs, q)
	if err != nil {
		fail(l, "search failed", err)
	}
	for _, h := range hits {
		kind := "EXT"
		if h.Interior {
			kind = "INT"
		}
		fmt.Printf("%3d  [%s] %s (%d words)\n", h.SceneIdx+1, kind, h.Slugline, h.Words)
		if h.Snippet != "" {
			fmt.Printf("     %s\n", h.Snippet)
		}
	}
}

func cmdPreview(l *slog.Logger, args []string) *storage.ProductionHandle {
	appCfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		appCfg = config.Defaults()
	}
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	engineCfg := dayFlags(fs, appCfg.Schedule)
	addr := fs.String("addr", ":8787", "listen address")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("preview requires a screenplay file or production dir")
		os.Exit(2)
	}

	tbl, h, name := buildTable(l, fs.Arg(0), engineCfg)
	srv := preview.New(name, tbl)
	fmt.Printf("Serving %s on %s\n", name, *addr)
	if err := srv.Run(*addr); err != nil {
		fail(l, "preview server failed", err)
	}
	return h
}

func cmdPush(l *slog.Logger, args []string) *storage.ProductionHandle {
	appCfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		appCfg = config.Defaults()
	}
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	engineCfg := dayFlags(fs, appCfg.Schedule)
	baseURL := fs.String("url", appCfg.Backend.BaseURL, "production office base URL")
	pgDSN := fs.String("pg", appCfg.Backend.PGDSN, "optional shared Postgres DSN")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("push requires a production dir")
		os.Exit(2)
	}

	tbl, h, name := buildTable(l, fs.Arg(0), engineCfg)
	if h == nil {
		fmt.Println("push requires a production dir, not a bare screenplay")
		os.Exit(2)
	}
	payload := backend.SchedulePayload{
		ProductionID:      h.Production.ID,
		ProductionName:    name,
		GeneratedAt:       time.Now().UTC(),
		TotalSceneSeconds: tbl.Result.TotalSceneSeconds,
		Wrap:              tbl.Result.Wrap.String(),
		Rows:              tbl.Rows,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *baseURL != "" {
		rc, err := backend.NewClient(*baseURL, token).PushSchedule(ctx, payload)
		if err != nil {
			fail(l, "schedule push failed", err)
		}
		fmt.Printf("Pushed schedule, receipt %d\n", rc.ID)
	}
	if *pgDSN != "" {
		st, err := backend.OpenStore(ctx, *pgDSN)
		if err != nil {
			fail(l, "postgres store open failed", err)
		}
		defer func() { _ = st.Close() }()
		id, err := st.SaveSchedule(ctx, payload)
		if err != nil {
			fail(l, "postgres save failed", err)
		}
		fmt.Printf("Stored schedule in office database, row %d\n", id)
	}
	if *baseURL == "" && *pgDSN == "" {
		fmt.Println("push needs -url or -pg (or backend config)")
		os.Exit(2)
	}
	return h
}
