// Command playtest runs a level from the catalog in the terminal. It is
// the authoring loop: edit a level file, reseed, play it through.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dunnston/dungeongraph/internal/config"
	"github.com/dunnston/dungeongraph/internal/dice"
	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/domain/play"
	"github.com/dunnston/dungeongraph/internal/repositories/enemies"
	"github.com/dunnston/dungeongraph/internal/repositories/levels"
	"github.com/dunnston/dungeongraph/internal/repositories/questions"
	"github.com/dunnston/dungeongraph/internal/repositories/runreports"
	"github.com/dunnston/dungeongraph/internal/repositories/sqlitecatalog"
	"github.com/dunnston/dungeongraph/internal/services/progress"
	"github.com/dunnston/dungeongraph/internal/services/run"
	"github.com/dunnston/dungeongraph/internal/uuid"
)

type repos struct {
	levels    levels.Repository
	enemies   enemies.Repository
	questions questions.Repository
	reports   runreports.Repository
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	r, cleanup, err := buildRepos(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}
	defer cleanup()

	seed(ctx, cfg, r)

	runSvc := run.NewService(&run.ServiceConfig{
		Questions: r.questions,
		Enemies:   r.enemies,
		Progress: progress.NewService(&progress.ServiceConfig{
			Repository:    r.reports,
			UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
		}),
		Roller:        dice.NewRandomRoller(),
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
	})

	levelID := ""
	if len(os.Args) > 1 {
		levelID = os.Args[1]
	}
	lvl, err := pickLevel(ctx, r.levels, levelID)
	if err != nil {
		log.Fatalf("Failed to pick a level: %v", err)
	}

	stats := play.Stats{
		Level:        1,
		MaxHealth:    100,
		MaxMana:      50,
		Strength:     16,
		Intelligence: 12,
		Dexterity:    14,
		Charisma:     10,
		Defense:      5,
		CritChance:   0.1,
		DodgeChance:  0.1,
	}

	fmt.Printf("=== %s ===\n\n", lvl.Metadata.Name)

	handle, event, err := runSvc.Start(ctx, lvl, "playtest", stats)
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}

	in := bufio.NewScanner(os.Stdin)
	for !event.Terminal() {
		render(event, handle.State())

		input, quit := readInput(in, event)
		if quit {
			runSvc.Abort(handle)
			fmt.Println("Run aborted.")
			return
		}

		event, err = runSvc.Resume(ctx, handle, input)
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
	}

	render(event, handle.State())
	for _, d := range handle.Diagnostics() {
		log.Printf("diagnostic: %s", d)
	}
}

func buildRepos(ctx context.Context, cfg *config.Config) (*repos, func(), error) {
	if cfg.Storage.SQLitePath != "" {
		store, err := sqlitecatalog.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using SQLite catalog at %s", cfg.Storage.SQLitePath)
		return &repos{
			levels:    store.Levels(),
			enemies:   store.Enemies(),
			questions: store.Questions(),
			reports:   runreports.NewInMemoryRepository(),
		}, func() { _ = store.Close() }, nil
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			log.Println("Falling back to in-memory repositories")
			_ = client.Close()
		} else {
			log.Printf("Using Redis at %s", opts.Addr)
			return &repos{
				levels:    levels.NewRedisRepository(client),
				enemies:   enemies.NewRedisRepository(client),
				questions: questions.NewRedisRepository(client),
				reports:   runreports.NewRedisRepository(client),
			}, func() { _ = client.Close() }, nil
		}
	}

	return &repos{
		levels:    levels.NewInMemoryRepository(),
		enemies:   enemies.NewInMemoryRepository(),
		questions: questions.NewInMemoryRepository(),
		reports:   runreports.NewInMemoryRepository(),
	}, func() {}, nil
}

func seed(ctx context.Context, cfg *config.Config, r *repos) {
	if n, err := levels.Seed(ctx, r.levels, cfg.Content.LevelDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to seed levels: %v", err)
		}
	} else {
		log.Printf("Seeded %d levels from %s", n, cfg.Content.LevelDir)
	}
	if n, err := enemies.Seed(ctx, r.enemies, cfg.Content.EnemyDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to seed enemies: %v", err)
		}
	} else {
		log.Printf("Seeded %d enemies from %s", n, cfg.Content.EnemyDir)
	}
	if n, err := questions.Seed(ctx, r.questions, cfg.Content.QuestionDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to seed questions: %v", err)
		}
	} else {
		log.Printf("Seeded %d questions from %s", n, cfg.Content.QuestionDir)
	}
}

func pickLevel(ctx context.Context, repo levels.Repository, id string) (*level.Level, error) {
	if id != "" {
		switch strings.ToLower(filepath.Ext(id)) {
		case ".yaml", ".yml", ".json":
			return levels.LoadFile(id)
		}
		return repo.Get(ctx, id)
	}

	summaries, err := repo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no levels in the catalog; set LEVEL_DIR or pass a level id")
	}

	fmt.Println("Levels:")
	for i, s := range summaries {
		fmt.Printf("  %d) %s (%s, difficulty %s)\n", i+1, s.Name, s.ID, s.Difficulty)
	}
	fmt.Print("Pick a level: ")

	in := bufio.NewScanner(os.Stdin)
	if !in.Scan() {
		return nil, fmt.Errorf("no selection")
	}
	n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
	if err != nil || n < 1 || n > len(summaries) {
		return nil, fmt.Errorf("invalid selection")
	}
	return repo.Get(ctx, summaries[n-1].ID)
}

func render(event *run.Event, state *play.RunState) {
	for _, line := range event.Lines {
		fmt.Println(line)
	}
	fmt.Println()

	switch event.Type {
	case run.EventCompleted:
		fmt.Println("*** Level complete! ***")
		if event.Rewards != nil {
			fmt.Printf("Earned %d xp and %d gold.\n", event.Rewards.XP, event.Rewards.Gold)
		}
		return
	case run.EventDefeated:
		fmt.Println("*** You have fallen. ***")
		return
	case run.EventDeadEnd:
		fmt.Println("*** The path ends here. ***")
		return
	}

	fmt.Printf("[HP %d/%d | Mana %d | XP %d | Gold %d]\n",
		state.Health, state.MaxHealth, state.Mana, state.TotalXP, state.TotalGold)
	if event.Question != nil {
		fmt.Printf("Q: %s\n", event.Question.Prompt)
	}
	for i, action := range event.Actions {
		fmt.Printf("  %d) %s\n", i+1, action.Label)
	}
}

func readInput(in *bufio.Scanner, event *run.Event) (run.Input, bool) {
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return run.Input{}, true
		}
		text := strings.TrimSpace(in.Text())
		if text == "q" || text == "quit" {
			return run.Input{}, true
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(event.Actions) {
			fmt.Println("Pick one of the numbered actions, or q to quit.")
			continue
		}

		action := event.Actions[n-1]
		switch action.Kind {
		case run.ActionContinue:
			return run.ContinueInput(), false
		case run.ActionOption:
			return run.OptionInput(action.ID), false
		case run.ActionAnswer:
			index, convErr := strconv.Atoi(action.ID)
			if convErr != nil {
				fmt.Println("Pick one of the numbered actions, or q to quit.")
				continue
			}
			return run.AnswerInput(index), false
		case run.ActionRoll:
			return run.RollInput(), false
		case run.ActionTake:
			return run.TakeInput(), false
		case run.ActionAbility:
			return run.AbilityInput(action.ID), false
		case run.ActionFlee:
			return run.FleeInput(), false
		default:
			fmt.Println("Pick one of the numbered actions, or q to quit.")
		}
	}
}
