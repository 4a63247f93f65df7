package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"agentrouter/internal/config"
	"agentrouter/internal/registry"
	"agentrouter/internal/routing"
	"agentrouter/internal/state"
	"agentrouter/pkg/models"
)

// app wires together the configuration, state store, agent registry, and
// routing components shared by the CLI commands.
type app struct {
	cfg      *config.Config
	db       *state.DB
	registry *registry.Registry
	holder   *routing.ConfigHolder
	parser   *routing.DirectiveParser
	picker   *routing.StrategyPicker
	advisor  *routing.HardRuleAdvisor
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if cfg.Storage.PurgeAfter > 0 {
		if n, err := db.PurgeCompletedTasks(cfg.Storage.PurgeAfter); err != nil {
			log.Printf("[cli] purge completed tasks: %v", err)
		} else if n > 0 {
			log.Printf("[cli] purged %d completed tasks older than %s", n, cfg.Storage.PurgeAfter)
		}
	}

	reg := registry.NewWithPersister(db)
	stored, err := db.ListAgents(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load agents: %w", err)
	}
	reg.Load(stored)
	for _, seed := range cfg.Agents {
		if _, ok := reg.GetAgent(seed.ID); ok {
			continue
		}
		if err := reg.Register(seed.Agent()); err != nil {
			log.Printf("[cli] register seed agent %s: %v", seed.ID, err)
		}
	}

	tables := routing.DefaultPatternTables()
	if cfg.Patterns.Path != "" {
		tables, err = routing.LoadPatternTables(cfg.Patterns.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load pattern tables: %w", err)
		}
	}

	snapshot := cfg.Routing
	holder := routing.NewConfigHolder(&snapshot)

	return &app{
		cfg:      cfg,
		db:       db,
		registry: reg,
		holder:   holder,
		parser:   routing.NewDirectiveParserWithTables(reg, tables),
		picker:   routing.NewStrategyPicker(holder),
		advisor:  routing.NewHardRuleAdvisor(),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Printf("[cli] close database: %v", err)
	}
}

// openDatabase prefers an explicit storage path, then an existing
// project-local database, then the global one.
func openDatabase(cfg *config.Config) (*state.DB, error) {
	if cfg.Storage.Path != "" {
		return state.Open(cfg.Storage.Path)
	}
	if cwd, err := os.Getwd(); err == nil {
		projectPath := state.ProjectDBPath(cwd)
		if _, statErr := os.Stat(projectPath); statErr == nil {
			return state.Open(projectPath)
		}
	}
	return state.OpenGlobal()
}

// routeResult carries everything the route and run commands display.
type routeResult struct {
	task           *models.Task
	classification routing.ClassificationResult
	directive      routing.UserDirective
	decision       routing.Decision
	hardRule       bool
}

// route runs the full decision pipeline for one task description.
func (a *app) route(title, description, directiveText string, taskType models.TaskType) *routeResult {
	cls := routing.Classify(description)
	directive := a.parser.Parse(directiveText)

	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Type:        taskType,
		Status:      models.TaskStatusPending,
		Complexity:  cls.Complexity,
		Risk:        cls.Risk,
		CreatedAt:   time.Now().UTC(),
	}

	res := &routeResult{task: task, classification: cls, directive: directive}

	if strategy, reason, ok := a.advisor.Advise(directive, cls); ok {
		res.hardRule = true
		res.decision = routing.Decision{
			Strategy:   strategy,
			Confidence: 1.0,
			Reasons:    []string{reason},
		}
	} else {
		res.decision = a.picker.Decide(task, directive, &cls)
	}

	task.Strategy = res.decision.Strategy
	if directive.AssignToAgent != "" {
		task.AssignedTo = []string{directive.AssignToAgent}
	} else if len(directive.AssignedAgents) > 0 {
		task.AssignedTo = directive.AssignedAgents
	}
	return res
}
