package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/internal/config"
	"agentrouter/internal/llm"
	"agentrouter/internal/state"
	"agentrouter/internal/workflow"
	"agentrouter/pkg/models"
)

var (
	runDirective string
	runTaskType  string
	runTitle     string
	runStrategy  string
)

var runCmd = &cobra.Command{
	Use:   "run <description...>",
	Short: "Route a task and execute the chosen workflow",
	Long: `Route a task description to a strategy and execute it against the
registered agent pool, streaming checkpoints as they are emitted.

Examples:
  agentrouter run "add rate limiting to the API gateway"
  agentrouter run --directive "ask alice and bob" "design the event schema"
  agentrouter run --strategy consensus "choose a sharding key for orders"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runDirective, "directive", "d", "", "Free-text routing directive")
	runCmd.Flags().StringVarP(&runTaskType, "type", "t", string(models.TaskTypeImplementation), "Task type")
	runCmd.Flags().StringVar(&runTitle, "title", "", "Short task title (defaults to the description)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "Skip routing and force a strategy (solo, sequential, parallel, consensus)")
}

func runRun(cmd *cobra.Command, args []string) error {
	taskType := models.TaskType(runTaskType)
	if !taskType.Valid() {
		return fmt.Errorf("unknown task type %q", runTaskType)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	description := strings.Join(args, " ")
	title := runTitle
	if title == "" {
		title = truncate(description, 60)
	}

	res := a.route(title, description, runDirective, taskType)
	if runStrategy != "" {
		forced := models.RoutingStrategy(runStrategy)
		if !forced.Valid() {
			return fmt.Errorf("unknown strategy %q", runStrategy)
		}
		res.task.Strategy = forced
		res.decision.Strategy = forced
		res.decision.Reasons = append(res.decision.Reasons, "strategy forced from the command line")
	}
	printDecision(res)

	task := res.task
	if err := a.db.CreateTask(task); err != nil {
		return fmt.Errorf("persist task: %w", err)
	}

	services, emitter, err := a.buildServices()
	if err != nil {
		return err
	}

	executor, err := workflow.ForStrategy(task.Strategy, services, a.cfg.Workflow)
	if err != nil {
		return err
	}

	// Hot-reload the picker config while the workflow runs.
	if path := config.GetProjectConfigPath(); path != "" {
		if watcher, werr := config.NewWatcher(path, a.holder); werr == nil {
			go watcher.Run(ctx)
		}
	}

	done := make(chan struct{})
	go streamEvents(emitter, done)

	task.Status = models.TaskStatusInProgress
	if err := a.db.UpdateTask(task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	fmt.Println()
	rt := workflow.NewRuntime(task)
	step := executor.Execute(ctx, rt)

	emitter.Close()
	<-done

	return a.finishTask(task, rt, step)
}

// buildServices assembles the collaborator handles a workflow executor
// needs, backed by the Anthropic API and the state database.
func (a *app) buildServices() (workflow.Services, *workflow.Emitter, error) {
	apiKey := ""
	if !a.cfg.Anthropic.UseBedrock {
		key, err := config.GetAPIKey(a.cfg)
		if err != nil {
			return workflow.Services{}, nil, err
		}
		apiKey = key
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(a.cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: a.cfg.Anthropic.UseBedrock,
		AWSRegion:     a.cfg.Anthropic.AWSRegion,
		AWSProfile:    a.cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return workflow.Services{}, nil, fmt.Errorf("create API client: %w", err)
	}

	runner := llm.NewRunner(client)
	store := llm.NewProposalStore()
	emitter := workflow.NewEmitter(64)

	return workflow.Services{
		Directory:   a.registry,
		Checkpoints: a.db,
		Messages:    state.NewMessageLog(a.db),
		Tokens:      state.NewTokenRecorder(a.db),
		Events:      emitter,
		Runner:      runner,
		Proposals:   llm.NewProducer(runner, store),
		Resolver:    llm.NewResolver(store),
	}, emitter, nil
}

// streamEvents renders workflow events until the emitter closes.
func streamEvents(emitter *workflow.Emitter, done chan<- struct{}) {
	defer close(done)
	for event := range emitter.Events() {
		switch event.Type {
		case workflow.EventCheckpointCreated:
			fmt.Printf("  %s %s\n", color.CyanString("checkpoint"), event.Message)
		case workflow.EventAgentAssigned:
			fmt.Printf("  %s %s\n", color.BlueString("agent"), event.AgentID)
		case workflow.EventCompleted:
			fmt.Printf("  %s %s\n", color.GreenString("completed"), event.Message)
		case workflow.EventFailed:
			fmt.Printf("  %s %s\n", color.RedString("failed"), event.Message)
		}
	}
}

// finishTask applies the terminal step to the task row and prints the result.
func (a *app) finishTask(task *models.Task, rt *workflow.Runtime, step workflow.Step) error {
	now := time.Now().UTC()

	switch step.Kind {
	case workflow.StepSuccess:
		task.Status = models.TaskStatusDone
		task.CompletedAt = &now
	case workflow.StepWaitingInput:
		task.Status = models.TaskStatusWaitingInput
	default:
		task.Status = models.TaskStatusFailed
		task.Error = step.Error
		task.CompletedAt = &now
	}
	if err := a.db.UpdateTask(task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	fmt.Println()
	switch step.Kind {
	case workflow.StepSuccess:
		color.Green("✓ Task completed")
		fmt.Printf("\n%s\n", step.Output)
		printArtifacts(step.Artifacts)
	case workflow.StepWaitingInput:
		color.Yellow("⚠ Waiting on agents: %s", strings.Join(step.WaitingForAgents, ", "))
	default:
		color.Red("✗ Task failed: %s", step.Error)
		if step.Retryable {
			fmt.Println("  (retryable; re-run to try again)")
		}
	}

	total := rt.Tokens.Total()
	if total.Total() > 0 {
		fmt.Printf("\nTokens: %d in / %d out\n", total.Input, total.Output)
	}
	return nil
}

func printArtifacts(artifacts map[string]string) {
	if len(artifacts) == 0 {
		return
	}
	keys := make([]string, 0, len(artifacts))
	for k := range artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("\nArtifacts:")
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, artifacts[k])
	}
}
