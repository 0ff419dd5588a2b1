package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/config"
	"github.com/mars-robotics/buildseq/internal/display"
	"github.com/mars-robotics/buildseq/internal/graph"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/sequence"
)

var planTarget string

// planCmd is a one-shot CLI dry-run: it opens the configured graph store,
// builds a sequence for --target using only the configured default
// parameters (no initial-situation/goals overlay — that's the HTTP/AMQP
// front ends' job), and prints it with internal/display instead of serving
// it over a front end. Useful for inspecting a deployed graph store without
// standing up a server.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "build a sequence against the configured graph store and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.Context())
	},
}

func init() {
	planCmd.Flags().StringVar(&planTarget, "target", "approach", "sequence target: approach, station, or work")
	rootCmd.AddCommand(planCmd)
}

func runPlan(ctx context.Context) error {
	printer := display.NewPrinter(nil)

	goals := cfg.Environment.DefaultParameters.Goals
	kindKey := planTarget + "_" + goals.DefaultType
	kind, ok := sequence.ParseKind(kindKey)
	if !ok {
		err := apperr.New(apperr.KindValidationBody, []string{"commands.plan"}, "unknown sequence target %q", planTarget)
		printer.PrintError(planTarget, err)
		return err
	}

	driver, err := graph.Open(ctx, cfg.Environment.Database.URI, graph.DefaultConnectTimeout)
	if err != nil {
		return err
	}
	defer driver.Close()

	area := sequence.BuildAreaDef(defaultGoalDefinition(goals, planTarget))

	situations := cfg.Environment.DefaultParameters.Situations
	carrierStates := defaultStateObjects(situations.RobotSituation)
	workStates := defaultStateObjects(situations.WorkSituation)

	unit := sequence.New(driver)
	plan, err := unit.Build(ctx, kind, area, carrierStates, workStates)
	if err != nil {
		printer.PrintError(planTarget, err)
		return err
	}
	printer.PrintPlan(planTarget, sequence.Serialize(plan))
	return nil
}

func defaultGoalDefinition(goals config.DefaultGoals, target string) map[string]string {
	switch target {
	case "work":
		return goals.WorkArea
	case "station":
		return goals.StationArea
	default:
		return goals.ApproachArea
	}
}

func defaultStateObjects(entries map[string]config.StateEntry) []model.StateObject {
	out := make([]model.StateObject, 0, len(entries))
	for uid, entry := range entries {
		so := model.NewStateObject(uid, model.Relation(entry.Relation), entry.State)
		so.Priority = entry.Priority
		out = append(out, so)
	}
	return out
}
