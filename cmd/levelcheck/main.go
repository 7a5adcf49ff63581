// Command levelcheck validates a level catalog and solves every level,
// reporting the minimum number of slides against each level's par.
//
// It exits with a non-zero status when a level fails to load, cannot be
// solved within the search limit, or has a par that disagrees with the
// solver.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/superslide/game/catalog"
	"github.com/wricardo/superslide/game/engine"
)

// LevelReport is the outcome of checking one level.
type LevelReport struct {
	Number  int
	Name    string
	Par     int
	Moves   int
	Visited int
	Steps   []engine.Step
	Valid   bool
	Errors  []string
}

// checkLevel solves one level and compares the result with its par. A par of
// zero means the level does not declare one.
func checkLevel(level *catalog.Level, limit int) LevelReport {
	report := LevelReport{
		Number: level.Number,
		Name:   level.Name,
		Par:    level.Par,
		Moves:  -1,
		Valid:  true,
	}

	solution, err := engine.Solve(level.Layout(), limit)
	switch {
	case errors.Is(err, engine.ErrUnsolvable):
		report.Valid = false
		report.Errors = append(report.Errors, "no sequence of slides reaches the exit")
		return report
	case errors.Is(err, engine.ErrSearchLimit):
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("search gave up after %d positions", limit))
		return report
	case err != nil:
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	report.Moves = solution.Moves()
	report.Visited = solution.Visited
	report.Steps = solution.Steps

	if report.Moves == 0 {
		report.Valid = false
		report.Errors = append(report.Errors, "block already sits on the exit")
	}
	if level.Par > 0 && level.Par != report.Moves {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("par is %d but the shortest solution takes %d", level.Par, report.Moves))
	}
	return report
}

// checkCatalog runs checkLevel over every level in number order.
func checkCatalog(manager *catalog.Manager, limit int) ([]LevelReport, error) {
	reports := make([]LevelReport, 0, manager.Count())
	for n := 1; n <= manager.Count(); n++ {
		level, err := manager.Level(n)
		if err != nil {
			return nil, err
		}
		log.Printf("Solving level %d (%s)", level.Number, level.Name)
		reports = append(reports, checkLevel(level, limit))
	}
	return reports, nil
}

// printReport writes one section per level and a summary line. It returns
// true when every level is valid.
func printReport(w io.Writer, reports []LevelReport, verbose bool) bool {
	allValid := true
	for _, r := range reports {
		fmt.Fprintf(w, "\n%s %d. %s\n", strings.Repeat("=", 20), r.Number, r.Name)

		if r.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, e := range r.Errors {
				fmt.Fprintln(w, "  ❌ "+e)
			}
		}

		if r.Moves >= 0 {
			par := "-"
			if r.Par > 0 {
				par = fmt.Sprint(r.Par)
			}
			fmt.Fprintf(w, "  Moves: %d (par %s, %d positions searched)\n", r.Moves, par, r.Visited)
		}
		if verbose {
			for i, step := range r.Steps {
				fmt.Fprintf(w, "  %2d. piece %d %s\n", i+1, step.PieceID, describeStep(step))
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintf(w, "✅ All %d levels are solvable at par!\n", len(reports))
	} else {
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}

func describeStep(step engine.Step) string {
	dir := map[engine.Axis][2]string{
		engine.Horizontal: {"left", "right"},
		engine.Vertical:   {"up", "down"},
	}[step.Axis]
	name := dir[0]
	if step.Sign > 0 {
		name = dir[1]
	}
	return fmt.Sprintf("%s %d", name, step.Cells)
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "levelcheck",
		Usage: "validate and solve every level of a catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels-dir",
				Usage:   "directory of level files (empty uses the built-in catalog)",
				Sources: cli.EnvVars("SUPERSLIDE_LEVELS_DIR"),
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: engine.DefaultSearchLimit,
				Usage: "maximum positions searched per level",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print the solution steps",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := catalog.NewManager(cmd.String("levels-dir"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading levels: %v", err), 1)
			}

			reports, err := checkCatalog(manager, cmd.Int("limit"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error checking levels: %v", err), 1)
			}

			if !printReport(stdout, reports, cmd.Bool("verbose")) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
