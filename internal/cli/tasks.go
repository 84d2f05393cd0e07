package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/marofny/deckhand/internal/core/deploy"
)

// =============================================================================
// Manifest Loading
// =============================================================================

// ErrPathResolution is returned when the project context directory cannot be
// canonicalized.
var ErrPathResolution = errors.New("cannot resolve project context path")

// loadManifest canonicalizes the context directory and reads the manifest
// file from it. Returns the absolute context dir and the raw manifest text.
func loadManifest() (string, string, error) {
	abs, err := filepath.Abs(contextDir)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrPathResolution, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is not a directory", ErrPathResolution, abs)
	}

	raw, err := os.ReadFile(filepath.Join(abs, manifestFile))
	if err != nil {
		return "", "", fmt.Errorf("cannot read manifest: %w", err)
	}
	return abs, string(raw), nil
}

// mergeFilters combines the single --filter value with the --only list, the
// way operators expect both flags to compose.
func mergeFilters(single string, only []string) []string {
	merged := append([]string(nil), only...)
	if single != "" {
		merged = append(merged, single)
	}
	return merged
}

// =============================================================================
// Task Summary
// =============================================================================

// taskSummary groups a plan's work by what the operator sees: images to
// build, services to create, update and delete.
type taskSummary struct {
	builds  []deploy.BuildTask
	creates []string
	updates []string
	deletes []string
}

// total counts every unit of work in the plan. Noops do not count.
func (s taskSummary) total() int {
	return len(s.builds) + len(s.creates) + len(s.updates) + len(s.deletes)
}

// summarize buckets a plan for printing.
func summarize(deploys []deploy.Deploy) taskSummary {
	var s taskSummary
	for _, d := range deploys {
		for _, task := range d.ClientTasks {
			if task.Kind == deploy.TaskBuild && task.Build != nil {
				s.builds = append(s.builds, *task.Build)
			}
		}
		switch d.Action {
		case deploy.ActionCreate:
			s.creates = append(s.creates, d.Deployable.ShortName)
		case deploy.ActionUpdate:
			s.updates = append(s.updates, d.Deployable.ShortName)
		case deploy.ActionDelete:
			s.deletes = append(s.deletes, d.Deployable.ShortName)
		}
	}
	return s
}

// printSummary prints the per-bucket task listing.
func printSummary(s taskSummary, withBuilds bool) {
	pterm.DefaultSection.Println("Tasks")
	if withBuilds && len(s.builds) > 0 {
		pterm.Printfln("  Build - %d:", len(s.builds))
		for _, task := range s.builds {
			pterm.Printfln("    - %s", task.ShortName)
		}
	}
	if len(s.creates) > 0 {
		pterm.Printfln("  Create - %d:", len(s.creates))
		for _, name := range s.creates {
			pterm.Printfln("    - %s", name)
		}
	}
	if len(s.updates) > 0 {
		pterm.Printfln("  Update - %d:", len(s.updates))
		for _, name := range s.updates {
			pterm.Printfln("    - %s", name)
		}
	}
	if len(s.deletes) > 0 {
		pterm.Printfln("  Delete - %d:", len(s.deletes))
		for _, name := range s.deletes {
			pterm.Printfln("    - %s", name)
		}
	}
}
