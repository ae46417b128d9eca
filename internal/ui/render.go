// Package ui renders run summaries, the action menu and scan history for
// the console.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"peopledetect/internal/cleanup"
	"peopledetect/internal/model"
	"peopledetect/internal/run"
)

// Size formats a byte count.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Settings is the startup banner content.
type Settings struct {
	Dir         string
	Model       string
	Confidence  int
	Frames      int
	Mode        string
	NoImages    bool
	DebugAmount int
	GPU         bool
}

// Banner renders the run settings shown before scanning starts.
func Banner(s Settings) string {
	images := "Creating debug images"
	if s.NoImages {
		images = "Not creating debug images"
	}
	lines := []string{
		TitleStyle.Render("Beginning Detection"),
		fmt.Sprintf("Directory %s has been created", s.Dir),
		fmt.Sprintf("Model %s, %s mode", s.Model, s.Mode),
		fmt.Sprintf("Confidence threshold set to %d%%", s.Confidence),
		fmt.Sprintf("Examining every %d frames.", s.Frames),
		images,
		fmt.Sprintf("Debug amount is set to %d", s.DebugAmount),
		fmt.Sprintf("GPU is set to %t", s.GPU),
	}
	return strings.Join(lines, "\n") + "\n"
}

func row(label, value string) string {
	return LabelStyle.Render(fmt.Sprintf("%-16s", label)) + value
}

// Summary renders the totals of a finished run.
func Summary(r *run.Report) string {
	lines := []string{
		TitleStyle.Render("Scan complete"),
		row("Run", r.RunID),
		row("Output", r.Dir),
		row("Examined", fmt.Sprintf("%d of %d files in %s", r.Examined(), r.Planned, r.Duration().Round(time.Millisecond))),
		row("Person", PersonStyle.Render(fmt.Sprintf("%d (%s)", len(r.Found), Size(r.BytesPerson)))),
		row("No person", NoPersonStyle.Render(fmt.Sprintf("%d (%s)", len(r.NotFound), Size(r.BytesNoPerson)))),
	}
	if len(r.Errors) > 0 {
		lines = append(lines, row("Errors", ErrorStyle.Render(fmt.Sprintf("%d (%s)", len(r.Errors), Size(r.BytesErrored)))))
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, row("Skipped", fmt.Sprintf("%d", len(r.Skipped))))
	}
	if r.StoppedEarly {
		lines = append(lines, ErrorStyle.Render("Stopped before all files were examined"))
	}
	lines = append(lines, "",
		fmt.Sprintf("Total file size without people detected: %s/%s", Size(r.BytesToDelete()), Size(r.TotalBytes)))

	return BoxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// Menu renders the delete actions.
func Menu(actions []cleanup.Action) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Next action:") + "\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "  %s %s\n", KeyStyle.Render(fmt.Sprintf("[%d]", int(a))), a)
	}
	return b.String()
}

// History renders recent runs and aggregate stats.
func History(runs []model.Run, stats *model.Stats) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Recent runs") + "\n")
	if len(runs) == 0 {
		b.WriteString(LabelStyle.Render("no runs recorded") + "\n")
	}
	for _, r := range runs {
		status := "running"
		if r.FinishedAt != nil {
			status = humanize.Time(*r.FinishedAt)
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s/%s/%s  %s to delete of %s  (%s)\n",
			LabelStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")),
			r.ID[:min(8, len(r.ID))],
			r.Input,
			PersonStyle.Render(fmt.Sprint(r.FilesFound)),
			NoPersonStyle.Render(fmt.Sprint(r.FilesNotFound)),
			ErrorStyle.Render(fmt.Sprint(r.FilesErrored)),
			Size(r.BytesToDelete),
			Size(r.TotalBytes),
			status,
		)
	}

	if stats != nil {
		b.WriteString("\n" + TitleStyle.Render("All time") + "\n")
		b.WriteString(row("Runs", fmt.Sprint(stats.TotalRuns)) + "\n")
		b.WriteString(row("Files", fmt.Sprintf("%d (%s)", stats.FilesScanned, Size(stats.BytesScanned))) + "\n")
		b.WriteString(row("Person", fmt.Sprint(stats.PersonFound)) + "\n")
		b.WriteString(row("No person", fmt.Sprint(stats.NoPerson)) + "\n")
		b.WriteString(row("Errors", fmt.Sprint(stats.Errored)) + "\n")
		if len(stats.ObjectCounts) > 0 {
			b.WriteString(row("Objects", objects(stats.ObjectCounts)) + "\n")
		}
	}
	return b.String()
}

func objects(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}
