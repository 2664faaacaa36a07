// Package render draws the live progress view from aggregator snapshots.
// It only formats the snapshot data; all numbers come from pkg/progress.
package render

import (
	"fmt"
	"io"
	"time"

	tm "github.com/buger/goterm"

	"github.com/anzolabs/bunnysync/pkg/progress"
)

// View renders snapshots in place on the terminal. Render is only ever
// called from the sampler goroutine, so no locking is needed.
type View struct {
	lastLines int
}

// NewView creates an empty view.
func NewView() *View {
	return &View{}
}

// Render draws the current snapshot, overwriting the previous one.
func (v *View) Render(snap progress.Snapshot) {
	if v.lastLines > 0 {
		tm.MoveCursorUp(v.lastLines)
	}

	lines := 1
	tm.Print(tm.ResetLine(""))
	tm.Printf("%5.1f%%  %s / %s  %s/s  %d/%d files\n",
		snap.Percent,
		formatBytes(snap.CompletedBytes),
		formatBytes(snap.TotalBytes),
		formatBytes(int64(snap.Throughput)),
		snap.CompletedFiles,
		snap.TotalFiles,
	)

	for _, file := range snap.Files {
		if file.Completed {
			continue
		}
		tm.Print(tm.ResetLine(""))
		tm.Printf("  %s  %s / %s\n",
			file.Key,
			formatBytes(file.TransferredBytes),
			formatBytes(file.TotalBytes),
		)
		lines++
	}

	tm.Flush()
	v.lastLines = lines
}

// PrintSummary prints the final run summary.
func PrintSummary(w io.Writer, transferred, skipped, deleted, failed int, bytes int64, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Transferred: %d files (%s)\n", transferred, formatBytes(bytes))
	fmt.Fprintf(w, "Skipped: %d files\n", skipped)
	fmt.Fprintf(w, "Deleted: %d files\n", deleted)
	if failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", failed)
	}
	fmt.Fprintf(w, "Duration: %s\n", elapsed.Round(time.Millisecond))
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
