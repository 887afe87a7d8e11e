package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"taskq/internal/task"
)

const timeFormat = "2006-01-02 15:04:05"

func renderTasks(w io.Writer, set task.Set) {
	if len(set) == 0 {
		fmt.Fprintln(w, "No tasks found. Add some first!")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Priority", "Description", "Status", "Created", "Completed", "ID"})
	table.SetAutoWrapText(false)

	for _, t := range set {
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(timeFormat)
		}
		table.Append([]string{
			fmt.Sprintf("%d", t.Priority),
			t.Description,
			string(t.Status),
			t.CreatedAt.Local().Format(timeFormat),
			completed,
			shortID(t.ID),
		})
	}
	table.Render()
}

// shortID keeps the table narrow; the full uuid is in the store.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
