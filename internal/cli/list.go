package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/notes-export/internal/export"
	"github.com/rcliao/notes-export/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the notes an export would cover",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

type noteSummary struct {
	PK       int64      `json:"pk"`
	Title    string     `json:"title"`
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	logger := newLogger()
	s, err := openStore(logger)
	if err != nil {
		exitErr("open database", err)
	}
	defer s.Close()

	notes, _, err := s.ListNotes(cmd.Context(), store.NewResolver(s, s))
	if err != nil {
		exitErr("list", err)
	}
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}

	summaries := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, noteSummary{
			PK:       n.PK,
			Title:    export.DeriveTitle(n.Title, n.Snippet, "", n.PK),
			Created:  n.Created,
			Modified: n.Modified,
		})
	}

	b, _ := json.MarshalIndent(summaries, "", "  ")
	fmt.Println(string(b))
}
