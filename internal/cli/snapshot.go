package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/store"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save, list and restore model snapshots",
		Long: `Snapshots persist a model (vertices, intrinsic risks and direct edges) in the
configured store. The API server reads the same store.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [model-file]",
		Short: "Save a model file as a new snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.ReadFile(args[0])
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Save(cmd.Context(), m)
			if err != nil {
				return err
			}
			printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.ID))
			printStats(len(m.Vertices), len(m.Edges), false)
			return nil
		},
		ValidArgsFunction: completeModelFile,
	}
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No snapshots")
				return nil
			}
			fmt.Println(snapshotTable(list, time.Now()))
			return nil
		},
	}
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a snapshot's model, or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return model.Write(snap.Model, os.Stdout, model.FormatJSON)
			}
			if err := model.WriteFile(snap.Model, output); err != nil {
				return err
			}
			printSuccess("Restored snapshot %s", snap.ID)
			printFile(output)
			printNextStep("Analyze it", "riskflow analyze "+output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the model to this file (.json or .toml)")
	return cmd
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}

// snapshotTable renders snapshot summaries with ages relative to now.
func snapshotTable(list []store.Summary, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		name := s.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{s.ID, name, fmt.Sprintf("%d", s.Vertices), fmt.Sprintf("%d", s.Edges), formatAge(now.Sub(s.CreatedAt))}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Vertices", "Edges", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			switch col {
			case 0, 4:
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})
	return t.Render()
}

// formatAge formats a duration as a coarse relative time.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dmo ago", int(d.Hours()/24/30))
	}
}
