package tools

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crucial707/studybuddy/cmd/cli/config"
	"github.com/crucial707/studybuddy/cmd/cli/output"
	"github.com/crucial707/studybuddy/cmd/cli/root"
	"github.com/crucial707/studybuddy/internal/docparse"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/spf13/cobra"
)

// ==========================
// Init Study
// ==========================
func InitTools(rootCmd *cobra.Command) {
	rootCmd.AddCommand(timetableCmd(), notesCmd())
}

// ==========================
// TIMETABLE
// ==========================
func timetableCmd() *cobra.Command {
	var (
		subjects []string
		start    int
		hours    int
		days     int
		seed     uint64
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Generate a study timetable",
		Long:  "Generate a timetable the same way the web page does and print it as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed>>1))

			cleaned := subjects[:0]
			for _, s := range subjects {
				if s = strings.TrimSpace(s); s != "" {
					cleaned = append(cleaned, s)
				}
			}

			tt, err := study.GenerateTimetable(rng, study.TimetableOptions{
				Subjects:    cleaned,
				StartHour:   start,
				HoursPerDay: hours,
				Days:        days,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), tt)
			}

			headers := append([]string{"Day"}, tt.SlotTimes()...)
			rows := make([][]interface{}, 0, len(tt.Days))
			for _, d := range tt.Days {
				row := []interface{}{d.Day}
				for _, s := range d.Slots {
					row = append(row, s.Subject)
				}
				rows = append(rows, row)
			}
			output.RenderTable(cmd.OutOrStdout(), headers, rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&subjects, "subjects", nil, "Comma separated subjects")
	cmd.Flags().IntVar(&start, "start-hour", 8, "First slot hour (6-12)")
	cmd.Flags().IntVar(&hours, "hours", 3, "Study hours per day")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days (1-14)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the timetable as JSON")

	return cmd
}

// ==========================
// NOTES
// ==========================
func notesCmd() *cobra.Command {
	var file, save string

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Generate notes from a document",
		Long:  "Extract text from a .txt, .pdf or .docx file and print the generated notes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			text, err := docparse.Extract(filepath.Base(file), data)
			if err != nil {
				return err
			}

			notes := study.GenerateNotes(text)
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes generated.")
				return nil
			}
			body := study.NotesMarkdown(notes)
			fmt.Fprintln(cmd.OutOrStdout(), body)

			if save == "" {
				return nil
			}
			m, err := repo.NewArtifactManager(
				config.Path(root.DataDir, "notes"), ".txt",
				config.Path(root.DataDir, "exports"), "all_notes.zip")
			if err != nil {
				return err
			}
			name, err := m.Save(save, []byte(body))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Document to read")
	cmd.Flags().StringVar(&save, "save", "", "Also save the notes under this name in the data directory")

	return cmd
}
