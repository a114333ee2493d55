package commands

import (
	"fmt"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/cmd/gsapp/utils"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/model"
	"gsapp-backend/pkg/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const suggestionLimit = 5

func init() {
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Resolves a subject or teacher code, suggesting similar codes when nothing matches.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		code := args[0]

		subject, subjectFound, err := g.Repository.SubjectByShort(cmd.Context(), code)
		if err != nil {
			g.Tel.ReportWarning("lookup", fmt.Errorf("subjects: %w", err))
		}
		teacher, teacherFound, err := g.Repository.TeacherByShort(cmd.Context(), code)
		if err != nil {
			g.Tel.ReportWarning("lookup", fmt.Errorf("teachers: %w", err))
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Art", "Kürzel", "Name"})
		if subjectFound {
			t.AppendRow(table.Row{"Fach", subject.ShortName, subject.LongName})
		}
		if teacherFound {
			t.AppendRow(table.Row{"Lehrer", teacher.ShortName, teacher.LongName})
		}
		if subjectFound || teacherFound {
			t.Render()
			return
		}

		var candidates []string
		subjects, _ := cache.Load[[]model.Subject](cmd.Context(), g.Store, cache.KindSubjects)
		for _, entry := range subjects {
			candidates = append(candidates, entry.ShortName)
		}
		teachers, _ := cache.Load[[]model.Teacher](cmd.Context(), g.Store, cache.KindTeachers)
		for _, entry := range teachers {
			candidates = append(candidates, entry.ShortName)
		}

		suggestions := textutil.Suggest(code, candidates, suggestionLimit)
		if len(suggestions) == 0 {
			fmt.Printf("%q is unknown.\n", code)
			return
		}

		fmt.Printf("%q is unknown, did you mean:\n", code)
		t = utils.NewTable()
		t.AppendHeader(table.Row{"Kürzel", "Ähnlichkeit"})
		for _, s := range suggestions {
			t.AppendRow(table.Row{s.Value, fmt.Sprintf("%.2f", s.Similarity)})
		}
		t.Render()
	},
}
