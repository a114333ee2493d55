package commands

import (
	"fmt"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/cmd/gsapp/utils"
	"gsapp-backend/internal/model"
	"gsapp-backend/internal/scrapers/gsweb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(planCmd)
}

func renderPlan(plan model.SubstitutionDisplaySet, source fmt.Stringer) {
	t := utils.NewTable()
	t.SetTitle(fmt.Sprintf("%s (%s)", plan.Date, source))
	t.AppendHeader(table.Row{"", "Klasse", "Stunde", "Fach", "Lehrer", "Raum", "Vertretung", "Hinweis"})
	for _, s := range plan.Substitutions {
		marker := ""
		if s.Substitution.IsNew {
			marker = "*"
		}
		t.AppendRow(table.Row{
			marker,
			s.Substitution.Class,
			s.Substitution.LessonNumber,
			s.OrigSubject.LongName,
			s.SubstTeacher.LongName,
			s.Substitution.SubstituteRoom,
			s.SubstSubject.LongName,
			s.Substitution.Notes,
		})
	}
	if plan.Notes != "" {
		t.AppendFooter(table.Row{"", "Hinweis", plan.Notes})
	}
	t.Render()
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Prints the substitution plan, first from the cache then again when the website has a newer one.",
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository

		for res := range repo.Display(cmd.Context()) {
			switch {
			case gsweb.IsHoliday(res.Err):
				fmt.Println("Ferien, es gibt keinen Vertretungsplan.")
			case gsweb.IsNoEntries(res.Err):
				fmt.Println("Heute gibt es keine Vertretungen.")
			case res.Err != nil:
				utils.Fatal("failed to load substitution plan", res.Err)
			default:
				renderPlan(res.Value, res.Source)
			}
		}
	},
}
