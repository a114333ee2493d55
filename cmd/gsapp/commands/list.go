package commands

import (
	"fmt"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/cmd/gsapp/utils"
	"gsapp-backend/internal/scrapers/gsweb"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(teachersCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(foodCmd)
}

var teachersCmd = &cobra.Command{
	Use:   "teachers",
	Short: "Lists the staff directory merged with locally added teachers.",
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository

		for res := range repo.Teachers(cmd.Context()) {
			if res.Err != nil {
				utils.Fatal("failed to load teachers", res.Err)
			}

			t := utils.NewTable()
			t.SetTitle(fmt.Sprintf("Lehrer (%s)", res.Source))
			t.AppendHeader(table.Row{"Kürzel", "Name"})
			for _, teacher := range res.Value {
				t.AppendRow(table.Row{teacher.ShortName, teacher.LongName})
			}
			t.Render()
		}
	},
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Lists the subject dictionary.",
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository

		for res := range repo.Subjects(cmd.Context()) {
			if res.Err != nil {
				utils.Fatal("failed to load subjects", res.Err)
			}

			t := utils.NewTable()
			t.SetTitle(fmt.Sprintf("Fächer (%s)", res.Source))
			t.AppendHeader(table.Row{"Kürzel", "Name", "Farbe"})
			for _, subject := range res.Value {
				t.AppendRow(table.Row{
					subject.ShortName,
					subject.LongName,
					fmt.Sprintf("#%08X", uint32(subject.Color)),
				})
			}
			t.Render()
		}
	},
}

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Prints the cafeteria menu of the current week.",
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository

		for res := range repo.FoodPlan(cmd.Context()) {
			if gsweb.IsNotSupported(res.Err) {
				fmt.Println("Für die Mensa ist kein Speiseplan konfiguriert.")
				return
			}
			if res.Err != nil {
				utils.Fatal("failed to load food plan", res.Err)
			}

			t := utils.NewTable()
			t.SetTitle(fmt.Sprintf("Speiseplan (%s)", res.Source))
			t.AppendHeader(table.Row{"Tag", "Essen", "Gericht", "Zusatzstoffe"})
			for _, offer := range res.Value {
				for _, food := range offer.Foods {
					t.AppendRow(table.Row{
						offer.Date.Format("Mon 02.01."),
						food.MealSlot,
						food.Name,
						strings.Join(food.Additives, ", "),
					})
				}
				t.AppendSeparator()
			}
			t.Render()
		}
	},
}
