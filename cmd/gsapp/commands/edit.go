package commands

import (
	"context"
	"fmt"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/cmd/gsapp/utils"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/model"
	"gsapp-backend/internal/repository"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var subjectColor *string

func init() {
	teacherCmd.AddCommand(teacherAddCmd)
	teacherCmd.AddCommand(teacherUpdateCmd)
	teacherCmd.AddCommand(teacherDeleteCmd)
	rootCmd.AddCommand(teacherCmd)

	subjectColor = subjectAddCmd.Flags().String("color", "FFFF00FF", "The ARGB color of the subject in hex.")
	subjectCmd.AddCommand(subjectAddCmd)
	subjectCmd.AddCommand(subjectDeleteCmd)
	rootCmd.AddCommand(subjectCmd)
}

// cachedTeacher finds a teacher in the cached list by short code.
func cachedTeacher(ctx context.Context, store cache.Store, code string) (model.Teacher, error) {
	teachers, err := cache.Load[[]model.Teacher](ctx, store, cache.KindTeachers)
	if err != nil && !cache.IsMiss(err) {
		return model.Teacher{}, err
	}
	for _, t := range teachers {
		if strings.EqualFold(t.ShortName, code) {
			return t, nil
		}
	}
	return model.Teacher{}, fmt.Errorf("teacher %q: %w", code, repository.ErrNotFound)
}

func cachedSubject(ctx context.Context, store cache.Store, code string) (model.Subject, error) {
	subjects, err := cache.Load[[]model.Subject](ctx, store, cache.KindSubjects)
	if err != nil && !cache.IsMiss(err) {
		return model.Subject{}, err
	}
	for _, s := range subjects {
		if strings.EqualFold(s.ShortName, code) {
			return s, nil
		}
	}
	return model.Subject{}, fmt.Errorf("subject %q: %w", code, repository.ErrNotFound)
}

var teacherCmd = &cobra.Command{
	Use:   "teacher",
	Short: "The 'teacher' subcommand edits the cached staff directory.",
}

var teacherAddCmd = &cobra.Command{
	Use:   "add <short> <name>",
	Short: "Adds a teacher that is kept across refreshes.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository
		err := repo.AddTeacher(cmd.Context(), model.Teacher{ShortName: args[0], LongName: args[1]})
		if err != nil {
			utils.Fatal("failed to add teacher", err)
		}
	},
}

var teacherUpdateCmd = &cobra.Command{
	Use:   "update <short> <new short> <new name>",
	Short: "Replaces the cached teacher with the given short code.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		old, err := cachedTeacher(cmd.Context(), g.Store, args[0])
		if err != nil {
			utils.Fatal("failed to find teacher", err)
		}
		err = g.Repository.UpdateTeacher(cmd.Context(), old, model.Teacher{ShortName: args[1], LongName: args[2]})
		if err != nil {
			utils.Fatal("failed to update teacher", err)
		}
	},
}

var teacherDeleteCmd = &cobra.Command{
	Use:   "delete <short>",
	Short: "Removes the cached teacher with the given short code.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		teacher, err := cachedTeacher(cmd.Context(), g.Store, args[0])
		if err != nil {
			utils.Fatal("failed to find teacher", err)
		}
		err = g.Repository.DeleteTeacher(cmd.Context(), teacher)
		if err != nil {
			utils.Fatal("failed to delete teacher", err)
		}
	},
}

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "The 'subject' subcommand edits the cached subject dictionary.",
}

var subjectAddCmd = &cobra.Command{
	Use:   "add <short> <name> [--color AARRGGBB]",
	Short: "Adds a subject to the cached dictionary.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		color, err := strconv.ParseUint(strings.TrimPrefix(*subjectColor, "#"), 16, 32)
		if err != nil {
			utils.Fatal("invalid color", err)
		}

		repo := globals.Get(cmd.Context()).Repository
		err = repo.AddSubject(cmd.Context(), model.Subject{
			ShortName: args[0],
			LongName:  args[1],
			Color:     model.Color(color),
		})
		if err != nil {
			utils.Fatal("failed to add subject", err)
		}
	},
}

var subjectDeleteCmd = &cobra.Command{
	Use:   "delete <short>",
	Short: "Removes the cached subject with the given short code.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		subject, err := cachedSubject(cmd.Context(), g.Store, args[0])
		if err != nil {
			utils.Fatal("failed to find subject", err)
		}
		err = g.Repository.DeleteSubject(cmd.Context(), subject)
		if err != nil {
			utils.Fatal("failed to delete subject", err)
		}
	},
}
