package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"digikul/internal/user"
)

// RegisterCommands adds every subcommand to root.
func RegisterCommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewMigrateCommand(a),
		NewAddUserCommand(a),
		NewStudentsCommand(a),
		NewCurriculumCommand(a),
		NewFeedbackCommand(a),
	)
}

// NewMigrateCommand applies the schema. Opening the database already
// migrates, so this only reports where.
func NewMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.db.Dialect)
			return nil
		},
	}
}

func NewAddUserCommand(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "adduser USERNAME PASSWORD",
		Short: "Add an account; an existing username is left unchanged",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := user.ParseRole(role)
			if err != nil {
				return err
			}
			res, err := a.users.AddUser(cmd.Context(), args[0], args[1], r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(user.RoleStudent), "student or admin")
	return cmd
}

func NewStudentsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "students",
		Short: "List students and their face registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := a.users.ListStudents(cmd.Context())
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), []string{"USERNAME", "FACE"}, func(emit func(...any)) {
				for _, s := range students {
					face := "no"
					if s.FaceRegistered {
						face = "yes"
					}
					emit(s.Username, face)
				}
			})
		},
	}
}

func NewCurriculumCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Read or post notice board entries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show posts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.ledger.ListCurriculum(cmd.Context())
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "POSTED", "TITLE"}, func(emit func(...any)) {
				for _, p := range posts {
					emit(p.ID, p.Timestamp.Local().Format("2006-01-02 15:04"), p.Title)
				}
			})
		},
	}, &cobra.Command{
		Use:   "post TITLE CONTENT",
		Short: "Publish a notice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.ledger.PostCurriculum(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "posted #%d\n", p.ID)
			return nil
		},
	})
	return cmd
}

func NewFeedbackCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback",
		Short: "Show student feedback",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.ledger.ListFeedback(cmd.Context())
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "USERNAME", "FEEDBACK"}, func(emit func(...any)) {
				for _, f := range entries {
					emit(f.ID, f.Username, f.Content)
				}
			})
		},
	}
}

func writeTable(out io.Writer, header []string, rows func(emit func(...any))) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	rows(func(cols ...any) {
		for i, c := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	})
	return tw.Flush()
}
