package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/solartrack/internal/store"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long:  "Create, list, select and delete projects",
	}

	var use bool
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a new project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.store.CreateProject(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Project %s created (%s)", p.Name, p.ID)
			if use {
				return a.store.SetSetting(ctx, store.SettingCurrentProject, p.ID)
			}
			return nil
		},
	}
	addCmd.Flags().BoolVar(&use, "use", false, "make it the current project")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projects, err := a.store.ListProjects(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				dimColor.Fprintln(out, "No projects yet. Create one with 'solartrack project add NAME'.")
				return nil
			}
			current, _ := a.store.GetSetting(ctx, store.SettingCurrentProject)
			tw := newTable(out)
			fmt.Fprintln(tw, "\tNAME\tID\tCREATED")
			for _, p := range projects {
				mark := ""
				if p.ID == current {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, p.Name, p.ID, p.Created.Local().Format("02.01.2006"))
			}
			return tw.Flush()
		},
	}

	useCmd := &cobra.Command{
		Use:   "use NAME|ID",
		Short: "Select the current project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.projectRef = strings.Join(args, " ")
			p, err := a.project(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.store.SetSetting(cmd.Context(), store.SettingCurrentProject, p.ID); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Current project: %s", p.Name)
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm NAME|ID",
		Short: "Delete a project; its entries are kept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a.projectRef = strings.Join(args, " ")
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			if err := a.store.SoftDeleteProject(ctx, p.ID); err != nil {
				return err
			}
			if cur, _ := a.store.GetSetting(ctx, store.SettingCurrentProject); cur == p.ID {
				if err := a.store.SetSetting(ctx, store.SettingCurrentProject, ""); err != nil {
					return err
				}
			}
			success(cmd.OutOrStdout(), "Project %s deleted", p.Name)
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, useCmd, rmCmd)
	return cmd
}

func newEmployeeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"emp"},
		Short:   "Manage the crew of the current project",
	}

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an employee to the project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			e, err := a.store.CreateEmployee(ctx, strings.Join(args, " "), p.ID)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s added to %s", e.Name, p.Name)
			return nil
		},
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			var emps []store.Employee
			if all {
				emps, err = a.store.ListAllEmployees(ctx, p.ID)
			} else {
				emps, err = a.store.ListEmployeesByProject(ctx, p.ID)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(emps) == 0 {
				dimColor.Fprintln(out, "No employees in this project.")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "NAME\tID\tSTATUS")
			for _, e := range emps {
				status := "active"
				if !e.Active {
					status = "deleted"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.ID, status)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "include deleted employees")

	rmCmd := &cobra.Command{
		Use:   "rm NAME|ID",
		Short: "Delete an employee; their entries are kept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			e, err := a.employee(ctx, p.ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := a.store.SoftDeleteEmployee(ctx, e.ID); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s deleted", e.Name)
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, rmCmd)
	return cmd
}
