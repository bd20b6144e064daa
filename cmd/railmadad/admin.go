package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/dashboard"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
)

func adminBoard(b board) (*dashboard.Admin, bool) {
	switch d := b.(type) {
	case *dashboard.Admin:
		return d, true
	case *dashboard.SuperAdmin:
		return &d.Admin, true
	}
	return nil, false
}

var departmentFlag string

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Complaints per department and the most repeated issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			a, ok := adminBoard(b)
			if !ok {
				return apperr.Forbidden("analytics are for RPF admins")
			}
			if departmentFlag != "" {
				printComplaints(a.Department(departmentFlag))
				return nil
			}
			printAnalytics(a.Analytics(cmd.Context()))
			return nil
		})
	},
}

func superAdmin(b board) (*dashboard.SuperAdmin, error) {
	s, ok := b.(*dashboard.SuperAdmin)
	if !ok {
		return nil, apperr.Forbidden("user management is for super admins")
	}
	return s, nil
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			s, err := superAdmin(b)
			if err != nil {
				return err
			}
			users, err := s.Users(cmd.Context())
			if err != nil {
				return err
			}
			printUsers(users)
			return nil
		})
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account of any role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			s, err := superAdmin(b)
			if err != nil {
				return err
			}
			u, err := s.CreateUser(cmd.Context(), gateway.NewUser{
				FullName: nameFlag, Email: emailFlag, Password: passwordFlag, Role: roleFlag, StationName: stationFlag,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (%s)\n", u.UserCode, u.Email)
			return nil
		})
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an account's role or station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return apperr.Validation("%q is not a user id", args[0])
		}
		upd := gateway.UserUpdate{}
		if cmd.Flags().Changed("role") {
			upd.Role = &roleFlag
		}
		if cmd.Flags().Changed("station") {
			upd.StationName = &stationFlag
		}
		return withBoard(cmd, func(b board) error {
			s, err := superAdmin(b)
			if err != nil {
				return err
			}
			u, err := s.UpdateUser(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			printUsers([]repo.User{u})
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return apperr.Validation("%q is not a user id", args[0])
		}
		return withBoard(cmd, func(b board) error {
			s, err := superAdmin(b)
			if err != nil {
				return err
			}
			if err := s.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted user %d\n", id)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Account and complaint totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			s, err := superAdmin(b)
			if err != nil {
				return err
			}
			st, err := s.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(st)
			return nil
		})
	},
}

func init() {
	analyticsCmd.Flags().StringVar(&departmentFlag, "department", "", "list one department's complaints instead")

	for _, c := range []*cobra.Command{userCreateCmd, userUpdateCmd} {
		c.Flags().StringVar(&roleFlag, "role", "USER", "account role")
		c.Flags().StringVar(&stationFlag, "station", "", "station for station roles")
	}
	userCreateCmd.Flags().StringVar(&nameFlag, "name", "", "full name")
	userCreateCmd.Flags().StringVar(&emailFlag, "email", "", "email")
	userCreateCmd.Flags().StringVar(&passwordFlag, "password", "", "initial password")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(userCreateCmd, userUpdateCmd, userDeleteCmd)
	rootCmd.AddCommand(analyticsCmd, usersCmd, statsCmd)
}
