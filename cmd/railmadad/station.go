package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/dashboard"
	"github.com/railmadad/portal/internal/repo"
)

var rosterStation string

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "List station staff available for assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			var (
				users []repo.User
				err   error
			)
			switch d := b.(type) {
			case *dashboard.StationMaster:
				users, err = d.Staff(cmd.Context())
			case *dashboard.Admin:
				users, err = d.Staff(cmd.Context(), rosterStation)
			case *dashboard.SuperAdmin:
				users, err = d.Staff(cmd.Context(), rosterStation)
			default:
				return apperr.Forbidden("your role cannot view the staff roster")
			}
			if err != nil {
				return err
			}
			printUsers(users)
			return nil
		})
	},
}

var announceTeam string

var announceCmd = &cobra.Command{
	Use:   "announce <message>",
	Short: "Post a notice to a team of your station",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			m, ok := b.(*dashboard.StationMaster)
			if !ok {
				return apperr.Forbidden("only station masters post announcements")
			}
			team, ok := repo.ParseTeam(announceTeam)
			if !ok {
				return apperr.Validation("unknown team %q", announceTeam)
			}
			a, err := m.Announce(cmd.Context(), team, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Posted to %s at %s\n", a.Team, a.Station)
			return nil
		})
	},
}

var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Read your station's notices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			var list []repo.Announcement
			switch d := b.(type) {
			case *dashboard.StationMaster:
				list = d.Announcements(cmd.Context())
			case *dashboard.Staff:
				list = d.Announcements(cmd.Context())
			default:
				return apperr.Forbidden("announcements are for station accounts")
			}
			printAnnouncements(list)
			return nil
		})
	},
}

func init() {
	staffCmd.Flags().StringVar(&rosterStation, "station", "", "station to list (admins only)")
	announceCmd.Flags().StringVar(&announceTeam, "team", string(repo.TeamAllStaff), "Cleaning, Maintenance, Security, Medical or AllStaff")

	rootCmd.AddCommand(staffCmd, announceCmd, announcementsCmd)
}
