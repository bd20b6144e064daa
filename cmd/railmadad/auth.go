package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/gateway"
)

var (
	emailFlag    string
	passwordFlag string
	nameFlag     string
	roleFlag     string
	stationFlag  string
	officerFlag  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current.api.Login(cmd.Context(), gateway.LoginRequest{Email: emailFlag, Password: passwordFlag})
		if err != nil {
			return err
		}
		sess, err := current.store.Login(res.Credentials())
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", sess.DisplayName, sess.Role.Label())
		fmt.Printf("Home: %s\n", access.PathOf(access.Landing(sess)))
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account; officials need the officer key",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := current.api.Signup(cmd.Context(), gateway.SignupRequest{
			FullName:    nameFlag,
			Email:       emailFlag,
			Password:    passwordFlag,
			Role:        roleFlag,
			StationName: stationFlag,
			OfficerKey:  officerFlag,
		})
		if err != nil {
			return err
		}
		fmt.Println("Account created. Run `railmadad login` to sign in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the token and forget the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.api.Logout(cmd.Context()); err != nil {
			fmt.Println("server logout failed, clearing the local session anyway")
		}
		return current.store.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Run: func(cmd *cobra.Command, args []string) {
		sess := current.store.Current()
		if sess == nil {
			fmt.Println("Not signed in")
			return
		}
		fmt.Printf("%s <%s>\n", sess.DisplayName, sess.Username)
		fmt.Printf("Role:    %s\n", sess.Role.Label())
		if sess.HasStation() {
			fmt.Printf("Station: %s\n", sess.Station)
		}
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Show where a portal path leads for the current session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		nav := access.NewNavigator(current.store, args[0], nil)
		defer nav.Close()
		d := nav.Location()
		fmt.Printf("%s -> %s (%s)\n", args[0], d.Path, d.Outcome)
		fmt.Printf("View: %s\n", d.View)
	},
}

func init() {
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "login email")
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVar(&nameFlag, "name", "", "full name")
	signupCmd.Flags().StringVar(&emailFlag, "email", "", "email")
	signupCmd.Flags().StringVar(&passwordFlag, "password", "", "password (at least 6 characters)")
	signupCmd.Flags().StringVar(&roleFlag, "role", "USER", "USER, STATION_STAFF, STATION_MASTER or RPF_ADMIN")
	signupCmd.Flags().StringVar(&stationFlag, "station", "", "station, required for station roles")
	signupCmd.Flags().StringVar(&officerFlag, "officer-key", "", "officer signup key, required for officials")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd, openCmd)
}
