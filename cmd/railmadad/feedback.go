package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
)

var trackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Check the status of a complaint by reference number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		t, err := current.api.Track(cmd.Context(), id)
		if err != nil {
			return err
		}
		printTracking(t)
		return nil
	},
}

var feedbackType string

var feedbackCmd = &cobra.Command{
	Use:   "feedback <message>",
	Short: "Tell us how your journey went",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := current.api.SubmitFeedback(cmd.Context(), gateway.NewNote{Type: feedbackType, Message: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		fmt.Printf("Thanks, your %s feedback was recorded.\n", strings.ToLower(n.Category))
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <idea>",
	Short: "Suggest an improvement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := current.api.SubmitSuggestion(cmd.Context(), strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Println("Thanks, your suggestion was recorded.")
		return nil
	},
}

var inboxSuggestions bool

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Read passenger feedback (admins)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			list []repo.Note
			err  error
		)
		if inboxSuggestions {
			list, err = current.api.Suggestions(cmd.Context())
		} else {
			list, err = current.api.Feedback(cmd.Context())
		}
		if err != nil {
			return err
		}
		printNotes(list)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackType, "type", repo.CategoryGeneral, strings.Join(repo.Categories, ", "))
	inboxCmd.Flags().BoolVar(&inboxSuggestions, "suggestions", false, "show suggestions instead of feedback")

	rootCmd.AddCommand(trackCmd, feedbackCmd, suggestCmd, inboxCmd)
}
