package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/dashboard"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/workflow"
)

// board is the part every role's dashboard has in common.
type board interface {
	Load(ctx context.Context) error
	Complaints() []workflow.Complaint
	Counts() map[workflow.Status]int
	SOS() []workflow.Complaint
	Start(ctx context.Context, id int64) (workflow.Complaint, error)
	Resolve(ctx context.Context, id int64) (workflow.Complaint, error)
	Remark(ctx context.Context, id int64, text string) (workflow.Complaint, error)
	Contacts(ctx context.Context) dashboard.Contacts
	Close()
}

type assigner interface {
	Assign(ctx context.Context, id int64, staff, remarks string) (workflow.Complaint, error)
}

type escalator interface {
	Escalate(ctx context.Context, id int64) (workflow.Complaint, error)
}

func openBoard(ctx context.Context) (board, error) {
	sess := current.store.Current()
	if sess == nil {
		return nil, &apperr.Error{Kind: apperr.ErrAuth, Message: "Please sign in to continue."}
	}
	var (
		b   board
		err error
	)
	switch sess.Role {
	case role.User:
		b, err = dashboard.NewPassenger(sess, current.api)
	case role.StationStaff:
		b, err = dashboard.NewStaff(sess, current.api)
	case role.StationMaster:
		b, err = dashboard.NewStationMaster(sess, current.api)
	case role.RPFAdmin:
		b, err = dashboard.NewAdmin(sess, current.api)
	case role.SuperAdmin:
		b, err = dashboard.NewSuperAdmin(sess, current.api)
	default:
		return nil, apperr.Forbidden("unsupported role %s", sess.Role)
	}
	if err != nil {
		return nil, err
	}
	if err := b.Load(ctx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("%q is not a complaint number", s)
	}
	return id, nil
}

// withBoard opens the role's dashboard, runs fn and closes it.
func withBoard(cmd *cobra.Command, fn func(b board) error) error {
	b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

var sosFlag bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the complaints of your dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			list := b.Complaints()
			if sosFlag {
				list = b.SOS()
			}
			counts := b.Counts()
			fmt.Printf("Pending %d  In progress %d  Resolved %d\n\n",
				counts[workflow.Pending], counts[workflow.InProgress], counts[workflow.Resolved])
			printComplaints(list)
			return nil
		})
	},
}

var (
	submitName, submitStation, submitPhone string
	submitTrain, submitFrom, submitTo      string
	submitAt                               string
)

var submitCmd = &cobra.Command{
	Use:   "submit <complaint text>",
	Short: "File a complaint",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(b board) error {
			p, ok := b.(*dashboard.Passenger)
			if !ok {
				return apperr.Forbidden("only passengers file complaints")
			}
			n := gateway.NewComplaint{
				PassengerName:   submitName,
				PassengerPhone:  submitPhone,
				ComplaintText:   strings.Join(args, " "),
				Station:         submitStation,
				TrainNumber:     submitTrain,
				PreviousStation: submitFrom,
				NextStation:     submitTo,
			}
			if submitAt != "" {
				at, err := time.ParseInLocation(timeLayout, submitAt, time.Local)
				if err != nil {
					return apperr.Validation("--at must look like %s", timeLayout)
				}
				n.IncidentAt = &at
			}
			c, err := p.Submit(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Printf("Complaint #%d filed (%s). Track it with: railmadad track %d\n", c.ID, c.Status, c.ID)
			if c.Urgent() {
				fmt.Println("Marked urgent. For immediate help call 139.")
			}
			return nil
		})
	},
}

func transitionCmd(use, short string, run func(b board, ctx context.Context, id int64) (workflow.Complaint, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBoard(cmd, func(b board) error {
				c, err := run(b, cmd.Context(), id)
				if err != nil {
					return err
				}
				printComplaint(c)
				return nil
			})
		},
	}
}

var remarkCmd = &cobra.Command{
	Use:   "remark <id> <text>",
	Short: "Add remarks to a complaint",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withBoard(cmd, func(b board) error {
			c, err := b.Remark(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printComplaint(c)
			return nil
		})
	},
}

var assignRemarks string

var assignCmd = &cobra.Command{
	Use:   "assign <id> <staff username>",
	Short: "Hand a complaint to a staff member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withBoard(cmd, func(b board) error {
			a, ok := b.(assigner)
			if !ok {
				return apperr.Forbidden("your role cannot assign complaints")
			}
			c, err := a.Assign(cmd.Context(), id, args[1], assignRemarks)
			if err != nil {
				return err
			}
			printComplaint(c)
			return nil
		})
	},
}

var escalateCmd = &cobra.Command{
	Use:   "escalate <id>",
	Short: "Flag a complaint for RPF review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withBoard(cmd, func(b board) error {
			e, ok := b.(escalator)
			if !ok {
				return apperr.Forbidden("your role cannot escalate complaints")
			}
			c, err := e.Escalate(cmd.Context(), id)
			if err != nil {
				return err
			}
			printComplaint(c)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the recorded changes of a complaint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		entries, err := current.api.History(cmd.Context(), id)
		if err != nil {
			return err
		}
		printHistory(entries)
		return nil
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Emergency numbers and the helpline",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := dashboard.Contacts{}
		if numbers, err := current.api.EmergencyContacts(cmd.Context()); err != nil {
			log.Debug().Err(err).Msg("emergency contacts unavailable")
		} else {
			c.Numbers = numbers
		}
		if h, err := current.api.Helpline(cmd.Context()); err == nil {
			c.Helpline = &h
		}
		printContacts(c)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&sosFlag, "sos", false, "only urgent or escalated complaints")
	submitCmd.Flags().StringVar(&submitName, "name", "", "passenger name (defaults to your name)")
	submitCmd.Flags().StringVar(&submitStation, "station", "", "station the complaint concerns")
	submitCmd.Flags().StringVar(&submitPhone, "phone", "", "contact number")
	submitCmd.Flags().StringVar(&submitTrain, "train", "", "train number")
	submitCmd.Flags().StringVar(&submitFrom, "from", "", "previous station")
	submitCmd.Flags().StringVar(&submitTo, "to", "", "next station")
	submitCmd.Flags().StringVar(&submitAt, "at", "", "when it happened ("+timeLayout+")")
	assignCmd.Flags().StringVar(&assignRemarks, "remarks", "", "optional note for the assignee")

	startCmd := transitionCmd("start", "Mark a complaint in progress", func(b board, ctx context.Context, id int64) (workflow.Complaint, error) {
		return b.Start(ctx, id)
	})
	resolveCmd := transitionCmd("resolve", "Resolve a complaint", func(b board, ctx context.Context, id int64) (workflow.Complaint, error) {
		return b.Resolve(ctx, id)
	})

	rootCmd.AddCommand(listCmd, submitCmd, startCmd, resolveCmd, remarkCmd, assignCmd, escalateCmd, historyCmd, contactsCmd)
}
