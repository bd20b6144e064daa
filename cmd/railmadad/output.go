package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/railmadad/portal/internal/dashboard"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/workflow"
)

const timeLayout = "2006-01-02 15:04"

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func dash(s *string) string {
	if v := workflow.Deref(s); v != "" {
		return v
	}
	return "-"
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func printComplaints(list []workflow.Complaint) {
	if len(list) == 0 {
		fmt.Println("No complaints.")
		return
	}
	w := table()
	fmt.Fprintln(w, "ID\tSTATUS\tURGENCY\tSTATION\tDEPARTMENT\tASSIGNED\tCOMPLAINT")
	for _, c := range list {
		level := string(c.Level())
		if c.Escalated {
			level += " (RPF)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Status, level, dash(c.Station), dash(c.Department), dash(c.AssignedTo), clip(c.ComplaintText, 60))
	}
	w.Flush()
}

func printComplaint(c workflow.Complaint) {
	w := table()
	fmt.Fprintf(w, "Complaint\t#%d\n", c.ID)
	fmt.Fprintf(w, "Passenger\t%s\n", c.PassengerName)
	fmt.Fprintf(w, "Status\t%s\n", c.Status)
	fmt.Fprintf(w, "Urgency\t%s\n", c.Level())
	fmt.Fprintf(w, "Station\t%s\n", dash(c.Station))
	if c.TrainNumber != nil {
		fmt.Fprintf(w, "Train\t%s (%s to %s)\n", *c.TrainNumber, dash(c.PreviousStation), dash(c.NextStation))
	}
	if c.IncidentAt != nil {
		fmt.Fprintf(w, "Happened\t%s\n", c.IncidentAt.Local().Format(timeLayout))
	}
	fmt.Fprintf(w, "Department\t%s\n", dash(c.Department))
	fmt.Fprintf(w, "Assigned to\t%s\n", dash(c.AssignedTo))
	fmt.Fprintf(w, "Remarks\t%s\n", dash(c.Remarks))
	if c.Escalated {
		fmt.Fprintf(w, "Escalated by\t%s\n", dash(c.EscalatedBy))
	}
	fmt.Fprintf(w, "Filed\t%s\n", c.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Text\t%s\n", c.ComplaintText)
	w.Flush()
}

func printHistory(entries []repo.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history.")
		return
	}
	w := table()
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tBY\tNOTE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.UpdatedAt.Local().Format(timeLayout), dash(e.OldStatus), e.NewStatus, e.UpdatedBy, dash(e.Note))
	}
	w.Flush()
}

func printContacts(c dashboard.Contacts) {
	w := table()
	for _, n := range c.Numbers {
		fmt.Fprintf(w, "%s\t%s\n", n.Type, n.Number)
	}
	if c.Helpline != nil {
		fmt.Fprintf(w, "Helpline\t%s (%s)\n", c.Helpline.Number, c.Helpline.Description)
	}
	w.Flush()
}

func printUsers(users []repo.User) {
	if len(users) == 0 {
		fmt.Println("No users.")
		return
	}
	w := table()
	fmt.Fprintln(w, "ID\tCODE\tNAME\tEMAIL\tROLE\tSTATION")
	for _, u := range users {
		label := u.Role
		if r, err := role.Parse(u.Role); err == nil {
			label = r.Label()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.UserCode, u.FullName, u.Email, label, dash(u.Station))
	}
	w.Flush()
}

func printAnnouncements(list []repo.Announcement) {
	if len(list) == 0 {
		fmt.Println("No announcements.")
		return
	}
	w := table()
	for _, a := range list {
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", a.CreatedAt.Local().Format(timeLayout), a.Team, a.CreatedBy, a.Message)
	}
	w.Flush()
}

func printAnalytics(a dashboard.Analytics) {
	w := table()
	fmt.Fprintln(w, "DEPARTMENT\tCOMPLAINTS")
	for _, d := range a.Departments() {
		fmt.Fprintf(w, "%s\t%d\n", d, a.ByDepartment[d])
	}
	w.Flush()
	if len(a.TopIssues) > 0 {
		fmt.Println("\nTop issues:")
		for i, issue := range a.TopIssues {
			fmt.Printf("%2d. %s\n", i+1, clip(issue, 80))
		}
	}
}

func printStats(s repo.Stats) {
	w := table()
	fmt.Fprintf(w, "Users\t%d\n", s.TotalUsers)
	for _, k := range sortedKeys(s.UsersByRole) {
		fmt.Fprintf(w, "  %s\t%d\n", k, s.UsersByRole[k])
	}
	fmt.Fprintf(w, "Complaints\t%d\n", s.TotalComplaints)
	for _, k := range sortedKeys(s.ByStatus) {
		fmt.Fprintf(w, "  %s\t%d\n", k, s.ByStatus[k])
	}
	fmt.Fprintf(w, "Escalated\t%d\n", s.Escalated)
	w.Flush()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printTracking(t workflow.Tracking) {
	w := table()
	fmt.Fprintf(w, "Complaint\t#%d\n", t.ID)
	status := string(t.Status)
	if t.Escalated {
		status += " (with RPF)"
	}
	fmt.Fprintf(w, "Status\t%s\n", status)
	fmt.Fprintf(w, "Station\t%s\n", dash(t.Station))
	fmt.Fprintf(w, "Department\t%s\n", dash(t.Department))
	fmt.Fprintf(w, "Filed\t%s\n", t.CreatedAt.Local().Format(timeLayout))
	if t.UpdatedAt != nil {
		fmt.Fprintf(w, "Updated\t%s\n", t.UpdatedAt.Local().Format(timeLayout))
	}
	w.Flush()
}

func printNotes(list []repo.Note) {
	if len(list) == 0 {
		fmt.Println("Nothing received yet.")
		return
	}
	w := table()
	fmt.Fprintln(w, "WHEN\tTYPE\tFROM\tMESSAGE")
	for _, n := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.CreatedAt.Local().Format(timeLayout), n.Category, n.UserEmail, clip(n.Message, 70))
	}
	w.Flush()
}
