package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Rrens/deskflow/internal/domain"
)

func (a *app) cmdLogin(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: deskflow login <email> <password>")
	}

	user, err := a.store.Login(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) cmdRegister(args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("usage: deskflow register <name> <email> <password> [phone]")
	}

	input := domain.RegisterInput{Name: args[0], Email: args[1], Password: args[2]}
	if len(args) == 4 {
		input.Phone = args[3]
	}

	user, err := a.store.Register(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Printf("Account created for %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *app) cmdLogout() error {
	a.store.Logout()
	fmt.Println("Logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	user := a.store.User()
	fmt.Printf("%s <%s>\nrole: %s\n", user.Name, user.Email, user.Role)
	if user.Phone != "" {
		fmt.Printf("phone: %s\n", user.Phone)
	}
	return nil
}

func (a *app) cmdProfile(args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: deskflow profile <name> [phone]")
	}

	input := domain.ProfileUpdate{Name: args[0]}
	if len(args) == 2 {
		input.Phone = args[1]
	}

	user, err := a.store.UpdateUser(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Printf("Profile updated: %s", user.Name)
	if user.Phone != "" {
		fmt.Printf(" (%s)", user.Phone)
	}
	fmt.Println()
	return nil
}

func (a *app) cmdTickets(args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		return a.ticketsList(args)
	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: deskflow tickets show <id>")
		}
		return a.ticketsShow(args[0])
	case "create":
		return a.ticketsCreate(args)
	case "update":
		return a.ticketsUpdate(args)
	default:
		return fmt.Errorf("unknown tickets subcommand %q", sub)
	}
}

func (a *app) ticketsList(args []string) error {
	fs := flag.NewFlagSet("tickets list", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	priority := fs.String("priority", "", "filter by priority")
	search := fs.String("search", "", "search title and description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tickets, err := a.client.ListTickets(context.Background(), domain.TicketFilter{
		Status:   domain.TicketStatus(*status),
		Priority: domain.TicketPriority(*priority),
		Search:   *search,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tCREATED BY")
	for _, t := range tickets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, t.CreatedByName)
	}
	return w.Flush()
}

func (a *app) ticketsShow(id string) error {
	ticket, err := a.client.GetTicket(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n%s\n\n", ticket.Title, ticket.Description)
	fmt.Printf("status: %s  priority: %s\n", ticket.Status, ticket.Priority)
	if ticket.Category != "" {
		fmt.Printf("category: %s\n", ticket.Category)
	}
	fmt.Printf("created by %s at %s\n", ticket.CreatedByName, ticket.CreatedAt.Format("2006-01-02 15:04"))
	if ticket.AssigneeName != "" {
		fmt.Printf("assigned to %s\n", ticket.AssigneeName)
	}
	return nil
}

func (a *app) ticketsCreate(args []string) error {
	fs := flag.NewFlagSet("tickets create", flag.ContinueOnError)
	priority := fs.String("priority", string(domain.PriorityMedium), "low|medium|high|urgent")
	category := fs.String("category", "", "ticket category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: deskflow tickets create [-priority p] [-category c] <title> <description>")
	}

	ticket, err := a.client.CreateTicket(context.Background(), domain.TicketCreate{
		Title:       rest[0],
		Description: rest[1],
		Category:    *category,
		Priority:    domain.TicketPriority(*priority),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created ticket %s\n", ticket.ID)
	return nil
}

func (a *app) ticketsUpdate(args []string) error {
	fs := flag.NewFlagSet("tickets update", flag.ContinueOnError)
	status := fs.String("status", "", "new status")
	priority := fs.String("priority", "", "new priority")
	assignee := fs.String("assignee", "", "assignee user ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: deskflow tickets update [-status s] [-priority p] [-assignee id] <id>")
	}

	var input domain.TicketUpdate
	if *status != "" {
		s := domain.TicketStatus(*status)
		input.Status = &s
	}
	if *priority != "" {
		p := domain.TicketPriority(*priority)
		input.Priority = &p
	}
	if *assignee != "" {
		input.AssigneeID = assignee
	}

	ticket, err := a.client.UpdateTicket(context.Background(), rest[0], input)
	if err != nil {
		return err
	}

	fmt.Printf("Updated ticket %s (status %s)\n", ticket.ID, ticket.Status)
	return nil
}

func (a *app) cmdUsers() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	users, err := a.client.ListUsers(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return w.Flush()
}

func (a *app) cmdCompanies() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	companies, err := a.client.ListCompanies(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUSERS")
	for _, c := range companies {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, c.Name, c.UserCount)
	}
	return w.Flush()
}

func (a *app) cmdStats() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	stats, err := a.client.DashboardStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("total: %d  open: %d  in progress: %d  resolved: %d\n",
		stats.TotalTickets, stats.OpenTickets, stats.InProgress, stats.Resolved)
	if len(stats.RecentTickets) > 0 {
		fmt.Println("\nRecent tickets:")
		for _, t := range stats.RecentTickets {
			fmt.Printf("  %s  %-12s  %s\n", t.ID, t.Status, t.Title)
		}
	}
	return nil
}

func (a *app) cmdAnalytics() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	report, err := a.client.Analytics(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("By status:")
	for status, count := range report.TicketsByStatus {
		fmt.Printf("  %-12s %d\n", status, count)
	}
	fmt.Println("By priority:")
	for priority, count := range report.TicketsByPriority {
		fmt.Printf("  %-12s %d\n", priority, count)
	}
	if len(report.TicketsPerDay) > 0 {
		fmt.Println("Per day:")
		for _, point := range report.TicketsPerDay {
			fmt.Printf("  %s  %d\n", point.Date, point.Count)
		}
	}
	return nil
}
