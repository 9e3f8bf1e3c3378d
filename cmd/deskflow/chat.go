package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/Rrens/deskflow/internal/api"
	"github.com/Rrens/deskflow/internal/chat"
	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/session"
)

// cmdChat opens the interactive conversation view for one ticket: it polls
// for new messages on the configured interval and sends every stdin line.
func (a *app) cmdChat(args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: deskflow chat <ticket-id>")
	}
	ticketID := args[0]

	me := a.store.User()
	if me == nil {
		return fmt.Errorf("not logged in")
	}

	var printed sync.Map
	printNew := func(_ string, messages []domain.Message) {
		for _, m := range messages {
			if _, seen := printed.LoadOrStore(m.ID, true); seen {
				continue
			}
			who := m.SenderName
			if m.SenderID == me.ID {
				who = "you"
			}
			fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, m.Body)
		}
	}

	fetchErrs := make(chan error, 1)
	syncer := chat.New(a.client,
		chat.WithInterval(a.cfg.Client.PollInterval),
		chat.WithUpdateHandler(printNew),
		chat.WithErrorHandler(func(_ string, err error) {
			select {
			case fetchErrs <- err:
			default:
			}
		}),
	)

	// A logout or 401 teardown while the view is open must stop the poll
	// timer, not just print a reminder.
	sessionDown := make(chan session.Event, 1)
	a.store.Subscribe(func(e session.Event) {
		if e == session.EventLoggedOut || e == session.EventInvalidated {
			select {
			case sessionDown <- e:
			default:
			}
		}
	})

	syncer.Activate(ticketID)
	defer syncer.Deactivate()

	fmt.Printf("Chatting on ticket %s. Type a message and press enter; Ctrl-C to leave.\n", ticketID)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			fmt.Println("\nLeaving chat")
			return nil
		case <-sessionDown:
			syncer.Deactivate()
			return fmt.Errorf("session ended")
		case err := <-fetchErrs:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			body := strings.TrimSpace(line)
			if body == "" {
				continue
			}
			if _, err := syncer.Send(context.Background(), body); err != nil {
				// Keep the session alive on send failures; just tell the user.
				fmt.Fprintln(os.Stderr, "send failed:", api.Message(err))
			}
		}
	}
}
