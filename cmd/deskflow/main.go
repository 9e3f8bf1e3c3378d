// Command deskflow is a terminal client for the helpdesk backend: it keeps
// a persistent login session and drives the ticket, chat, and dashboard
// endpoints.
package main

import (
	"fmt"
	"os"

	"github.com/Rrens/deskflow/internal/api"
	"github.com/Rrens/deskflow/internal/config"
	"github.com/Rrens/deskflow/internal/gate"
	"github.com/Rrens/deskflow/internal/session"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `deskflow - helpdesk terminal client

Usage:
  deskflow login <email> <password>
  deskflow register <name> <email> <password> [phone]
  deskflow logout
  deskflow whoami
  deskflow profile <name> [phone]
  deskflow tickets [list|show|create|update] ...
  deskflow chat <ticket-id>
  deskflow users
  deskflow companies
  deskflow stats
  deskflow analytics
`

// app bundles the wired client core for command handlers
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
	gate   *gate.Gate
}

// loginReminder satisfies gate.Navigator; the terminal analog of a
// redirect to the login view.
type loginReminder struct{}

func (loginReminder) NavigateToLogin() {
	fmt.Fprintln(os.Stderr, "Session expired or not logged in. Run: deskflow login <email> <password>")
}

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if os.Getenv("DESKFLOW_DEBUG") == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	if err := a.dispatch(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", api.Message(err))
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) (*app, error) {
	creds := session.NewFileStore(cfg.Client.StateDir)
	client := api.NewClient(cfg.Client.BaseURL, api.WithTimeout(cfg.Client.RequestTimeout))
	store := session.NewStore(client, creds)

	// The store and the client reference each other; close the loop here.
	client.SetTokenSource(store.Token)
	client.SetUnauthorizedHook(store.Invalidate)

	g := gate.New(store, loginReminder{})

	if err := store.Restore(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return &app{cfg: cfg, client: client, store: store, gate: g}, nil
}

func (a *app) dispatch(command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(args)
	case "register":
		return a.cmdRegister(args)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami()
	case "profile":
		return a.cmdProfile(args)
	case "tickets":
		return a.cmdTickets(args)
	case "chat":
		return a.cmdChat(args)
	case "users":
		return a.cmdUsers()
	case "companies":
		return a.cmdCompanies()
	case "stats":
		return a.cmdStats()
	case "analytics":
		return a.cmdAnalytics()
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireAuth gates protected commands the way protected views are gated
func (a *app) requireAuth() error {
	if !a.gate.Allow() {
		return fmt.Errorf("not logged in")
	}
	return nil
}
