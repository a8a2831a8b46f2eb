package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/chatify/chatify-cli/internal/api"
	"github.com/chatify/chatify-cli/internal/config"
	"github.com/chatify/chatify-cli/internal/database"
	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/jobs"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/service"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/telemetry"
)

// app wires the config, store, API client, and services together for one
// command invocation.
type app struct {
	cfg       *config.Config
	db        *database.DB
	store     store.Store
	telemetry *telemetry.Telemetry
	client    *api.Client
	session   *service.SessionService
	directory *service.DirectoryService
	inbox     *service.InboxService
	timeline  *service.TimelineService
	composer  *service.ComposerService
	auth      *service.AuthService
	profile   *service.ProfileService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)

	tel, err := telemetry.Init(cfg.SentryDSN)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout())

	a := &app{
		cfg:       cfg,
		db:        db,
		store:     st,
		telemetry: tel,
		client:    client,
	}
	a.session = service.NewSessionService(st, tel)
	a.directory = service.NewDirectoryService(st, tel)
	a.inbox = service.NewInboxService(st, a.directory, tel)
	a.timeline = service.NewTimelineService(client, a.session, cfg.FetchDebounce(), config.AuthorLookupTimeout)
	a.composer = service.NewComposerService(client, a.session, a.timeline, a.directory)
	a.auth = service.NewAuthService(client, a.session)
	a.profile = service.NewProfileService(client, a.session, a.directory, st)

	a.directory.SetActivationHook(a.timeline.Trigger)
	return a, nil
}

func (a *app) close() {
	a.timeline.Close()
	a.telemetry.Close()
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("close state database")
	}
}

// requireUser returns the logged-in user or a friendly error.
func (a *app) requireUser() (*model.UserSnapshot, error) {
	if !a.session.Refresh() {
		return nil, apperrors.NoSession()
	}
	user := a.session.CurrentUser()
	if user == nil {
		return nil, apperrors.NoSession()
	}
	return user, nil
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// withApp builds the app for a command and tears it down afterwards.
func withApp(fn func(c *cli.Context, a *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(c, a)
	}
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cliApp := &cli.App{
		Name:  "chatify",
		Usage: "terminal client for the Chatify messaging service",
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			usersCommand(),
			profileCommand(),
			convosCommand(),
			invitesCommand(),
			inviteCommand(),
			chatCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err))
		os.Exit(1)
	}
}

// friendlyError turns the error taxonomy into terminal messages.
func friendlyError(err error) string {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNoSession:
		return "not logged in, run: chatify login"
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden, apperrors.ErrCodeInvalidToken:
		return "session expired, run: chatify login"
	case apperrors.ErrCodeRateLimited:
		return "the server is rate limiting us, try again in a moment"
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			return appErr.Message
		}
		return err.Error()
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "avatar", Usage: "avatar URL, picked for you when omitted"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			avatar := c.String("avatar")
			if avatar == "" {
				candidates := service.AvatarCandidates(a.cfg.AvatarBaseURL, config.AvatarCandidates)
				avatar = candidates[0]
			}

			user, err := a.auth.Register(c.Context, service.RegisterParams{
				Username: c.String("username"),
				Password: c.String("password"),
				Email:    c.String("email"),
				Avatar:   avatar,
			})
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Println("account created, run: chatify login")
				return nil
			}
			fmt.Printf("welcome, %s\n", user.Username)
			return nil
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and persist the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			user, err := a.auth.Login(c.Context, c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", user.Username)
			return nil
		}),
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "clear the local session",
		Action: withApp(func(c *cli.Context, a *app) error {
			a.session.Logout()
			fmt.Println("logged out")
			return nil
		}),
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the logged-in profile",
		Action: withApp(func(c *cli.Context, a *app) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			fmt.Printf("%s (id %s)\n", user.Username, user.ID)
			if user.Email != "" {
				fmt.Printf("email:  %s\n", user.Email)
			}
			if user.Avatar != "" {
				fmt.Printf("avatar: %s\n", user.Avatar)
			}
			for network, handle := range user.SocialHandles() {
				fmt.Printf("%s: %s\n", network, handle)
			}
			return nil
		}),
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "list users, optionally filtered by name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "case-insensitive username substring"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			users, err := a.profile.ListUsers(c.Context, c.String("filter"))
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%s\t%s\n", u.ID, u.Username)
			}
			return nil
		}),
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "manage the logged-in account",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "change username, email, avatar, or password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "avatar"},
					&cli.StringFlag{Name: "password"},
				},
				Action: withApp(func(c *cli.Context, a *app) error {
					if _, err := a.requireUser(); err != nil {
						return err
					}
					updated, err := a.profile.UpdateProfile(c.Context, api.UpdateUserParams{
						Username: c.String("username"),
						Email:    c.String("email"),
						Avatar:   c.String("avatar"),
						Password: c.String("password"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("profile updated: %s\n", updated.Username)
					return nil
				}),
			},
			{
				Name:  "delete",
				Usage: "permanently delete the account and local state",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "skip the confirmation prompt"},
				},
				Action: withApp(func(c *cli.Context, a *app) error {
					if _, err := a.requireUser(); err != nil {
						return err
					}
					if !c.Bool("yes") {
						fmt.Print("this permanently deletes your account, type the word delete to confirm: ")
						reader := bufio.NewReader(os.Stdin)
						line, _ := reader.ReadString('\n')
						if strings.TrimSpace(line) != "delete" {
							fmt.Println("aborted")
							return nil
						}
					}
					if err := a.profile.DeleteAccount(c.Context); err != nil {
						return err
					}
					fmt.Println("account deleted")
					return nil
				}),
			},
		},
	}
}

func convosCommand() *cli.Command {
	return &cli.Command{
		Name:  "convos",
		Usage: "manage conversations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list known conversations",
				Action: withApp(func(c *cli.Context, a *app) error {
					user, err := a.requireUser()
					if err != nil {
						return err
					}
					convs := a.directory.ListConversations(user.ID)
					if len(convs) == 0 {
						fmt.Println("no conversations yet, run: chatify convos new")
						return nil
					}
					for _, conv := range convs {
						line := conv.ID
						if conv.LatestMessage != nil {
							line += "\t" + conv.LatestMessage.Text
						}
						fmt.Println(line)
					}
					return nil
				}),
			},
			{
				Name:  "new",
				Usage: "start a new conversation",
				Action: withApp(func(c *cli.Context, a *app) error {
					user, err := a.requireUser()
					if err != nil {
						return err
					}
					conv, err := a.directory.CreateConversation(user.ID)
					if err != nil {
						return err
					}
					fmt.Printf("conversation %s created\n", conv.ID)
					return nil
				}),
			},
		},
	}
}

func invitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "invites",
		Usage: "manage pending invitations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list pending invitations",
				Action: withApp(func(c *cli.Context, a *app) error {
					if _, err := a.requireUser(); err != nil {
						return err
					}
					pending := a.inbox.Restore()
					if len(pending) == 0 {
						fmt.Println("no pending invitations")
						return nil
					}
					for _, inv := range pending {
						fmt.Printf("%s\tfrom %s\n", inv.ConversationID, inv.FromUsername)
					}
					return nil
				}),
			},
			{
				Name:      "accept",
				Usage:     "accept an invitation by conversation id",
				ArgsUsage: "<conversation-id>",
				Action: withApp(func(c *cli.Context, a *app) error {
					user, err := a.requireUser()
					if err != nil {
						return err
					}
					conversationID := c.Args().First()
					if conversationID == "" {
						return apperrors.MissingRequired("conversation id")
					}
					for _, inv := range a.inbox.Restore() {
						if inv.ConversationID == conversationID {
							conv, err := a.inbox.Accept(inv, user.ID)
							if err != nil {
								return err
							}
							fmt.Printf("joined conversation %s\n", conv.ID)
							return nil
						}
					}
					return apperrors.NotFound("Invitation")
				}),
			},
		},
	}
}

func inviteCommand() *cli.Command {
	return &cli.Command{
		Name:      "invite",
		Usage:     "invite a user into a conversation",
		ArgsUsage: "<user-id> <conversation-id>",
		Action: withApp(func(c *cli.Context, a *app) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			userID := c.Args().Get(0)
			conversationID := c.Args().Get(1)
			if userID == "" || conversationID == "" {
				return apperrors.MissingRequired("user id and conversation id")
			}
			a.directory.SetActive(conversationID)

			err := a.profile.Invite(c.Context, userID)
			if apperrors.GetCode(err) == apperrors.ErrCodeAlreadyInvited {
				fmt.Println("already invited")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("invitation sent")
			return nil
		}),
	}
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "open a conversation and chat interactively",
		ArgsUsage: "<conversation-id>",
		Action: withApp(func(c *cli.Context, a *app) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			conversationID := c.Args().First()
			if conversationID == "" {
				return apperrors.MissingRequired("conversation id")
			}
			if _, err := a.directory.RecordConversation(conversationID, user.ID); err != nil {
				return err
			}

			entries, err := a.timeline.Fetch(c.Context, conversationID, a.session.Token())
			if err != nil {
				return err
			}
			printEntries(entries, user.ID)
			a.directory.SetActive(conversationID)

			poller := jobs.NewPollJob(a.directory, a.timeline, a.cfg.PollInterval())
			poller.Start()
			defer poller.Stop()

			seen := newPrintedSet(entries)
			stopPrinter := startPrinter(a, user.ID, seen)
			defer stopPrinter()

			fmt.Println("type a message and press enter, /quit to leave, /delete <id> to remove a message")
			return chatLoop(c.Context, a, user, conversationID, seen)
		}),
	}
}

func chatLoop(ctx context.Context, a *app, user *model.UserSnapshot, conversationID string, seen *printedSet) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/delete "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/delete "))
			if err := a.composer.Delete(ctx, id); err != nil {
				fmt.Println(friendlyError(err))
				continue
			}
			fmt.Println("message deleted")
		case line == "/refresh":
			entries, err := a.timeline.Fetch(ctx, conversationID, a.session.Token())
			if err != nil {
				fmt.Println(friendlyError(err))
				continue
			}
			for _, entry := range entries {
				if seen.markPrinted(entry.Message.ID) {
					printEntry(entry, user.ID)
				}
			}
		default:
			entry, err := a.composer.Send(ctx, conversationID, user, line)
			if err != nil {
				fmt.Println(friendlyError(err))
				continue
			}
			seen.markPrinted(entry.Message.ID)
			printEntry(*entry, user.ID)
		}
	}
	return scanner.Err()
}

// printedSet tracks which message ids have been shown so the background
// poller and the input loop never print the same message twice.
type printedSet struct {
	mu  sync.Mutex
	ids map[string]bool
}

func newPrintedSet(entries []model.TimelineEntry) *printedSet {
	ids := make(map[string]bool, len(entries))
	for _, entry := range entries {
		ids[entry.Message.ID] = true
	}
	return &printedSet{ids: ids}
}

// markPrinted records the id and reports whether it was new.
func (p *printedSet) markPrinted(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ids[id] {
		return false
	}
	p.ids[id] = true
	return true
}

// startPrinter surfaces messages other participants sent while we are in
// the chat loop. It watches the timeline the poll job keeps refreshed.
func startPrinter(a *app, ownUserID string, seen *printedSet) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(a.cfg.PollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				for _, entry := range a.timeline.Entries() {
					if seen.markPrinted(entry.Message.ID) {
						printEntry(entry, ownUserID)
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

func printEntries(entries []model.TimelineEntry, ownUserID string) {
	for _, entry := range entries {
		printEntry(entry, ownUserID)
	}
}

func printEntry(entry model.TimelineEntry, ownUserID string) {
	if entry.NewBucket {
		fmt.Printf("--- %s ---\n", entry.Message.CreatedAt.Format("Mon, 2 Jan 2006"))
	}
	name := "unknown"
	if entry.Author != nil {
		name = entry.Author.Username
	}
	marker := " "
	if entry.Message.AuthoredBy(ownUserID) {
		marker = "*"
	}
	fmt.Printf("%s [%s] %s: %s\n", marker, entry.Message.CreatedAt.Format("15:04"), name, entry.Message.Text)
}
