package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/auth"
	"github.com/portalhq/portal-cli/cache"
	"github.com/portalhq/portal-cli/config"
	"github.com/portalhq/portal-cli/content"
	"github.com/portalhq/portal-cli/model"
	"github.com/portalhq/portal-cli/store"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

func main() {
	app := &cli.App{
		Name:    "portal-cli",
		Usage:   "A scriptable client for the news portal API",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Config file path",
				EnvVars: []string{"PORTAL_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "api",
				Usage: "Portal API base URL (overrides config)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Local database file path (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate against the portal and store credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: login,
			},
			{
				Name:   "logout",
				Usage:  "Discard stored credentials",
				Action: logout,
			},
			{
				Name:  "register",
				Usage: "Create a new portal account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: register,
			},
			{
				Name:   "whoami",
				Usage:  "Show the current session",
				Action: whoami,
			},
			{
				Name:  "articles",
				Usage: "Browse and manage articles",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List articles",
						Flags:  articleQueryFlags(),
						Action: listArticles,
					},
					{
						Name:      "show",
						Usage:     "Show article details",
						ArgsUsage: "<article-id>",
						Action:    showArticle,
					},
					{
						Name:   "create",
						Usage:  "Create an article (editor)",
						Flags:  articleDraftFlags(),
						Action: createArticle,
					},
					{
						Name:      "update",
						Usage:     "Update an article (editor)",
						ArgsUsage: "<article-id>",
						Flags:     articleDraftFlags(),
						Action:    updateArticle,
					},
					{
						Name:      "delete",
						Usage:     "Delete an article (editor)",
						ArgsUsage: "<article-id>",
						Action:    deleteArticle,
					},
					{
						Name:  "comments",
						Usage: "Reader comments on an article",
						Subcommands: []*cli.Command{
							{
								Name:      "list",
								Usage:     "List comments on an article",
								ArgsUsage: "<article-id>",
								Action:    listComments,
							},
							{
								Name:      "add",
								Usage:     "Comment on an article (requires login)",
								ArgsUsage: "<article-id>",
								Flags: []cli.Flag{
									&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Comment text", Required: true},
								},
								Action: addComment,
							},
							{
								Name:      "remove",
								Usage:     "Remove a comment (editor)",
								ArgsUsage: "<comment-id>",
								Action:    removeComment,
							},
						},
					},
				},
			},
			{
				Name:  "categories",
				Usage: "Browse and manage categories",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List categories",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "active", Aliases: []string{"a"}, Usage: "Only active categories"},
						},
						Action: listCategories,
					},
					{
						Name:   "create",
						Usage:  "Create a category (admin)",
						Flags:  categoryDraftFlags(),
						Action: createCategory,
					},
					{
						Name:      "update",
						Usage:     "Update a category (admin)",
						ArgsUsage: "<category-id>",
						Flags:     categoryDraftFlags(),
						Action:    updateCategory,
					},
					{
						Name:      "delete",
						Usage:     "Delete a category (admin)",
						ArgsUsage: "<category-id>",
						Action:    deleteCategory,
					},
				},
			},
			{
				Name:  "editors",
				Usage: "Portal staff accounts",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List editors (admin)",
						Action: listEditors,
					},
				},
			},
			{
				Name:  "newsletter",
				Usage: "Newsletter subscriptions",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List subscriptions (admin)",
						Action: listSubscriptions,
					},
					{
						Name:  "subscribe",
						Usage: "Subscribe an email to the newsletter",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Subscriber email", Required: true},
							&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Subscriber name"},
						},
						Action: subscribe,
					},
					{
						Name:      "update",
						Usage:     "Update a subscription (admin)",
						ArgsUsage: "<subscription-id>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Subscriber name"},
							&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Status (active, inactive, unsubscribed)"},
						},
						Action: updateSubscription,
					},
					{
						Name:      "remove",
						Usage:     "Remove a subscription (admin)",
						ArgsUsage: "<subscription-id>",
						Action:    removeSubscription,
					},
				},
			},
			{
				Name:  "sync",
				Usage: "Mirror articles and categories into the local database",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 200, Usage: "Maximum number of articles to mirror"},
				},
				Action: syncMirror,
			},
			{
				Name:  "local",
				Usage: "Query the local article mirror (works offline)",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List mirrored articles",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 50, Usage: "Maximum number of articles to return"},
							&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Offset for pagination"},
							&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
							&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search in title and summary"},
							&cli.StringFlag{Name: "status", Usage: "Filter by status (draft, published)"},
							&cli.StringFlag{Name: "since", Aliases: []string{"s"}, Usage: "Published since duration (e.g., 7d, 2w, 3m, 1y)"},
						},
						Action: listLocal,
					},
					{
						Name:      "show",
						Usage:     "Show a mirrored article",
						ArgsUsage: "<article-id>",
						Action:    showLocal,
					},
				},
			},
			{
				Name:  "sources",
				Usage: "RSS/Atom ingest sources",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add an ingest source",
						ArgsUsage: "<url>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Portal category for ingested drafts"},
						},
						Action: addSource,
					},
					{
						Name:   "list",
						Usage:  "List ingest sources",
						Action: listSources,
					},
					{
						Name:      "remove",
						Usage:     "Remove an ingest source",
						ArgsUsage: "<source-id>",
						Action:    removeSource,
					},
					{
						Name:      "import",
						Usage:     "Import ingest sources from an OPML file",
						ArgsUsage: "<opml-file>",
						Action:    importSources,
					},
					{
						Name:  "export",
						Usage: "Export ingest sources to OPML",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default: stdout)"},
						},
						Action: exportSources,
					},
				},
			},
			{
				Name:  "ingest",
				Usage: "Fetch all sources and submit unseen items as drafts (editor)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "concurrency", Usage: "Parallel source fetches (overrides config)"},
				},
				Action: runIngest,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

// appEnv bundles the services a command needs.
type appEnv struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *api.Client
	auth    *auth.Service
	content *content.Service
}

// getEnv builds the command environment from config, flags and the
// environment. The API client's token source is bound to the auth
// service, so once a session is restored every request carries the
// bearer token.
func getEnv(c *cli.Context) (*appEnv, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if base := c.String("api"); base != "" {
		cfg.API.BaseURL = base
	}
	if db := c.String("db"); db != "" {
		cfg.Store.Path = db
	}

	log, err := buildLogger(cfg.Log.Level, c.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	credPath := cfg.Auth.CredentialsPath
	if credPath == "" {
		credPath = auth.DefaultCredentialsPath()
	}
	tokens := auth.NewTokenStore(credPath)

	var authSvc *auth.Service
	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.RequestTimeout()),
		api.WithLogger(log),
		api.WithTokenSource(func() string {
			if authSvc == nil {
				return ""
			}
			return authSvc.Token()
		}),
	)
	authSvc = auth.NewService(client, tokens, log)

	queries := cache.New(cfg.Cache.CacheTTL(), log)

	return &appEnv{
		cfg:     cfg,
		log:     log,
		client:  client,
		auth:    authSvc,
		content: content.NewService(client, queries, log),
	}, nil
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	// Diagnostics go to stderr; stdout is reserved for JSON output.
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// getStore opens the local database at the configured path.
func getStore(env *appEnv) (*store.Store, error) {
	dbPath := env.cfg.Store.Path

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return s, nil
}

// requireRole restores the session and checks it against the required
// role. A missing session exits with the usage code so scripts can tell
// "log in first" apart from a hard failure.
func requireRole(c *cli.Context, env *appEnv, required model.Role) error {
	sess := env.auth.Restore(c.Context, env.cfg.Auth.StaleTTL())

	switch auth.Check(&sess, required) {
	case auth.Allow:
		return nil
	case auth.RequireLogin:
		return cli.Exit("Not logged in (run: portal-cli login)", ExitUsageError)
	case auth.Deny:
		return cli.Exit(fmt.Sprintf("This command requires the %s role", required), ExitGeneralError)
	}
	return cli.Exit("Session is not ready", ExitGeneralError)
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
