package main

// @title           Sercha Directory API
// @version         1.0
// @description     Cached, filterable A-Z directory listings with version-based invalidation.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-directory/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/custodia-labs/sercha-directory/docs"
	"github.com/custodia-labs/sercha-directory/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-directory/internal/config"
	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/services"
)

var version = "dev"

// Global flags
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "sercha-directory",
		Short: "Cached A-Z directory listings",
		Long: `sercha-directory serves filtered, paginated directory listings of
content items and keeps them cached until the content changes.

Cache entries are keyed by a per content type version. Content events bump
the version, which makes every cached listing of that type unreachable.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./sercha-directory.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionsCmd())
	rootCmd.AddCommand(bumpCmd())
	rootCmd.AddCommand(flushCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the directory HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.UsesDevSecret() {
				a.logger.Warn("auth.jwt_secret is the development default; set SERCHA_DIR_AUTH_JWT_SECRET")
			}

			server := http.NewServer(http.Config{
				Host:           a.cfg.Server.Host,
				Port:           a.cfg.Server.Port,
				Version:        version,
				RateLimit:      a.cfg.HTTP.RateLimit,
				RateBurst:      a.cfg.HTTP.RateBurst,
				AllowedOrigins: a.cfg.HTTP.AllowedOrigins,
				Logger:         a.logger,
			}, http.Services{
				Auth:       a.auth,
				Directory:  a.directory,
				Events:     a.events,
				CacheAdmin: a.cacheAdmin,
			}, a.dependencies())

			if a.cfg.Cache.Backend != config.BackendRedis && a.cfg.Cache.SweepInterval > 0 {
				sweeper := services.NewSweeper(services.SweeperConfig{
					Admin:    a.cacheAdmin,
					Lock:     a.lock,
					Logger:   a.logger,
					Interval: a.cfg.Cache.SweepInterval,
				})
				sweeper.Start(ctx)
				defer sweeper.Stop()
			}

			a.logger.Info("sercha-directory starting",
				"version", version,
				"cache_backend", a.cfg.Cache.Backend,
				"directories", len(a.profiles))
			return server.Start(ctx)
		},
	}
}

func versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Print the cache version of every directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.cacheAdmin.Versions(cmd.Context())
			if err != nil {
				return err
			}
			types := make([]string, 0, len(versions))
			for ct := range versions {
				types = append(types, string(ct))
			}
			sort.Strings(types)
			for _, ct := range types {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s v%d\n", ct, versions[domain.ContentType(ct)])
			}
			return nil
		},
	}
}

func bumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bump <type>",
		Short: "Invalidate every cached listing of a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.cacheAdmin.Bump(cmd.Context(), domain.ContentType(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now at v%d\n", args[0], v)
			return nil
		},
	}
}

func flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush [type]",
		Short: "Delete stored listings and bump their versions",
		Long: `Delete stored listings of one content type, or of every directory when no
type is given. Versions are bumped afterwards, never reset.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var ct domain.ContentType
			if len(args) == 1 {
				ct = domain.ContentType(args[0])
			}
			result, err := a.cacheAdmin.Flush(cmd.Context(), ct)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired entries from the postgres or bolt cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.cacheAdmin.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var subject string
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the events or admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			token, err := newAuthService(cfg).IssueToken(context.Background(), subject, domain.Role(role), ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, e.g. the publishing system name")
	cmd.Flags().StringVar(&role, "role", string(domain.RolePublisher), "Role: publisher or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
