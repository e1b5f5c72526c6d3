package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oriys/polaris/internal/config"
	"github.com/oriys/polaris/internal/domain"
	"github.com/oriys/polaris/internal/engine"
	"github.com/oriys/polaris/internal/logging"
	"github.com/oriys/polaris/internal/observability"
)

var (
	configPath  string
	fixturePath string
	auditOut    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "polaris",
		Short: "Polaris - Workspace Authorization Engine",
		Long:  "Evaluates role- and override-based permission checks against a workspace fixture",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "Path to YAML workspace fixture")
	rootCmd.PersistentFlags().BoolVar(&auditOut, "audit", false, "Print a decision audit line per check")

	rootCmd.AddCommand(
		rolesCmd(),
		checkCmd(),
		batchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	return cfg, nil
}

// buildEngine composes the engine from config and the workspace fixture.
func buildEngine(ctx context.Context) (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logging.InitStructured(cfg.LogFormat, cfg.LogLevel)

	if err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: "polaris",
		SampleRate:  cfg.Telemetry.SampleRate,
	}); err != nil {
		return nil, nil, fmt.Errorf("init telemetry: %w", err)
	}

	if fixturePath == "" {
		return nil, nil, fmt.Errorf("--fixture is required")
	}
	registry, overrides, err := loadFixture(ctx, fixturePath)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(registry, overrides, cfg.NewDecisionCache())

	if auditOut || cfg.Audit.Console || cfg.Audit.File != "" {
		audit := logging.Audit()
		audit.SetConsole(auditOut || cfg.Audit.Console)
		if cfg.Audit.File != "" {
			if err := audit.SetOutput(cfg.Audit.File); err != nil {
				return nil, nil, fmt.Errorf("open audit log: %w", err)
			}
		}
		eng.SetAuditLogger(audit)
	}

	return eng, cfg, nil
}

func rolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "Print the role hierarchy and default permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tROLE\tDEFAULT PERMISSIONS")
			for i, role := range engine.RoleHierarchy() {
				perms := domain.RolePermissions(role)
				parts := make([]string, len(perms))
				for j, p := range perms {
					parts[j] = string(p)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", i, role, strings.Join(parts, ", "))
			}
			return w.Flush()
		},
	}
}

func checkCmd() *cobra.Command {
	var (
		userID       string
		workspaceID  string
		resourceID   string
		resourceType string
		action       string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a single permission check",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer observability.Shutdown(ctx)

			res := domain.Resource{ID: resourceID, Type: resourceType, WorkspaceID: workspaceID}
			d := eng.Check(ctx, userID, res, domain.Action(action))

			if d.Allowed {
				fmt.Printf("allow: %s may %s %s/%s\n", userID, action, resourceType, resourceID)
				return nil
			}
			fmt.Printf("deny: %s\n", d.Reason)
			os.Exit(1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Principal user id")
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace id")
	cmd.Flags().StringVarP(&resourceID, "resource", "r", "", "Resource id")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "resource", "Resource type")
	cmd.Flags().StringVarP(&action, "action", "a", "", "Action to authorize")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("resource")
	cmd.MarkFlagRequired("action")

	return cmd
}

func batchCmd() *cobra.Command {
	var (
		userID       string
		workspaceID  string
		resourceID   string
		resourceType string
		actions      string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate several actions against one resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer observability.Shutdown(ctx)

			res := domain.Resource{ID: resourceID, Type: resourceType, WorkspaceID: workspaceID}
			var checks []engine.CheckRequest
			for _, a := range strings.Split(actions, ",") {
				a = strings.TrimSpace(a)
				if a == "" {
					continue
				}
				checks = append(checks, engine.CheckRequest{Resource: res, Action: domain.Action(a)})
			}
			if len(checks) == 0 {
				return fmt.Errorf("no actions given")
			}

			results := eng.CheckBatch(ctx, userID, checks)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tRESULT\tREASON")
			denied := false
			for key, d := range results {
				verdict := "allow"
				if !d.Allowed {
					verdict = "deny"
					denied = true
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", key, verdict, d.Reason)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if denied {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Principal user id")
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace id")
	cmd.Flags().StringVarP(&resourceID, "resource", "r", "", "Resource id")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "resource", "Resource type")
	cmd.Flags().StringVarP(&actions, "actions", "a", "", "Comma-separated actions to authorize")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("resource")
	cmd.MarkFlagRequired("actions")

	return cmd
}
