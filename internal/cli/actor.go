package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/haggle/internal/config"
)

// resolveActor determines the acting party for a command.
// Resolution order: --actor flag, HAGGLE_ACTOR env, .haggle/config.json.
func resolveActor(cmd *cobra.Command) (string, error) {
	actor, _ := cmd.Flags().GetString("actor")
	if actor != "" {
		return actor, nil
	}
	if env := os.Getenv("HAGGLE_ACTOR"); env != "" {
		return env, nil
	}
	if cfg, err := config.LoadConfig("."); err == nil && cfg.ActorID != "" {
		return cfg.ActorID, nil
	}
	return "", fmt.Errorf("no acting party configured\nHint: use --actor, set HAGGLE_ACTOR, or run 'haggle init --actor <id>'")
}
