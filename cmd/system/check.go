package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	redispkg "github.com/Alijeyrad/mindcare_backend/pkg/redis"
)

func NewCheckCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to Redis and NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			failed := false
			report := func(name string, err error) {
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "%-6s FAIL  %v\n", name, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s ok\n", name)
			}

			rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
			if err == nil {
				err = kv.NewRedisStore(rdb, cfg.KV.KeyPrefix).Ping(ctx)
				_ = rdb.Close()
			}
			report("redis", err)

			if cfg.Nats.Enabled {
				nc, err := nats.Connect(cfg.Nats.URL, nats.Timeout(timeout))
				if err == nil {
					err = nc.FlushWithContext(ctx)
					nc.Close()
				}
				report("nats", err)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s disabled\n", "nats")
			}

			if failed {
				return fmt.Errorf("one or more dependencies are unreachable")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-dependency timeout")

	return cmd
}
