package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/mindcare_backend/pkg/chatsync"
)

func NewChatCommand() *cobra.Command {
	var (
		server   string
		token    string
		peer     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a polling chat session with another user",
		Long: `Polls the conversation with --peer and prints it whenever it changes.
Each line typed on stdin is sent as a message. Ctrl-D or Ctrl-C ends the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			feed := chatsync.NewHTTPFeed(strings.TrimRight(server, "/"), token, 10*time.Second)
			session := chatsync.NewSession(feed, peer, chatsync.WithInterval(interval))

			var mu sync.Mutex
			printed := 0
			session.OnChange = func(msgs []chatsync.Message) {
				mu.Lock()
				defer mu.Unlock()
				// a poll can shrink the list when an optimistic send has not landed yet
				if len(msgs) < printed {
					printed = 0
				}
				for _, m := range msgs[printed:] {
					fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), m.SenderName, m.Text)
				}
				printed = len(msgs)
			}

			session.Activate(ctx)
			defer session.Deactivate()
			if err := session.Err(); err != nil {
				return fmt.Errorf("load conversation: %w", err)
			}

			lines := make(chan string)
			go readLines(ctx, cmd.InOrStdin(), lines)

			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if strings.TrimSpace(line) == "" {
						continue
					}
					if _, err := session.Send(ctx, line); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "send failed: %v\n", err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "API base URL, including any base path")
	cmd.Flags().StringVar(&token, "token", "", "Bearer access token")
	cmd.Flags().StringVar(&peer, "peer", "", "User id of the other participant")
	cmd.Flags().DurationVar(&interval, "interval", chatsync.DefaultInterval, "Polling interval")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("peer")

	return cmd
}

// readLines forwards stdin lines until EOF or ctx ends. A Scan already
// blocked on the terminal only returns with the next line or EOF.
func readLines(ctx context.Context, r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case out <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}
