package hashtoken

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoneheat/zoneheat/internal/auth"
)

// Command creates the hash-token command, which prints the bcrypt hash to
// put in admin.token_hash.
func Command() *cobra.Command {
	var (
		cost      int
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Hash a curator token for admin.token_hash",
		Long:  "Print the bcrypt hash of a curator token. Use --stdin to keep the token out of shell history.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			switch {
			case fromStdin:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token from stdin: %w", err)
				}
				token = strings.TrimRight(line, "\r\n")
			case len(args) == 1:
				token = args[0]
			default:
				return fmt.Errorf("token argument or --stdin required")
			}

			hash, err := auth.HashToken(token, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", auth.DefaultCost, "bcrypt cost")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the token from the first line of stdin")
	return cmd
}
