package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"inbound/internal/config"
	"inbound/internal/security"

	"github.com/spf13/cobra"
)

type signOptions struct {
	Secret string
}

// NewSignCommand prints the X-Signature value for a request body, read from
// the given file or stdin. The body is signed byte for byte.
func NewSignCommand() *cobra.Command {
	opts := &signOptions{}

	cmd := &cobra.Command{
		Use:   "sign [body-file]",
		Short: "Compute the X-Signature header for a webhook body",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Secret, "secret", "", "HMAC secret (defaults to WEBHOOK_SECRET)")

	return cmd
}

func runSign(cmd *cobra.Command, opts *signOptions, args []string) error {
	secret := opts.Secret
	if secret == "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app, err := config.Load(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		secret = app.WebhookSecret
	}
	if secret == "" {
		return errors.New("no secret: pass --secret or set WEBHOOK_SECRET")
	}

	var body []byte
	var err error
	if len(args) == 1 {
		body, err = os.ReadFile(args[0])
	} else {
		body, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), security.Compute(secret, body))
	return err
}
