package main

import (
	"context"
	"errors"

	"backend-racehub/internal/auth"

	"github.com/urfave/cli/v3"
)

// Hash prints one bcrypt hash per password argument, in order, for pasting
// into the credentials file.
func (r *Runner) Hash(_ context.Context, cmd *cli.Command) error {
	passwords := cmd.Args().Slice()
	if len(passwords) == 0 {
		return errors.New("at least one password is required")
	}
	hashes, err := auth.HashPasswords(passwords)
	if err != nil {
		return err
	}
	for _, h := range hashes {
		if err := r.writePlain("%s\n", h); err != nil {
			return err
		}
	}
	return nil
}

func hashCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Hash plain text passwords with bcrypt",
		ArgsUsage: "<password>...",
		Action:    r.Hash,
	}
}
