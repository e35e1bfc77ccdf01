package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upb/petclinic/password"
)

func hashPasswordCmd() *cobra.Command {
	var (
		plaintext string
		scheme    string
		cost      int
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a password hash for provisioning an account",
		Long:  `Hash a password with the configured scheme. The password is read from --password or, when the flag is absent, from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("password") {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given on stdin")
				}
				plaintext = strings.TrimRight(line, "\r\n")
			}
			if plaintext == "" {
				return errors.New("password must not be empty")
			}

			hasher, err := password.NewHasher(scheme, cost)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(plaintext)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&plaintext, "password", "", "Password to hash (read from stdin when omitted)")
	cmd.Flags().StringVar(&scheme, "scheme", envOr("PASSWORD_HASHER", password.SchemeBcrypt), "Hash scheme: bcrypt or argon2id (env PASSWORD_HASHER)")
	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost")

	return cmd
}
