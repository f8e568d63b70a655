package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reliquary/internal/vault"
)

type vaultParts struct {
	vault *vault.Vault
	keys  *vault.KeyStore
}

func (c *commandContext) vaultParts() (vaultParts, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return vaultParts{}, err
	}
	cipher, err := vault.CipherByName(cfg.Vault.Cipher)
	if err != nil {
		return vaultParts{}, err
	}
	logger := c.loggerValue()
	return vaultParts{
		vault: vault.New(cipher, cfg.Vault.VaultPath, cfg.Vault.IndexPath, logger),
		keys:  vault.NewKeyStore(cfg.Vault.KeyPath, cipher, logger),
	}, nil
}

func newVaultCommand(ctx *commandContext) *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Encrypted archive snapshots",
	}
	vaultCmd.AddCommand(newVaultKeygenCommand(ctx))
	vaultCmd.AddCommand(newVaultSealCommand(ctx))
	vaultCmd.AddCommand(newVaultOpenCommand(ctx))
	vaultCmd.AddCommand(newVaultPreviewCommand(ctx))
	vaultCmd.AddCommand(newVaultIndexCommand(ctx))
	return vaultCmd
}

func newVaultKeygenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create the vault key if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := ctx.vaultParts()
			if err != nil {
				return err
			}
			_, generated, err := parts.keys.LoadOrGenerate()
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"key_path": parts.keys.Path(), "generated": generated})
			}
			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "Generated vault key at %s\n", parts.keys.Path())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Vault key already present at %s\n", parts.keys.Path())
			}
			return nil
		},
	}
}

func newVaultSealCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seal",
		Short: "Encrypt the current archive into the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := ctx.vaultParts()
			if err != nil {
				return err
			}
			key, _, err := parts.keys.LoadOrGenerate()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			result, err := parts.vault.SealStore(commandCtx(cmd), store, key)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"vault_path": result.VaultPath,
					"index_path": result.IndexPath,
					"relics":     len(result.Relics),
					"bytes":      result.CiphertextBytes,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sealed %d relic(s) into %s (%d bytes)\n", len(result.Relics), result.VaultPath, result.CiphertextBytes)
			fmt.Fprintf(out, "Plaintext index written to %s\n", result.IndexPath)
			return nil
		},
	}
}

func newVaultOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Decrypt the vault and list its relics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := ctx.vaultParts()
			if err != nil {
				return err
			}
			key, err := parts.keys.Load()
			if err != nil {
				return err
			}
			relics, err := parts.vault.Open(commandCtx(cmd), key)
			if err != nil {
				return err
			}
			return printRelics(cmd, ctx, relics, "Vault is empty.")
		},
	}
}

func newVaultPreviewCommand(ctx *commandContext) *cobra.Command {
	var contributor string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview archive relics that a seal would include for a contributor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			relics, err := store.Load(commandCtx(cmd))
			if err != nil {
				return err
			}
			preview := vault.Preview(vault.Tag(relics), contributor)
			return printRelics(cmd, ctx, preview, "No relics matched.")
		},
	}
	cmd.Flags().StringVarP(&contributor, "contributor", "C", "", "Only list relics from this contributor")
	return cmd
}

func newVaultIndexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Show the plaintext vault index without a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := ctx.vaultParts()
			if err != nil {
				return err
			}
			index, err := parts.vault.Index(commandCtx(cmd))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, index)
			}
			if len(index) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Vault index is empty.")
				return nil
			}
			rows := make([][]string, 0, len(index))
			for _, e := range index {
				rows = append(rows, []string{e.Tag, e.Event, e.Theme, e.Contributor})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(columns("Tag", "Event", "Theme", "Contributor"), rows))
			return nil
		},
	}
}
