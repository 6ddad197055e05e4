package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prismhq/prism/internal/config"
	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/history"
	"github.com/prismhq/prism/internal/providers"
	"github.com/prismhq/prism/internal/store"
)

func newConnectCommand(cfg config.Config) *cobra.Command {
	var identityFlag string
	var apiKey string
	var serviceAccountPath string
	var projectID string

	cmd := &cobra.Command{
		Use:   "connect <provider>",
		Short: "Fetch a provider's usage with the given credential and persist it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, ok := core.ParseProviderID(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			identity, err := requireIdentity(cfg, identityFlag)
			if err != nil {
				return err
			}

			cred := core.Credential{APIKey: apiKey, ProjectID: projectID}
			if serviceAccountPath != "" {
				data, err := os.ReadFile(serviceAccountPath)
				if err != nil {
					return fmt.Errorf("reading service account file: %w", err)
				}
				cred.ServiceAccountJSON = string(data)
			}

			adapter, ok := providers.ByID()[provider]
			if !ok {
				return fmt.Errorf("provider %q not registered", provider.Slug())
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()

			record, fetchErr := adapter.Fetch(cmd.Context(), cred)
			logFetch(cfg, identity, provider, fetchErr)
			if fetchErr != nil {
				return fmt.Errorf("connect %s: %s", provider.Slug(), core.AsFetchError(fetchErr).Message)
			}

			if err := st.Write(identity, record); err != nil {
				return err
			}
			if err := st.WriteCredential(identity, provider, cred); err != nil {
				return err
			}

			fmt.Printf("Connected %s for %s\n", provider.Slug(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&identityFlag, "identity", "", "identity email (overrides config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (Claude Admin key, Gemini key, or OpenAI key)")
	cmd.Flags().StringVar(&serviceAccountPath, "service-account", "", "path to a Google service account JSON file")
	cmd.Flags().StringVar(&projectID, "project-id", "", "Google Cloud project id")
	return cmd
}

func newDisconnectCommand(cfg config.Config) *cobra.Command {
	var identityFlag string

	cmd := &cobra.Command{
		Use:   "disconnect <provider>",
		Short: "Remove a provider's persisted record and credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			provider, ok := core.ParseProviderID(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			identity, err := requireIdentity(cfg, identityFlag)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Remove(identity, provider); err != nil {
				return err
			}
			fmt.Printf("Disconnected %s for %s\n", provider.Slug(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&identityFlag, "identity", "", "identity email (overrides config)")
	return cmd
}

// logFetch records the attempt in the fetch log; failures to log are not
// fatal to the connect itself.
func logFetch(cfg config.Config, identity string, p core.ProviderID, fetchErr error) {
	hist, err := history.OpenStore(cfg.DBPath)
	if err != nil {
		return
	}
	defer hist.Close()
	_ = hist.Record(context.Background(), identity, p, fetchErr)
}
