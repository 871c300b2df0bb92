package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/charlesng35/sftpctl/internal/session"
	"github.com/charlesng35/sftpctl/pkg/result"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

type listing struct {
	Path    string   `yaml:"path"`
	Entries []string `yaml:"entries"`
}

func newListCommand(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ls <remote-dir>",
		Short: "List a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputText && output != outputYAML {
				return fmt.Errorf("unsupported output %q (want %s or %s)", output, outputText, outputYAML)
			}

			client, err := c.newClient()
			if err != nil {
				return err
			}

			dir := args[0]
			entries, err := session.WithSession(cmd.Context(), client, func(s *session.Client) result.Result[[]string] {
				return s.ListDir(dir)
			}).Get()
			if err != nil {
				return err
			}
			return writeListing(cmd.OutOrStdout(), output, listing{Path: dir, Entries: entries})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text or yaml)")
	return cmd
}

func writeListing(w io.Writer, format string, l listing) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("encode listing: %w", err)
		}
		return enc.Close()
	}

	for _, name := range l.Entries {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func newPutCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local> <remote>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}

			local, remote := args[0], args[1]
			if _, err := session.WithSession(cmd.Context(), client, func(s *session.Client) result.Result[result.Unit] {
				return s.Upload(local, remote)
			}).Get(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s -> %s\n", local, remote)
			return err
		},
	}
}

func newGetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote> <local>",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}

			remote, local := args[0], args[1]
			if _, err := session.WithSession(cmd.Context(), client, func(s *session.Client) result.Result[result.Unit] {
				return s.Download(remote, local)
			}).Get(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s -> %s\n", remote, local)
			return err
		},
	}
}
