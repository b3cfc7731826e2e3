package app

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openbadges/badgecheck/bakery"
)

func newBakeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bake <image> <assertion-file|url>",
		Short: "Embed an assertion into a PNG or SVG image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			payload := args[1]
			if !isURL(payload) {
				b, err := os.ReadFile(payload)
				if err != nil {
					return err
				}
				payload = string(bytes.TrimSpace(b))
			}

			baked, err := bakery.Bake(image, payload)
			if err != nil {
				return fmt.Errorf("baking %s: %w", args[0], err)
			}

			out := c.v.GetString("out")
			if err := os.WriteFile(out, baked, 0o644); err != nil {
				return err
			}
			c.log.WithField("file", out).WithField("format", bakery.Detect(baked)).Info("baked badge written")
			return nil
		},
	}

	cmd.Flags().String("out", "", "path the baked image is written to")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newUnbakeCmd(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unbake <image|->",
		Short: "Print the assertion embedded in a PNG or SVG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				image []byte
				err   error
			)
			if args[0] == "-" {
				image, err = readStdin(cmd)
			} else {
				image, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			payload, err := bakery.Unbake(image)
			if err != nil {
				return fmt.Errorf("unbaking %s: %w", args[0], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		},
	}
}
