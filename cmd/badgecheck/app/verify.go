package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbadges/badgecheck"
	"github.com/openbadges/badgecheck/loader"
)

const defaultUserAgent = "badgecheck"

// errNotVerified is returned after the failure report has been printed.
var errNotVerified = errors.New("badge could not be verified")

func newVerifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file|url|->",
		Short: "Verify a badge",
		Long: `Verify a badge assertion read from a file, a hosted assertion URL or stdin ("-").
Files may hold assertion JSON, a hosted URL or a baked PNG or SVG image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.newVerifier()
			if err != nil {
				return err
			}

			artifact, instanceURL, err := c.readArtifact(cmd, args[0])
			if err != nil {
				return err
			}
			if u := c.v.GetString("instance-url"); u != "" {
				instanceURL = u
			}

			opts := []badgecheck.VerifyOption{badgecheck.WithRecipients(c.v.GetStringSlice("recipient")...)}
			if instanceURL != "" {
				opts = append(opts, badgecheck.WithInstanceURL(instanceURL))
			}

			result, err := v.Verify(cmd.Context(), artifact, opts...)
			if err != nil {
				_, resp := badgecheck.NewErrorResponse(err)
				if perr := c.printer(cmd).print(resp); perr != nil {
					return perr
				}
				c.log.WithError(err).Debug("verification failed")
				return errNotVerified
			}
			return c.printer(cmd).print(result)
		},
	}

	addVerifierFlags(cmd)
	cmd.Flags().StringSlice("recipient", nil, "identifier the badge must be issued to, may be repeated")
	cmd.Flags().String("instance-url", "", "hosted URL the assertion was obtained from")
	return cmd
}

// addVerifierFlags adds the flags read by newVerifier.
func addVerifierFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("reject-legacy", false, "reject 0.5 badges instead of verifying them")
	cmd.Flags().Duration("timeout", loader.DefaultTimeout, "timeout for each document fetch")
	cmd.Flags().Duration("cache-ttl", loader.DefaultCacheTTL, "how long fetched documents are cached")
	cmd.Flags().String("user-agent", defaultUserAgent, "User-Agent header sent when fetching documents")
}

func (c *cli) httpClient() *http.Client {
	return &http.Client{Timeout: c.v.GetDuration("timeout")}
}

func (c *cli) newVerifier(opts ...badgecheck.Option) (*badgecheck.Verifier, error) {
	opts = append([]badgecheck.Option{
		badgecheck.WithLogger(c.logger()),
		badgecheck.WithRejectLegacyVersions(c.v.GetBool("reject-legacy")),
		badgecheck.WithHTTPClient(c.httpClient()),
		badgecheck.WithUserAgent(c.v.GetString("user-agent")),
		badgecheck.WithCacheTTL(c.v.GetDuration("cache-ttl")),
	}, opts...)

	v, err := badgecheck.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating verifier: %w", err)
	}
	return v, nil
}

// readArtifact loads the badge named by source. A hosted assertion URL is
// fetched here and also returned as the instance URL.
func (c *cli) readArtifact(cmd *cobra.Command, source string) (any, string, error) {
	switch {
	case source == "-":
		b, err := readStdin(cmd)
		if err != nil {
			return nil, "", err
		}
		return b, "", nil

	case isURL(source):
		l, err := loader.NewHTTPLoader(
			loader.WithHTTPClient(c.httpClient()),
			loader.WithUserAgent(c.v.GetString("user-agent")),
		)
		if err != nil {
			return nil, "", err
		}
		c.log.WithField("url", source).Info("fetching hosted assertion")
		doc, err := l.Fetch(cmd.Context(), source)
		if err != nil {
			return nil, "", fmt.Errorf("fetching %s: %w", source, err)
		}
		return doc, source, nil

	default:
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, "", err
		}
		return b, "", nil
	}
}

// readStdin reads at most MaxArtifactSize bytes and fails on anything longer.
func readStdin(cmd *cobra.Command) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), badgecheck.MaxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(b) > badgecheck.MaxArtifactSize {
		return nil, fmt.Errorf("stdin exceeds %d bytes", badgecheck.MaxArtifactSize)
	}
	return b, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
