package app

import (
	"github.com/spf13/cobra"

	"github.com/openbadges/badgecheck/recipient"
)

// identityObject is the recipient object of a 1.x assertion.
type identityObject struct {
	Identity string `json:"identity"`
	Type     string `json:"type"`
	Hashed   bool   `json:"hashed"`
	Salt     string `json:"salt,omitempty"`
}

func newHashCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <identifier>",
		Short: "Print a hashed recipient identity for an assertion",
		Long: `Hash an identifier the way issuers publish it in an assertion's recipient
object. A random salt is generated unless --salt is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			salt := c.v.GetString("salt")
			if salt == "" && !c.v.GetBool("no-salt") {
				salt = recipient.NewSalt()
			}

			identity, err := recipient.Hash(c.v.GetString("algorithm"), args[0], salt)
			if err != nil {
				return err
			}

			return c.printer(cmd).print(identityObject{
				Identity: identity,
				Type:     c.v.GetString("type"),
				Hashed:   true,
				Salt:     salt,
			})
		},
	}

	cmd.Flags().String("algorithm", recipient.SHA256, "digest algorithm: sha256 or md5")
	cmd.Flags().String("salt", "", "salt appended to the identifier before hashing")
	cmd.Flags().Bool("no-salt", false, "hash the identifier without a salt")
	cmd.Flags().String("type", "email", "identity type")
	return cmd
}
