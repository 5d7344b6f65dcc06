package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/C-Sto/gomftdump/pkg/ntfsdump"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func BootSector() *cobra.Command {
	return &cobra.Command{
		Use:   "bootsector <volume>",
		Short: "Print the geometry of an NTFS volume or image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := ntfsdump.OpenBootSector(appFs, args[0])
			if err != nil {
				return err
			}
			b, err := json.Marshal(sec.Geometry())
			if err != nil {
				return errors.Wrap(err, "encoding geometry")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
			return err
		},
	}
}
