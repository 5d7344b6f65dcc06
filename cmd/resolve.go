package cmd

import (
	"strconv"

	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func Resolve() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <source> <index>...",
		Short: "Dump the full attribute set of single entries",
		Long: "Dump the full attribute set of single entries. An index that cannot be resolved " +
			"is reported and the remaining indexes are still written.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexes := make([]uint64, 0, len(args)-1)
			for _, a := range args[1:] {
				i, err := strconv.ParseUint(a, 0, 64)
				if err != nil {
					return errors.Wrapf(err, "record index %q", a)
				}
				indexes = append(indexes, i)
			}

			s, err := settings(cmd, args[0])
			if err != nil {
				return err
			}
			src, res, err := openResolver(s)
			if err != nil {
				return err
			}
			defer src.Close()
			w, err := openOutput(cmd, s.Output)
			if err != nil {
				return err
			}
			defer w.Close()

			log := logger.Logger.Sugar()
			var failed error
			for _, i := range indexes {
				set, err := res.Resolve(i)
				if err != nil {
					log.Warnf("record %d: %s", i, err)
					failed = multierr.Append(failed, errors.Wrapf(err, "resolving record %d", i))
					continue
				}
				if err := w.Write(set); err != nil {
					return multierr.Append(failed, err)
				}
			}
			return multierr.Append(failed, w.Close())
		},
	}
}
