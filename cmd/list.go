package cmd

import (
	"github.com/C-Sto/gomftdump/pkg/config"
	"github.com/C-Sto/gomftdump/pkg/export"
	"github.com/C-Sto/gomftdump/pkg/filelisting"
	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func List() *cobra.Command {
	return &cobra.Command{
		Use:   "list [source]",
		Short: "Dump every entry of the table",
		Long: "Dump every entry of the table, either as full attribute sets or, with --timeline, " +
			"as one row per file name with its path. The source can come from --config instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			s, err := settings(cmd, source)
			if err != nil {
				return err
			}
			src, res, err := openResolver(s)
			if err != nil {
				return err
			}
			defer src.Close()
			count, err := src.Count()
			if err != nil {
				return errors.Wrap(err, "counting records")
			}
			w, err := openOutput(cmd, s.Output)
			if err != nil {
				return err
			}
			defer w.Close()

			if s.Output.Timeline {
				err = timeline(res, count, s, w)
			} else {
				err = sweep(res, count, w)
			}
			if err != nil {
				return err
			}
			logger.Logger.Sugar().Infof("wrote %d rows", w.Count())
			return w.Close()
		},
	}
}

func timeline(res *mft.Resolver, count uint64, s config.Settings, w *export.Writer) error {
	lister, err := filelisting.New(res, count,
		filelisting.WithWorkers(s.Workers),
		filelisting.WithPathResolver(filelisting.NewPathResolver(res, s.PathCache)),
	)
	if err != nil {
		return err
	}
	go lister.Dump()

	//keep draining after a failed write so the workers can finish
	var first error
	for e := range lister.GetOutChan() {
		if first != nil {
			continue
		}
		first = w.Write(e)
	}
	return first
}

//sweep writes the attribute set of every in use or deleted base entry, in index order
func sweep(res *mft.Resolver, count uint64, w *export.Writer) error {
	log := logger.Logger.Sugar()
	for i := uint64(0); i < count; i++ {
		set, err := res.Resolve(i)
		if err != nil {
			if errors.Cause(err) != mft.ErrBadSignature {
				log.Warnf("record %d: %s", i, err)
			}
			continue
		}
		if !set.Header.IsBase() {
			continue
		}
		if err := w.Write(set); err != nil {
			return err
		}
	}
	return nil
}
