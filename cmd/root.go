package cmd

import (
	"github.com/C-Sto/gomftdump/pkg/config"
	"github.com/C-Sto/gomftdump/pkg/export"
	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/C-Sto/gomftdump/pkg/ntfsdump"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

//appFs is where sources, configs and output files live. Tests swap in a memory fs.
var appFs afero.Fs = afero.NewOsFs()

//Root returns the gomftdump command with all subcommands attached
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "gomftdump",
		Short:         "Resolve and dump NTFS MFT entries",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "yaml job file, flags override its values")
	flags.String("kind", config.KindFlat, "source kind: flat ($MFT copy) or volume (device, drive letter or image)")
	flags.Int("record-size", 0, "record size of a flat source, 1024 when 0")
	flags.Int("workers", 0, "concurrent resolvers, NumCPU when 0")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.StringP("output", "o", "", "output file, stdout when empty")
	flags.Bool("compress", false, "gzip the output")
	flags.Bool("timeline", false, "write one flattened row per file name")

	root.AddCommand(BootSector(), Resolve(), List())
	return root
}

//settings merges the config file (if any) with the flags that were set explicitly
func settings(cmd *cobra.Command, source string) (config.Settings, error) {
	flags := cmd.Flags()
	s := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(appFs, path)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	if source != "" {
		s.Source.Path = source
	}
	if flags.Changed("kind") {
		s.Source.Kind, _ = flags.GetString("kind")
	}
	if flags.Changed("record-size") {
		s.Source.RecordSize, _ = flags.GetInt("record-size")
	}
	if flags.Changed("workers") {
		s.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("log-level") {
		s.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("output") {
		s.Output.Path, _ = flags.GetString("output")
	}
	if flags.Changed("compress") {
		s.Output.Compress, _ = flags.GetBool("compress")
	}
	if flags.Changed("timeline") {
		s.Output.Timeline, _ = flags.GetBool("timeline")
	}

	if s.Source.Path == "" {
		return s, errors.New("no source given")
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	if err := logger.SetLevel(s.LogLevel); err != nil {
		return s, errors.Wrapf(err, "log level %q", s.LogLevel)
	}
	return s, nil
}

func openOutput(cmd *cobra.Command, o config.Output) (*export.Writer, error) {
	if o.Path == "" {
		return export.NewWriter(cmd.OutOrStdout(), o.Compress), nil
	}
	return export.Create(appFs, o.Path, o.Compress)
}

//openResolver opens the source and builds a resolver over it. Sources that can read run
//lists also serve non resident attribute lists.
func openResolver(s config.Settings) (ntfsdump.Source, *mft.Resolver, error) {
	src, err := ntfsdump.Open(appFs, s.Source.Kind, s.Source.Path, s.Source.RecordSize)
	if err != nil {
		return nil, nil, err
	}
	opts := []mft.Option{}
	if nr, ok := src.(mft.NonResidentReader); ok {
		opts = append(opts, mft.WithNonResidentReader(nr))
	}
	res, err := mft.NewResolver(src, opts...)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return src, res, nil
}
