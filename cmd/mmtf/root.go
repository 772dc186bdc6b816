package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "MMTF"

// errUsage marks bad command lines.
var errUsage = errors.New("usage")

// app is what every command shares.
type app struct {
	stdout, stderr io.Writer
	logDest        string
	log            *zap.Logger
	closeLog       func() error
}

func (a *app) decoder() *mmtf.Decoder { return mmtf.NewDecoder(a.log) }

// nArgs is cobra.RangeArgs, but the error is an errUsage. max < 0
// means no limit.
func nArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || (max >= 0 && len(args) > max) {
			return errors.Wrapf(errUsage, "%s: wrong number of arguments (%d)\n%s",
				cmd.Name(), len(args), cmd.UseLine())
		}
		return nil
	}
}

// execute runs the command line args. The log file, if any, is closed
// whatever happens.
func execute(args []string, stdout, stderr io.Writer) error {
	rc, a := newRootCommand(stdout, stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	if e := a.closeLog(); e != nil && err == nil {
		err = errors.Wrap(e, "closing log")
	}
	return err
}

func newRootCommand(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr, log: zap.NewNop(), closeLog: func() error { return nil }}
	rc := &cobra.Command{
		Use:           "mmtf",
		Short:         "Read, check, print and rewrite MMTF files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setAllConfig(viper.New(), cmd.Flags()); err != nil {
				return errors.Wrap(errUsage, err.Error())
			}
			log, done, err := logWhere(a.logDest, a.stdout)
			if err != nil {
				return errors.Wrap(err, "log file")
			}
			a.log, a.closeLog = log, done
			return nil
		},
	}
	rc.PersistentFlags().StringVar(&a.logDest, "log", "", `where warnings go: "", "stdout" or a file name`)
	rc.PersistentFlags().StringP("config", "c", "", "configuration file (yaml, toml or json)")

	rc.AddCommand(newInfoCommand(a))
	rc.AddCommand(newCheckCommand(a))
	rc.AddCommand(newPrintCommand(a))
	rc.AddCommand(newRecodeCommand(a))
	rc.AddCommand(newScanCommand(a))
	rc.AddCommand(newFetchCommand(a))

	rc.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrapf(errUsage, "%v\n%s", err, cmd.UseLine())
	})
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc, a
}

// setAllConfig fills every flag which was not given on the command
// line from the environment (MMTF_FLAG_NAME) or the config file, in
// that order.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// One config file serves all commands, so keys for other commands
	// are not an error.
	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}
