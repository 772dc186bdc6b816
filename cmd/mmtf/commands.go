package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrew-torda/mmtf/pkg/bigread"
	"github.com/andrew-torda/mmtf/pkg/download"
	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Summarise MMTF files",
		Args:  nArgs(1, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := a.decoder()
			nBad := 0
			for _, fname := range args {
				sd, err := dec.DecodeFile(fname)
				if err != nil {
					fmt.Fprintln(a.stderr, err)
					nBad++
					continue
				}
				writeInfo(a, fname, sd)
			}
			if nBad > 0 {
				return errFound
			}
			return nil
		},
	}
}

func writeInfo(a *app, fname string, sd *mmtf.StructureData) {
	w := a.stdout
	fmt.Fprintln(w, fname)
	fmt.Fprintf(w, "  id %q title %q\n", sd.StructureID, sd.Title)
	fmt.Fprintf(w, "  mmtf version %s from %s\n", sd.MmtfVersion, sd.MmtfProducer)
	if len(sd.ExperimentalMethods) > 0 {
		fmt.Fprintln(w, "  method", strings.Join(sd.ExperimentalMethods, ", "))
	}
	if sd.Resolution != mmtf.DefaultFloat {
		fmt.Fprintf(w, "  resolution %.2f\n", sd.Resolution)
	}
	fmt.Fprintf(w, "  models %d chains %d groups %d (%d types) atoms %d bonds %d\n",
		sd.NumModels, sd.NumChains, sd.NumGroups, len(sd.GroupList), sd.NumAtoms, sd.NumBonds)
	for i := range sd.EntityList {
		e := &sd.EntityList[i]
		fmt.Fprintf(w, "  entity %d %s %q chains %v\n", i, e.Type, e.Description, e.ChainIndexList)
	}
	fmt.Fprintf(w, "  %d bioassemblies %d ncs operators\n", len(sd.BioAssemblyList), len(sd.NcsOperatorList))
}

func newCheckCommand(a *app) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check MMTF files are consistent",
		Args:  nArgs(1, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := a.decoder()
			nBad := 0
			for _, fname := range args {
				sd, err := dec.DecodeFile(fname)
				if err == nil {
					err = sd.Check(width)
				}
				if err != nil {
					fmt.Fprintf(a.stdout, "%s: %v\n", fname, err)
					a.log.Warn("check failed", zap.String("file", fname), zap.Error(err))
					nBad++
					continue
				}
				fmt.Fprintln(a.stdout, fname, "ok")
			}
			if nBad > 0 {
				return errFound
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "chain-width", mmtf.ChainNameMaxLength, "longest chain id or name allowed")
	return cmd
}

func newPrintCommand(a *app) *cobra.Command {
	var delim string
	cmd := &cobra.Command{
		Use:   "print FILE",
		Short: "Write one line per atom",
		Args:  nArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sd, err := a.decoder().DecodeFile(args[0])
			if err != nil {
				return err
			}
			return sd.Print(a.stdout, delim)
		},
	}
	cmd.Flags().StringVar(&delim, "delim", " ", "column separator")
	return cmd
}

// recodeFlags are the flags for recode.
type recodeFlags struct {
	lossy          bool
	compress       bool
	coordDivider   int32
	bfactorDivider int32
	chainWidth     int
}

// options turns the flags into encoder options. Explicit dividers win
// over --lossy.
func (rf *recodeFlags) options(cmd *cobra.Command) (mmtf.EncodeOptions, error) {
	opts := mmtf.DefaultEncodeOptions()
	if rf.lossy {
		opts = mmtf.LossyEncodeOptions()
	}
	if cmd.Flags().Changed("coord-divider") || !rf.lossy {
		opts.CoordDivider = rf.coordDivider
	}
	if cmd.Flags().Changed("bfactor-divider") || !rf.lossy {
		opts.OccupancyBFactorDivider = rf.bfactorDivider
	}
	opts.ChainNameMaxLength = rf.chainWidth
	if err := opts.Check(); err != nil {
		return opts, errors.Wrap(errUsage, err.Error())
	}
	return opts, nil
}

func newRecodeCommand(a *app) *cobra.Command {
	var rf recodeFlags
	dflt := mmtf.DefaultEncodeOptions()
	cmd := &cobra.Command{
		Use:   "recode IN OUT",
		Short: "Read a file and write it again",
		Args:  nArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rf.options(cmd)
			if err != nil {
				return err
			}
			sd, err := a.decoder().DecodeFile(args[0])
			if err != nil {
				return err
			}
			if err := mmtf.EncodeFile(sd, args[1], opts, rf.compress); err != nil {
				return err
			}
			a.log.Info("recoded", zap.String("in", args[0]), zap.String("out", args[1]),
				zap.Int32("coordDivider", opts.CoordDivider), zap.Bool("compress", rf.compress))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&rf.lossy, "lossy", false, "keep one decimal place")
	f.BoolVar(&rf.compress, "compress", false, "gzip the output")
	f.Int32Var(&rf.coordDivider, "coord-divider", dflt.CoordDivider, "coordinates kept to 1/N")
	f.Int32Var(&rf.bfactorDivider, "bfactor-divider", dflt.OccupancyBFactorDivider,
		"b-factors and occupancies kept to 1/N")
	f.IntVar(&rf.chainWidth, "chain-width", dflt.ChainNameMaxLength, "width of chain ids and names")
	return cmd
}

func newScanCommand(a *app) *cobra.Command {
	var opts bigread.Options
	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "Decode every file under a directory",
		Args:  nArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Log = a.log
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := bigread.Scan(ctx, args[0], opts)
			if err != nil {
				return err
			}
			const mb = 1024 * 1024
			fmt.Fprintf(a.stdout, "files %d failed %d inconsistent %d atoms %d %.2f Mb\n",
				res.NFile, res.NFail, res.NInconsistent, res.NAtom, float32(res.NByte)/mb)
			for _, f := range res.Failed {
				fmt.Fprintln(a.stdout, "failed", f)
			}
			if res.NFail > 0 || res.NInconsistent > 0 {
				return errFound
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.NReader, "readers", "r", bigread.NReaderDflt, "number of reader goroutines")
	cmd.Flags().IntVarP(&opts.MaxDir, "dirs", "d", bigread.MaxDirDflt, "max num directories to read, 0 for all")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "check every structure")
	return cmd
}

func newFetchCommand(a *app) *cobra.Command {
	var siteNum int
	var base string
	var compress bool
	cmd := &cobra.Command{
		Use:   "fetch CODE [OUT]",
		Short: "Get a structure from the PDB",
		Args:  nArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := download.NewClient(siteNum)
			if base != "" {
				c.Site = download.Site{Base: base}
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sd, err := c.Fetch(ctx, args[0], a.decoder())
			if err != nil {
				return err
			}
			a.log.Info("fetched", zap.String("url", c.URL(args[0])))
			if len(args) < 2 {
				writeInfo(a, c.URL(args[0]), sd)
				return nil
			}
			return mmtf.EncodeFile(sd, args[1], mmtf.DefaultEncodeOptions(), compress)
		},
	}
	cmd.Flags().IntVar(&siteNum, "site", 0, "which server to use")
	cmd.Flags().StringVar(&base, "base", "", "url to put in front of the code, instead of a known server")
	cmd.Flags().BoolVar(&compress, "compress", false, "gzip the output")
	return cmd
}
