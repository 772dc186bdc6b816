/*
mmtf reads, checks, prints and rewrites MMTF files.

Usage:
 mmtf [global flags] command [flags] args

Commands:
  info FILE...
	Summary of each file: id, title, counts of models, chains,
	groups, atoms and bonds.
  check FILE...
	Decode each file and run the consistency checks. The exit status
	is non-zero if any file could not be read or is not consistent.
  print FILE
	One line per atom, like a PDB file. --delim sets the column
	separator.
  recode IN OUT
	Read IN and write it to OUT.
	  --lossy               one decimal place for coordinates and b-factors
	  --coord-divider N     coordinates kept to 1/N
	  --bfactor-divider N   b-factors and occupancies kept to 1/N
	  --chain-width N       width of chain ids and names
	  --compress            gzip the output
  scan DIR
	Decode every file in DIR and its subdirectories, with -r readers
	in parallel, at most -d subdirectories. --check also runs the
	consistency checks.

  fetch CODE [OUT]
	Get a structure from the PDB. Without OUT, print a summary.
	--site picks the server, --base gives a url of our own.

Global flags:
  --log WHERE
	Where warnings go. "" throws them away, "stdout" is standard
	output, anything else is a file name which is appended to.
  --config FILE
	yaml, toml or json file with values for any of the flags.

Every flag can also be set from the environment as MMTF_ followed by
the flag name in upper case with dashes as underscores, so
MMTF_COORD_DIVIDER=100. Command line beats environment beats config
file.

Input files may be gzipped. Output is deterministic, so recoding a
file twice gives the same bytes.
*/
package main
