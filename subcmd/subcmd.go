// Package subcmd wraps flag.FlagSet with a usage message for one of the
// program's subcommands.
package subcmd

import (
	"flag"
	"fmt"
)

const program = "popgenres"

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	sc.FlagSet.Usage = func() {
		out := sc.FlagSet.Output()
		argSuffix := ""
		if sc.arg != nil {
			argSuffix = fmt.Sprintf(" <%s>", sc.arg.name)
		}
		fmt.Fprintf(out, "\n%s\n\n", doc)
		fmt.Fprintf(out, "  %s %s [flags]%s\n\n", program, name, argSuffix)
		fmt.Fprintf(out, "flags:\n")
		sc.FlagSet.PrintDefaults()
		if sc.arg != nil {
			fmt.Fprintf(out, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
			fmt.Fprintf(out, "  \t%s\n", sc.arg.usage)
		}
	}
	sc.ConfigPath = sc.String("config", "", "path to a yaml config file (default $POPGENRES_CONFIG or ./popgenres.yaml)")
	return sc
}

// Subcommand is a flag set that always has a -config flag.
type Subcommand struct {
	*flag.FlagSet
	arg *arg

	ConfigPath *string
}

type arg struct {
	name     string
	typename string
	usage    string
}

func (sc *Subcommand) SetArg(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name, typname, usage}
	return sc
}
