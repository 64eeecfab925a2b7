package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// separateNegativeArgs moves flags ahead of a "--" so negative numbers such
// as "strafe 0 -320" reach the command as positional arguments instead of
// being parsed as shorthand flags. Subcommand names stay in front and a flag
// keeps the value that follows it. Args without a negative number are
// returned unchanged.
func separateNegativeArgs(root *cobra.Command, args []string) []string {
	if !hasNegativeNumber(args) {
		return args
	}

	cmd := root
	var path, flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case isNumber(a):
			positional = append(positional, a)
		case strings.HasPrefix(a, "-") && len(a) > 1:
			flags = append(flags, a)
			if flagTakesValue(cmd, a) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			if len(positional) == 0 {
				if sub := findSubcommand(cmd, a); sub != nil {
					cmd = sub
					path = append(path, a)
					continue
				}
			}
			positional = append(positional, a)
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, path...)
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, positional...)
}

func hasNegativeNumber(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if strings.HasPrefix(a, "-") && isNumber(a) {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return sub
		}
	}
	return nil
}

// flagTakesValue reports whether arg names a flag of cmd (local, persistent
// or inherited) whose value is the next argument.
func flagTakesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	sets := []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags(), cmd.InheritedFlags()}
	var f *pflag.Flag
	for _, fs := range sets {
		if name, ok := strings.CutPrefix(arg, "--"); ok {
			f = fs.Lookup(name)
		} else if len(arg) == 2 {
			f = fs.ShorthandLookup(arg[1:])
		}
		if f != nil {
			break
		}
	}
	return f != nil && f.NoOptDefVal == ""
}
