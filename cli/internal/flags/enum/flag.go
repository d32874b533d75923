package enum

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

const Type = "enum"

// Flag is a pflag.Value implementation for parsing flags with a one-of-a-set
// value from the provided options. The first option is the default value.
type Flag struct {
	target  *string
	options []string
}

func (f *Flag) Type() string {
	return Type
}

// New returns a Flag accepting one of options, defaulting to the first.
// It panics when no options are given.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("options must not be empty")
	}
	value := options[0]
	return &Flag{target: &value, options: options}
}

func (f *Flag) String() string {
	return *f.target
}

func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("expected one of %q", f.options)
	}

	*f.target = value

	return nil
}

// Options returns the accepted values.
func (f *Flag) Options() []string {
	return slices.Clone(f.options)
}

func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return flag.Value.String(), nil
}

func Var(f *pflag.FlagSet, name string, options []string, usage string) {
	f.Var(New(options...), name, usageWithOptions(usage, options))
}

func VarP(f *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	f.VarP(New(options...), name, shorthand, usageWithOptions(usage, options))
}

func usageWithOptions(usage string, options []string) string {
	cloned := slices.Clone(options)
	slices.Sort(cloned)
	return fmt.Sprintf("%s\n(must be one of %v)", usage, cloned)
}
