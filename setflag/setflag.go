// Package setflag is a flag.Value that accepts a comma-separated subset of
// a fixed list of options.
package setflag

import (
	"fmt"
	"strings"
)

func New(options ...string) *SetFlag {
	sf := &SetFlag{
		order:   options,
		values:  make(map[string]struct{}, len(options)),
		options: make(map[string]struct{}, len(options)),
	}
	for _, opt := range options {
		sf.options[opt] = struct{}{}
	}
	return sf
}

type SetFlag struct {
	order   []string
	options map[string]struct{}
	values  map[string]struct{}
}

// List returns the chosen values in option order, or nil if none were
// chosen.
func (sf *SetFlag) List() []string {
	var values []string
	for _, opt := range sf.order {
		if _, ok := sf.values[opt]; ok {
			values = append(values, opt)
		}
	}
	return values
}

// Has reports whether opt was chosen. With nothing chosen, every option
// counts as chosen.
func (sf *SetFlag) Has(opt string) bool {
	if len(sf.values) == 0 {
		_, ok := sf.options[opt]
		return ok
	}
	_, ok := sf.values[opt]
	return ok
}

func (sf *SetFlag) Options() []string {
	return sf.order
}

func (sf *SetFlag) String() string {
	if sf == nil {
		return ""
	}
	return strings.Join(sf.List(), ",")
}

func (sf *SetFlag) Set(value string) error {
	for _, value := range strings.Split(value, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := sf.options[value]; !exists {
			return fmt.Errorf("unsupported value '%s'; options are %s", value, strings.Join(sf.order, ", "))
		}
		sf.values[value] = struct{}{}
	}
	return nil
}
