package config

import (
	"errors"

	"github.com/dshills/blocktree/internal/input/rules"
)

// Apply pushes rule overrides onto a rule set. Overrides naming unknown
// rules are collected and returned joined; the remaining overrides still
// apply.
func Apply(cfg *Config, set *rules.Set) error {
	var errs []error
	for _, o := range cfg.Rules {
		if o.Priority != nil {
			if err := set.SetPriority(o.ID, *o.Priority); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if o.Disabled != nil {
			if err := set.SetDisabled(o.ID, *o.Disabled); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
