package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ApplyOverrides binds user keys on top of the defaults. overrides maps a
// command name to a comma-separated list of "context:key" entries; the
// context defaults to main. For example:
//
//	monitor:
//	  keys:
//	    sync: "ctrl+s, S"
//	    quit: "global:Q"
//
// Every entry is checked; the returned error joins all problems and the
// valid entries are still applied.
func ApplyOverrides(r *Registry, overrides map[string]string) error {
	var errs []error
	var bindings []Binding
	for name, keys := range overrides {
		cmd := Command(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(AllCommands(), cmd) {
			errs = append(errs, fmt.Errorf("unknown command %q", name))
			continue
		}
		for _, entry := range strings.Split(keys, ",") {
			ctx, key, err := parseEntry(entry)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			bindings = append(bindings, Binding{Key: key, Command: cmd, Context: ctx})
		}
	}
	r.Bind(bindings...)
	return errors.Join(errs...)
}

// parseEntry splits "context:key". A bare key is bound in the main context.
func parseEntry(entry string) (Context, string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", "", errors.New("empty key")
	}
	ctx, key := ContextMain, entry
	if before, after, ok := strings.Cut(entry, ":"); ok && before != "" && after != "" {
		ctx, key = Context(before), after
		if !slices.Contains(Contexts, ctx) {
			return "", "", fmt.Errorf("unknown context %q", before)
		}
	}
	return ctx, key, nil
}
