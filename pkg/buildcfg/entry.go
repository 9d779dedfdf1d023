package buildcfg

import (
	"context"
	"maps"
	"slices"
)

// InjectEntries returns an entry function that adds the Tracefront
// initialization module to the appropriate bundles for the given target. The
// returned function is lazy: orig is not called until the host bundler
// resolves entries.
//
// Injected bundles always come out in list form. Server targets get the
// server initialization module under ServerEntryKey; every other bundle
// passes through unchanged. Client targets get the client initialization
// module appended to the "main" bundle, with any legacy auxiliary entries
// folded in first (see LegacyMainKey).
func InjectEntries(orig EntryFunc, bctx BuildContext) EntryFunc {
	return func(ctx context.Context) (EntryMap, error) {
		resolved, err := orig.Resolve(ctx)
		if err != nil {
			return nil, err
		}

		entries := maps.Clone(resolved)
		if entries == nil {
			entries = EntryMap{}
		}

		if bctx.IsServer {
			entries[ServerEntryKey] = List(ServerInitModule)
			return entries, nil
		}

		main := entries[MainEntryKey].Modules()

		// Known host quirk: auxiliary "main.js" entries must be folded into
		// "main" ahead of the user's own modules, and the auxiliary bundle
		// has to stay in the mapping as an explicit empty list. Deviating
		// here silently changes initialization order.
		if aux := entries[LegacyMainKey].Modules(); len(aux) > 0 {
			main = append(slices.Clone(aux), main...)
			entries[LegacyMainKey] = List()
		}

		entries[MainEntryKey] = List(append(main, ClientInitModule)...)
		return entries, nil
	}
}
