package vitals

// ReconcileOrder merges a saved preference with the current catalog.
//
// Saved ordering is kept for keys that still exist in the catalog, keys that
// have left the catalog are dropped, and catalog keys the preference has never
// seen are appended in catalog order and enabled by default. An empty saved
// preference yields the catalog's own order with everything enabled.
func ReconcileOrder(catalog []VitalDefinition, saved Preference) Preference {
	known := make(map[string]bool, len(catalog))
	for _, v := range catalog {
		known[v.Key] = true
	}

	var order []string
	seen := make(map[string]bool, len(catalog))
	for _, key := range saved.Order {
		if known[key] && !seen[key] {
			order = append(order, key)
			seen[key] = true
		}
	}

	savedEnabled := make(map[string]bool, len(saved.Enabled))
	for _, key := range saved.Enabled {
		savedEnabled[key] = true
	}

	var enabled []string
	for _, key := range order {
		if savedEnabled[key] {
			enabled = append(enabled, key)
		}
	}

	// Keys new to this preference are visible until the doctor says otherwise.
	for _, v := range catalog {
		if seen[v.Key] {
			continue
		}
		order = append(order, v.Key)
		seen[v.Key] = true
		enabled = append(enabled, v.Key)
	}

	return Preference{Order: order, Enabled: enabled}
}

// OrderedCatalog returns the catalog entries arranged per a reconciled
// preference, skipping disabled keys.
func OrderedCatalog(catalog []VitalDefinition, pref Preference) []VitalDefinition {
	byKey := make(map[string]VitalDefinition, len(catalog))
	for _, v := range catalog {
		byKey[v.Key] = v
	}
	enabled := make(map[string]bool, len(pref.Enabled))
	for _, key := range pref.Enabled {
		enabled[key] = true
	}

	out := make([]VitalDefinition, 0, len(pref.Order))
	for _, key := range pref.Order {
		if !enabled[key] {
			continue
		}
		if v, ok := byKey[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
