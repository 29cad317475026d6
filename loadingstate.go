package main

// loadingState is a map of keys to boolean values
// to determine if a key has finished loading
type loadingState map[string]bool

func newLoadingState(keys ...string) loadingState {
	l := make(loadingState, len(keys))
	for _, k := range keys {
		l[k] = false
	}
	return l
}

// set marks the key as loaded
func (l loadingState) set(key string) {
	l[key] = true
}

// unset marks the key as loading again
func (l loadingState) unset(key string) {
	l[key] = false
}

// reset marks every key as loading
func (l loadingState) reset() {
	for k := range l {
		l[k] = false
	}
}

// allLoaded returns true if all keys are loaded, otherwise the first pending key
// in sorted order so the title does not flicker between keys.
func (l loadingState) allLoaded() (bool, string) {
	pending := ""
	for k, v := range l {
		if !v && (pending == "" || k < pending) {
			pending = k
		}
	}

	return pending == "", pending
}
