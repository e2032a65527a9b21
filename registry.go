package skemacore

// definitions is the id-keyed registry reference nodes resolve against.
// Entries are registered during compilation and looked up — never copied —
// at validation/serialization time, which is what permits forward and
// circular schema references without ownership cycles in the compiled tree.
type definitions struct {
	byID map[string]node
}

func newDefinitions() *definitions {
	return &definitions{byID: make(map[string]node)}
}

// add registers a compiled node under id. It reports false when the id is
// already taken.
func (d *definitions) add(id string, n node) bool {
	if _, ok := d.byID[id]; ok {
		return false
	}
	d.byID[id] = n
	return true
}

func (d *definitions) resolve(id string) (node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

func (d *definitions) len() int { return len(d.byID) }
