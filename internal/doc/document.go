package doc

// Document pairs a root node with the Coercer used for every write to it.
// It is not safe for concurrent mutation.
type Document struct {
	root    *Node
	coercer Coercer
}

// New returns a document with an empty object root.
func New(c Coercer) *Document {
	return &Document{root: NewObject(), coercer: c}
}

// FromNode wraps root without copying it.
func FromNode(root *Node, c Coercer) *Document {
	if root == nil {
		root = NewObject()
	}
	return &Document{root: root, coercer: c}
}

// FromValue coerces raw, for example a map[string]any, into a document.
func FromValue(raw any, c Coercer) *Document {
	return &Document{root: c.Coerce(raw), coercer: c}
}

// Parse decodes a JSON document.
func Parse(data []byte, c Coercer) (*Document, error) {
	root, err := c.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &Document{root: root, coercer: c}, nil
}

func (d *Document) Root() *Node {
	return d.root
}

func (d *Document) Coercer() Coercer {
	return d.coercer
}

func (d *Document) Get(path string) (*Node, error) {
	return d.root.Get(path)
}

func (d *Document) Set(path string, value any) error {
	return d.coercer.Set(d.root, path, value)
}

func (d *Document) Contains(path string) (bool, error) {
	return d.root.Contains(path)
}

func (d *Document) Remove(path string) (bool, error) {
	return d.root.Remove(path)
}

func (d *Document) Flatten() (map[string]*Node, error) {
	return d.root.Flatten()
}

func (d *Document) Query(expr string) ([]*Node, error) {
	return d.coercer.Query(d.root, expr)
}

// MarshalJSON renders the document with the coercer's time zone.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.coercer.Marshal(d.root)
}

func (d *Document) MarshalYAML() (any, error) {
	return d.coercer.yamlValue(d.root), nil
}
