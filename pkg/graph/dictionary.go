package graph

// MissingCategoryID is the sentinel id denoting "missing" in a
// categorical attribute (§3, GLOSSARY "Missing id").
const MissingCategoryID int32 = -1

// DefaultMissingLabel is the label substituted for MissingCategoryID when
// decategorizing, absent a caller-supplied override (§4.3).
const DefaultMissingLabel = "__NA__"

// Dictionary is the label<->id mapping owned by a categorical attribute
// (§3). Grounded on the teacher's bidirectional label table in
// pkg/storage/dictionary.go, generalized to int32 ids to match the
// wire-format category encoding of §4.7.2.
type Dictionary struct {
	labelToID map[string]int32
	idToLabel []string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{labelToID: make(map[string]int32)}
}

// Intern returns the id for label, creating a new dense id if absent.
func (d *Dictionary) Intern(label string) int32 {
	if id, ok := d.labelToID[label]; ok {
		return id
	}
	id := int32(len(d.idToLabel))
	d.idToLabel = append(d.idToLabel, label)
	d.labelToID[label] = id
	return id
}

// IDFor looks up label without creating a new entry.
func (d *Dictionary) IDFor(label string) (int32, bool) {
	id, ok := d.labelToID[label]
	return id, ok
}

// LabelFor looks up the label for id.
func (d *Dictionary) LabelFor(id int32) (string, bool) {
	if id == MissingCategoryID || id < 0 || int(id) >= len(d.idToLabel) {
		return "", false
	}
	return d.idToLabel[id], true
}

// Len reports the number of distinct labels.
func (d *Dictionary) Len() int { return len(d.idToLabel) }

// Labels returns labels in ascending id order. The caller must not
// mutate the returned slice.
func (d *Dictionary) Labels() []string { return d.idToLabel }

// Clone returns a deep copy, used when a dictionary must be duplicated
// rather than shared (Compact clones each category dictionary into the
// new graph).
func (d *Dictionary) Clone() *Dictionary {
	c := &Dictionary{
		labelToID: make(map[string]int32, len(d.labelToID)),
		idToLabel: append([]string(nil), d.idToLabel...),
	}
	for k, v := range d.labelToID {
		c.labelToID[k] = v
	}
	return c
}
