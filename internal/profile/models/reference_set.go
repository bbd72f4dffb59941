package models

// SetKind tags the shape of a ReferenceSet.
type SetKind string

const (
	SetKindEmpty      SetKind = "empty"
	SetKindSingle     SetKind = "single"
	SetKindCollection SetKind = "collection"
)

// ReferenceSet is the tagged variant of an account's stored identities.
// The only implementations are EmptySet, SingleSet and CollectionSet; callers
// switch on the concrete type.
type ReferenceSet interface {
	Kind() SetKind
	// References returns the stored references in insertion order.
	References() []IdentityReference
	// Len is the number of slots the set currently occupies.
	Len() int

	sealed()
}

// EmptySet is an account with no stored reference yet.
type EmptySet struct{}

// SingleSet is the legacy shape: one reference stored as a bare object.
type SingleSet struct {
	Reference IdentityReference
}

// CollectionSet is an insertion-ordered list of references.
type CollectionSet struct {
	Items []IdentityReference
}

func (EmptySet) Kind() SetKind                   { return SetKindEmpty }
func (EmptySet) References() []IdentityReference { return nil }
func (EmptySet) Len() int                        { return 0 }
func (EmptySet) sealed()                         {}

func (s SingleSet) Kind() SetKind { return SetKindSingle }
func (s SingleSet) References() []IdentityReference {
	return []IdentityReference{s.Reference}
}
func (s SingleSet) Len() int { return 1 }
func (SingleSet) sealed()    {}

func (c CollectionSet) Kind() SetKind { return SetKindCollection }
func (c CollectionSet) References() []IdentityReference {
	return append([]IdentityReference(nil), c.Items...)
}
func (c CollectionSet) Len() int { return len(c.Items) }
func (CollectionSet) sealed()    {}

// Empty returns the empty set.
func Empty() ReferenceSet { return EmptySet{} }

// Single wraps a legacy single reference.
func Single(ref IdentityReference) ReferenceSet { return SingleSet{Reference: ref} }

// Collection builds a collection; no references yields the empty set.
func Collection(refs ...IdentityReference) ReferenceSet {
	if len(refs) == 0 {
		return EmptySet{}
	}
	return CollectionSet{Items: append([]IdentityReference(nil), refs...)}
}

// FromShape rebuilds a set from a stored kind tag and its rows. Stores use it
// when decoding; an unknown or inconsistent tag falls back to the row count.
func FromShape(kind SetKind, refs []IdentityReference) ReferenceSet {
	switch {
	case len(refs) == 0:
		return EmptySet{}
	case kind == SetKindSingle && len(refs) == 1:
		return SingleSet{Reference: refs[0]}
	default:
		return Collection(refs...)
	}
}

// Append returns a new set with ref added at the end. A legacy single set is
// upgraded to a collection; the receiver is never modified.
func Append(set ReferenceSet, ref IdentityReference) ReferenceSet {
	if set == nil {
		return Collection(ref)
	}
	return Collection(append(set.References(), ref)...)
}

// ContainsName reports whether any stored reference has the given normalized name.
func ContainsName(set ReferenceSet, normalized string) bool {
	if set == nil || normalized == "" {
		return false
	}
	for _, ref := range set.References() {
		if ref.NormalizedName() == normalized {
			return true
		}
	}
	return false
}

// Names lists the non-blank stored names in insertion order.
func Names(set ReferenceSet) []string {
	if set == nil {
		return nil
	}
	refs := set.References()
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	return names
}
