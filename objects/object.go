package objects

// Object is a cryptographic or data artifact owned by a token. The handle
// is assigned once when the object is added and stays stable until the
// object is removed. The dirty flag marks local state not yet written to
// persistent storage.
type Object struct {
	Handle     uint64
	Attributes Attributes

	token   *Token
	private bool
	dirty   bool
}

// Token returns the owning token, or nil if the object was never added.
func (object *Object) Token() *Token {
	return object.token
}

// Private reports the visibility classification fixed at insertion time.
func (object *Object) Private() bool {
	return object.private
}

// Dirty reports whether the object has unsynchronized local state.
func (object *Object) Dirty() bool {
	return object.dirty
}

// MarkClean clears the dirty flag after the object has been persisted.
func (object *Object) MarkClean() {
	object.dirty = false
}

// Matches reports whether the object satisfies the attribute template.
func (object *Object) Matches(template Attributes) bool {
	return object.Attributes.Match(template)
}

// ObjectList is one visibility partition of a token. Objects keep their
// insertion order; positions shift down on removal.
type ObjectList struct {
	objects []*Object
}

// Len returns the number of objects in the partition.
func (list *ObjectList) Len() int {
	return len(list.objects)
}

func (list *ObjectList) add(object *Object) {
	list.objects = append(list.objects, object)
}

// find returns the object with the given handle and its zero-based
// position, or (nil, -1).
func (list *ObjectList) find(handle uint64) (*Object, int) {
	for pos, object := range list.objects {
		if object.Handle == handle {
			return object, pos
		}
	}
	return nil, -1
}

// remove unlinks the object with the given handle, keeping the order of
// the remaining objects. It reports whether anything was removed.
func (list *ObjectList) remove(handle uint64) bool {
	_, pos := list.find(handle)
	if pos < 0 {
		return false
	}
	removed := list.objects[pos]
	list.objects = append(list.objects[:pos], list.objects[pos+1:]...)
	removed.token = nil
	if len(list.objects) == 0 {
		list.objects = nil
	}
	return true
}

// purge drops every object in the partition.
func (list *ObjectList) purge() {
	for _, object := range list.objects {
		object.token = nil
	}
	list.objects = nil
}

// slice returns a copy of the partition in insertion order.
func (list *ObjectList) slice() []*Object {
	out := make([]*Object, len(list.objects))
	copy(out, list.objects)
	return out
}
