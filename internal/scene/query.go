package scene

import "github.com/samdwyer/tilequest/internal/world"

// ComponentOf returns o's first component of type T.
func ComponentOf[T any](o *Object) (T, bool) {
	var zero T
	if o == nil {
		return zero, false
	}
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// ComponentsOf returns all of o's components of type T.
func ComponentsOf[T any](o *Object) []T {
	if o == nil {
		return nil
	}
	var out []T
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// FindComponent returns the first component of type T in the scene.
// T may be a concrete component type or a capability interface.
func FindComponent[T any](s *Scene) (T, bool) {
	for _, o := range s.objects {
		if t, ok := ComponentOf[T](o); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// FindComponents returns every component of type T in the scene.
func FindComponents[T any](s *Scene) []T {
	var out []T
	for _, o := range s.objects {
		out = append(out, ComponentsOf[T](o)...)
	}
	return out
}

// FindObjects returns the objects that have a component of type T.
func FindObjects[T any](s *Scene) []*Object {
	var out []*Object
	for _, o := range s.objects {
		if _, ok := ComponentOf[T](o); ok {
			out = append(out, o)
		}
	}
	return out
}

// ObjectsAt returns the objects with a component of type T that cover tile p.
// exclude, usually the querying actor, is never returned.
func ObjectsAt[T any](s *Scene, p world.Point, exclude *Object) []*Object {
	var out []*Object
	for _, o := range s.objects {
		if o == exclude || !o.Covers(p) {
			continue
		}
		if _, ok := ComponentOf[T](o); ok {
			out = append(out, o)
		}
	}
	return out
}
