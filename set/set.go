package set

// Set is an unordered collection of unique keys.
type Set[T comparable] struct {
	items map[T]struct{}
}

// New creates an empty Set.
func New[T comparable]() *Set[T] {
	return &Set[T]{
		items: make(map[T]struct{}),
	}
}

// KeysOf creates a Set of the keys extracted from items.
func KeysOf[T comparable, E any](items []E, key func(E) T) *Set[T] {
	set := New[T]()
	for _, item := range items {
		set.Add(key(item))
	}
	return set
}

func (s *Set[T]) Add(item T) {
	s.items[item] = struct{}{}
}

func (s *Set[T]) Contains(item T) bool {
	_, exists := s.items[item]
	return exists
}

// Missing returns the members of ordered that are not in the Set, keeping
// their order.
func Missing[T comparable, E any](s *Set[T], ordered []E, key func(E) T) []E {
	result := make([]E, 0, len(ordered))
	for _, item := range ordered {
		if !s.Contains(key(item)) {
			result = append(result, item)
		}
	}
	return result
}
