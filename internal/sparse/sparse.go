// Package sparse provides a sparse set of node indices.
//
// A sparse set supports O(1) insertion and membership testing while keeping
// a dense list of members in insertion order. The pattern graph code uses it
// as the visited set for its reachability walks: the universe (the number of
// nodes in one arena) is known up front and small.
package sparse

// Set is a set of uint32 values drawn from [0, capacity).
type Set struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32 // members in insertion order
}

// New creates an empty set able to hold values below capacity.
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value to the set. It reports whether the value was newly
// added, so a walk can use it as "visit once".
// Panics if value >= capacity.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense)) //nolint:gosec // bounded by capacity
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set.
func (s *Set) Contains(value uint32) bool {
	if uint64(value) >= uint64(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return uint64(idx) < uint64(len(s.dense)) && s.dense[idx] == value
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the members in insertion order.
// The returned slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
