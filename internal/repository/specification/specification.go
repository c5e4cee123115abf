package specification

import "gorm.io/gorm"

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Predicate is a Specification that can also be evaluated against an entity
// held in memory.
type Predicate interface {
	Specification
	IsSatisfiedBy(candidate any) bool
}

// Ordering is a Specification that can also order entities held in memory.
type Ordering interface {
	Specification
	Less(a, b any) bool
}
