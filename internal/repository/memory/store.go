// Package memory is a process-local storage backend with the same contracts
// as the gorm implementation. It backs the "memory" database driver and the
// service tests.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type memberKey struct {
	memberId uuid.UUID
	groupId  uuid.UUID
}

// Store holds every table. Writers inside a unit of work transaction hold txMu
// for the whole transaction; mu guards individual reads and writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	now  func() time.Time

	users         map[uuid.UUID]entity.User
	roles         map[uuid.UUID][]string
	notes         map[uuid.UUID]entity.Note
	groups        map[uuid.UUID]entity.Group
	members       map[memberKey]entity.GroupMember
	refreshTokens map[uuid.UUID]entity.RefreshToken
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[uuid.UUID]entity.User),
		roles:         make(map[uuid.UUID][]string),
		notes:         make(map[uuid.UUID]entity.Note),
		groups:        make(map[uuid.UUID]entity.Group),
		members:       make(map[memberKey]entity.GroupMember),
		refreshTokens: make(map[uuid.UUID]entity.RefreshToken),
	}
}

// query filters and orders a copy of items according to specs.
func query[T any](items []*T, specs []specification.Specification) ([]*T, error) {
	var (
		orderings  []specification.Ordering
		pagination *specification.Pagination
	)

	result := items
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.Predicate:
			filtered := result[:0:0]
			for _, item := range result {
				if s.IsSatisfiedBy(item) {
					filtered = append(filtered, item)
				}
			}
			result = filtered
		case specification.Ordering:
			orderings = append(orderings, s)
		case specification.Pagination:
			p := s
			pagination = &p
		default:
			return nil, fmt.Errorf("memory: unsupported specification %T", spec)
		}
	}

	if len(orderings) > 0 {
		sort.SliceStable(result, func(i, j int) bool {
			for _, o := range orderings {
				if o.Less(result[i], result[j]) {
					return true
				}
				if o.Less(result[j], result[i]) {
					return false
				}
			}
			return false
		})
	}

	if pagination != nil {
		if pagination.Offset >= len(result) {
			return []*T{}, nil
		}
		result = result[pagination.Offset:]
		if pagination.Limit > 0 && pagination.Limit < len(result) {
			result = result[:pagination.Limit]
		}
	}

	return result, nil
}

// values copies map values into pointers the caller may mutate freely.
func values[K comparable, V any](m map[K]V) []*V {
	out := make([]*V, 0, len(m))
	for _, v := range m {
		out = append(out, &v)
	}
	return out
}

// SetClock replaces the timestamp source used for created/updated times.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
