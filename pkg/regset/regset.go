// Package regset 并发注册集合
// Add 返回删除令牌，删除只认令牌不比较元素，值相等的两个元素互不影响
package regset

import (
	"sync/atomic"

	"github.com/duke-git/lancet/v2/maputil"
)

// IRegistration 删除令牌
type IRegistration interface {
	Remove() bool
}

// ISet 注册集合
type ISet[T any] interface {
	Add(element T) IRegistration
	Copy() []T
	Len() int
}

var _ ISet[int] = (*Set[int])(nil)

// Set 基于分片并发 map 的注册集合，键为自增序号
type Set[T any] struct {
	seq   atomic.Uint64
	count atomic.Int64
	dict  *maputil.ConcurrentMap[uint64, T]
}

func New[T any]() *Set[T] {
	return &Set[T]{
		dict: maputil.NewConcurrentMap[uint64, T](32),
	}
}

// Add 注册元素，O(1)
func (s *Set[T]) Add(element T) IRegistration {
	key := s.seq.Add(1)
	s.dict.Set(key, element)
	s.count.Add(1)
	return &registration[T]{set: s, key: key}
}

// Copy 返回当前元素的快照，之后的 Add/Remove 不影响快照
func (s *Set[T]) Copy() []T {
	elements := make([]T, 0, s.Len())
	s.dict.Range(func(_ uint64, value T) bool {
		elements = append(elements, value)
		return true
	})
	return elements
}

func (s *Set[T]) Len() int {
	return int(s.count.Load())
}

type registration[T any] struct {
	set     *Set[T]
	key     uint64
	removed atomic.Bool
}

// Remove 第一次调用删除元素并返回 true，重复调用返回 false
func (r *registration[T]) Remove() bool {
	if !r.removed.CompareAndSwap(false, true) {
		return false
	}
	r.set.dict.Delete(r.key)
	r.set.count.Add(-1)
	return true
}
