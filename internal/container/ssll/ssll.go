// Package ssll provides singly linked list container backends: a sorted
// list and unsorted FIFO and LIFO variants.
package ssll

import "github.com/zjrosen/mibstore/internal/container"

// Factory names.
const (
	Name     = "sorted_singly_linked_list"
	FIFOName = "fifo"
	LIFOName = "lifo"
)

type mode int

const (
	sorted mode = iota
	fifo
	lifo
)

type node struct {
	item any
	next *node
}

// List is a singly linked list store. The sorted variant keeps items in
// comparator order and rejects duplicates; the FIFO and LIFO variants append
// at the tail or the head and allow duplicates, using the comparator only
// to find and remove.
type List struct {
	cmp  container.Comparer
	head *node
	tail *node
	size int
	mode mode
}

// New returns an empty sorted list store.
func New() *List {
	return &List{mode: sorted}
}

// NewFIFO returns an unsorted list that appends at the tail.
func NewFIFO() *List {
	return &List{mode: fifo}
}

// NewLIFO returns an unsorted list that pushes at the head.
func NewLIFO() *List {
	return &List{mode: lifo}
}

// Factory produces sorted list containers.
func Factory() container.Factory {
	return container.FactoryFunc(Name, "table", func() container.Store { return New() })
}

// FIFOFactory produces FIFO list containers.
func FIFOFactory() container.Factory {
	return container.FactoryFunc(FIFOName, "queue", func() container.Store { return NewFIFO() })
}

// LIFOFactory produces LIFO list containers.
func LIFOFactory() container.Factory {
	return container.FactoryFunc(LIFOName, "stack", func() container.Store { return NewLIFO() })
}

func (l *List) Init(cmp container.Comparer) error {
	if cmp == nil {
		return container.ErrNoComparator
	}
	l.cmp = cmp
	l.head, l.tail, l.size = nil, nil, 0
	return nil
}

func (l *List) Free() error {
	l.head, l.tail, l.size = nil, nil, 0
	return nil
}

func (l *List) Size() int {
	return l.size
}

func (l *List) Insert(item any) error {
	n := &node{item: item}
	switch l.mode {
	case fifo:
		if l.tail == nil {
			l.head = n
		} else {
			l.tail.next = n
		}
		l.tail = n
	case lifo:
		n.next = l.head
		l.head = n
		if l.tail == nil {
			l.tail = n
		}
	default:
		var prev *node
		cur := l.head
		for cur != nil {
			rc := l.cmp.Compare(cur.item, item)
			if rc == 0 {
				return container.ErrDuplicate
			}
			if rc > 0 {
				break
			}
			prev, cur = cur, cur.next
		}
		n.next = cur
		if prev == nil {
			l.head = n
		} else {
			prev.next = n
		}
		if cur == nil {
			l.tail = n
		}
	}
	l.size++
	return nil
}

func (l *List) Remove(key any) error {
	var prev *node
	for cur := l.head; cur != nil; prev, cur = cur, cur.next {
		rc := l.cmp.Compare(cur.item, key)
		if rc > 0 && l.mode == sorted {
			break
		}
		if rc != 0 {
			continue
		}
		if prev == nil {
			l.head = cur.next
		} else {
			prev.next = cur.next
		}
		if l.tail == cur {
			l.tail = prev
		}
		l.size--
		return nil
	}
	return container.ErrNotFound
}

func (l *List) Find(key any) (any, bool) {
	for cur := l.head; cur != nil; cur = cur.next {
		rc := l.cmp.Compare(cur.item, key)
		if rc == 0 {
			return cur.item, true
		}
		if rc > 0 && l.mode == sorted {
			break
		}
	}
	return nil, false
}

// FindNext returns the first item ordered strictly after key. Unsorted
// lists return the smallest such item.
func (l *List) FindNext(key any) (any, bool) {
	var best *node
	for cur := l.head; cur != nil; cur = cur.next {
		if l.cmp.Compare(cur.item, key) <= 0 {
			continue
		}
		if l.mode == sorted {
			return cur.item, true
		}
		if best == nil || l.cmp.Compare(cur.item, best.item) < 0 {
			best = cur
		}
	}
	if best == nil {
		return nil, false
	}
	return best.item, true
}

func (l *List) ForEach(fn container.Visitor) {
	items := make([]any, 0, l.size)
	for cur := l.head; cur != nil; cur = cur.next {
		items = append(items, cur.item)
	}
	for _, item := range items {
		fn(item)
	}
}
