package container

// Comparer orders two items. Container implements it and forwards to the
// comparator installed at call time.
type Comparer interface {
	Compare(lhs, rhs any) int
}

// Visitor is called once per item by ForEach.
type Visitor func(item any)

// Store is the operation set every backend implements.
//
// Stores report their own failures with the sentinel errors of this package
// (ErrDuplicate, ErrNotFound) and must iterate over a snapshot in ForEach so
// the visitor may remove or release the visited item.
type Store interface {
	Init(cmp Comparer) error
	Free() error
	Size() int
	Insert(item any) error
	Remove(key any) error
	Find(key any) (any, bool)
	ForEach(fn Visitor)
}

// Seeker is implemented by stores that can return the first item ordered
// strictly after a key without a full scan.
type Seeker interface {
	FindNext(key any) (any, bool)
}

// Unordered is implemented by stores that never consult the comparator.
// Containers around them accept mutations before a comparator is set.
type Unordered interface {
	Unordered()
}
