package registry

import "github.com/zjrosen/mibstore/internal/container"

// entry is one catalog item: an owned name and a borrowed factory.
type entry struct {
	name    string
	factory container.Factory
}

func (e *entry) Name() string {
	return e.name
}

func (e *entry) release() {
	e.name = ""
	e.factory = nil
}

// catalogStore releases entries as they leave the catalog.
type catalogStore struct {
	container.Store
}

func (s *catalogStore) Remove(key any) error {
	item, _ := s.Store.Find(key)
	if err := s.Store.Remove(key); err != nil {
		return err
	}
	if e, ok := item.(*entry); ok {
		e.release()
	}
	return nil
}

func (s *catalogStore) Free() error {
	s.Store.ForEach(func(item any) {
		if e, ok := item.(*entry); ok {
			e.release()
		}
	})
	return s.Store.Free()
}
