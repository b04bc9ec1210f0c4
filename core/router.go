package core

// ScreenStack tracks mounted screens, topmost last. Popping a screen closes
// its Scope, which is the unmount.
type ScreenStack struct {
	items []*Scope
}

func (s *ScreenStack) Push(scope *Scope) {
	if scope == nil {
		return
	}
	s.items = append(s.items, scope)
}

func (s *ScreenStack) Pop() *Scope {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	last.Close()
	return last
}

func (s ScreenStack) Top() *Scope {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}

// CloseAll unmounts every screen, top first.
func (s *ScreenStack) CloseAll() {
	for s.Len() > 0 {
		s.Pop()
	}
}
