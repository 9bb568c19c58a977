package store

// SetError records a human-readable error for the UI.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.ui.Error = msg
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ClearError() {
	s.SetError("")
}

// SelectObject selects an object. Selecting an unknown ID clears the
// selection.
func (s *Store) SelectObject(id string) {
	s.mu.Lock()
	if _, ok := s.objects[id]; !ok {
		id = ""
	}
	s.ui.SelectedObjectID = id
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetViewport(v Viewport) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	s.mu.Lock()
	s.ui.Viewport = v
	s.mu.Unlock()
	s.notify()
}

// UI returns a copy of the UI state.
func (s *Store) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// SetConnectionStatus records the channel's lifecycle state. Open marks
// the store connected and clears the last connection error.
func (s *Store) SetConnectionStatus(status ConnStatus) {
	s.mu.Lock()
	s.conn.Status = status
	s.conn.Connected = status == ConnOpen
	if s.conn.Connected {
		s.conn.LastError = ""
	}
	s.mu.Unlock()
	s.notify()
}

// SetConnectionError records the last transport error.
func (s *Store) SetConnectionError(msg string) {
	s.mu.Lock()
	s.conn.LastError = msg
	s.mu.Unlock()
	s.notify()
}

// SetSessionID records the session identity announced by the backend.
func (s *Store) SetSessionID(id string) {
	s.mu.Lock()
	s.conn.SessionID = id
	s.mu.Unlock()
	s.notify()
}

// Connection returns a copy of the connection state.
func (s *Store) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}
