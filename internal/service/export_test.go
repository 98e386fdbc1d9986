package service

// LockDraft holds the lock of an open draft until the returned func is called.
func (s *DraftService) LockDraft(userID, assignedID string) func() {
	s.mu.Lock()
	d := s.drafts[draftKey{userID, assignedID}]
	s.mu.Unlock()
	d.mu.Lock()
	return d.mu.Unlock
}
