package scheduler

// Parallelism returns the configured task slot count.
func (s *Scheduler) Parallelism() int {
	return s.parallelism
}

// Pending reports whether a follow-up run is queued.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queued != nil
}
