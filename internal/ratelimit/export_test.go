package ratelimit

// GetRPM returns the configured requests-per-minute limit (for testing).
func (l *TokenBucketLimiter) GetRPM() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rpm
}
