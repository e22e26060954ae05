package writestage

// LeaderAtFunc resolves the scheduled leader at a given height, mirroring
// clusterstate.State.ScheduledLeader's signature so callers can pass it
// directly.
type LeaderAtFunc func(height uint64) (Pubkey, bool)

// FindLeaderRotationIndex returns the prefix length k (0 <= k <= n) of a
// batch of n entries that self is entitled to author, starting at height,
// given a fixed rotation interval and leader oracle. rotated reports
// whether a rotation boundary not authored by self was encountered at or
// before position k (so the caller should treat this as its last batch).
//
// Walks forward from i=0, checking only the positions that land on a
// rotation boundary ((height+i) % interval == 0); between boundaries it
// jumps straight to the next one instead of checking every position.
func FindLeaderRotationIndex(height uint64, interval uint64, n int, self Pubkey, leaderAt LeaderAtFunc) (k int, rotated bool) {
	if interval == 0 {
		return n, false
	}

	i := 0
	for i < n {
		if (height+uint64(i))%interval == 0 {
			leader, ok := leaderAt(height + uint64(i))
			if !ok || leader != self {
				return i, true
			}
		}
		step := int(interval - (height+uint64(i))%interval)
		if n-i < step {
			step = n - i
		}
		i += step
	}

	// i == n: the batch exactly reaches a rotation boundary. Check it too,
	// so the caller can exit on its very next iteration instead of making
	// one more doomed attempt.
	if (height+uint64(i))%interval == 0 {
		if leader, ok := leaderAt(height + uint64(i)); !ok || leader != self {
			return i, true
		}
	}
	return i, false
}
