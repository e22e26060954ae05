package clusterstate

import "testing"

func TestScheduledLeaderRoundRobin(t *testing.T) {
	a, b := Pubkey{1}, Pubkey{2}
	st, err := New(a, 10, []Pubkey{a, b})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		height uint64
		want   Pubkey
	}{
		{0, a}, {9, a}, {10, b}, {19, b}, {20, a},
	}
	for _, c := range cases {
		got, ok := st.ScheduledLeader(c.height)
		if !ok || got != c.want {
			t.Errorf("height %d: got %x ok=%v, want %x", c.height, got, ok, c.want)
		}
	}
}

func TestScheduledLeaderEmptyValidators(t *testing.T) {
	st, err := New(Pubkey{1}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.ScheduledLeader(0); ok {
		t.Error("want no scheduled leader with empty validator set")
	}
}

func TestInsertAndReadVotes(t *testing.T) {
	st, _ := New(Pubkey{1}, 10, []Pubkey{{1}})
	v1 := Vote{Validator: Pubkey{1}, Height: 1}
	v2 := Vote{Validator: Pubkey{1}, Height: 2}
	st.InsertVotes([]Vote{v1})
	st.InsertVotes([]Vote{v2})

	got := st.Votes()
	if len(got) != 2 || got[0] != v1 || got[1] != v2 {
		t.Errorf("got %+v", got)
	}
}

func TestLeaderRotationIntervalReadOnce(t *testing.T) {
	st, _ := New(Pubkey{1}, 7, []Pubkey{{1}})
	if got := st.LeaderRotationInterval(); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}
