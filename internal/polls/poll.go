package polls

import (
	"fmt"
	"time"

	"shift_coordination_system/internal/db/models"
)

type Choice int

const (
	ChoiceGoing Choice = iota
	ChoiceNotGoing
)

func (c Choice) String() string {
	switch c {
	case ChoiceGoing:
		return "going"
	case ChoiceNotGoing:
		return "not_going"
	default:
		return fmt.Sprintf("choice(%d)", int(c))
	}
}

// Key identifies the single active poll of a purpose in a chat.
type Key struct {
	ChatID  int64
	Purpose models.PollPurpose
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.ChatID, k.Purpose)
}

// Poll is the vote ledger of one announcement message. Going and NotGoing
// never share a voter.
type Poll struct {
	ChatID         int64
	MessageID      int
	Purpose        models.PollPurpose
	Going          []string
	NotGoing       []string
	Closed         bool
	Source         models.PollSource
	ExtensionCount int
	ExpiresAt      *time.Time
	StartedAt      time.Time
}

func (p *Poll) Key() Key {
	return Key{ChatID: p.ChatID, Purpose: p.Purpose}
}

// Vote moves voterID into the chosen set and reports whether anything changed.
func (p *Poll) Vote(voterID string, choice Choice) bool {
	switch choice {
	case ChoiceGoing:
		var removed bool
		p.NotGoing, removed = without(p.NotGoing, voterID)
		if contains(p.Going, voterID) {
			return removed
		}
		p.Going = append(p.Going, voterID)
		return true
	case ChoiceNotGoing:
		var removed bool
		p.Going, removed = without(p.Going, voterID)
		if contains(p.NotGoing, voterID) {
			return removed
		}
		p.NotGoing = append(p.NotGoing, voterID)
		return true
	default:
		return false
	}
}

func (p *Poll) Voted() int {
	return len(p.Going) + len(p.NotGoing)
}

func (p *Poll) Clone() Poll {
	clone := *p
	clone.Going = append([]string{}, p.Going...)
	clone.NotGoing = append([]string{}, p.NotGoing...)
	if p.ExpiresAt != nil {
		expiresAt := *p.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}
	return clone
}

func contains(voters []string, voterID string) bool {
	for _, voter := range voters {
		if voter == voterID {
			return true
		}
	}
	return false
}

func without(voters []string, voterID string) ([]string, bool) {
	for i, voter := range voters {
		if voter == voterID {
			return append(voters[:i:i], voters[i+1:]...), true
		}
	}
	return voters, false
}
