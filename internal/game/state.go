package game

import (
	"encoding/json"
	"fmt"
)

// StateVersion is the current schema version of the battle state
// document. Bump it whenever the document shape changes so stored
// battles can be migrated in place on load.
const StateVersion = 1

// ParticipantKind tags a combatant inside the battle document.
type ParticipantKind string

const (
	ParticipantCard    ParticipantKind = "card"
	ParticipantMonster ParticipantKind = "monster"
)

// Participant is one combatant's snapshot inside a battle. Card
// participants are copies of the owning user's deck cards taken when the
// battle starts (copy-on-start: damage here never touches the persisted
// UserCard). HP is floored at zero; a participant at zero HP is marked
// Defeated and removed from target selection.
type Participant struct {
	ID         int             `json:"id"` // position in the turn order, fixed at start
	Kind       ParticipantKind `json:"kind"`
	CardID     uint            `json:"card_id,omitempty"` // source UserCard (card kind only)
	Name       string          `json:"name"`
	MaxHP      int             `json:"max_hp"`
	CurrentHP  int             `json:"current_hp"`
	Attack     int             `json:"attack"`
	SpecialTag string          `json:"special_tag,omitempty"` // monster kind only
	Defeated   bool            `json:"defeated"`
}

// BattleState is the versioned aggregate document persisted in the
// battle row's `state` column. Turn order is fixed when the battle
// starts (cards in deck order, monster last) and never reordered.
type BattleState struct {
	Version        int           `json:"version"`
	Participants   []Participant `json:"participants"`
	RewardsGranted bool          `json:"rewards_granted"`
	StarsAwarded   int           `json:"stars_awarded"`
	CardsLost      int           `json:"cards_lost"`
	LastRoundLog   []string      `json:"last_round_log"`
}

// EncodeState serializes the decoded state document into the row column.
func (b *Battle) EncodeState() error {
	if b.State == nil {
		return fmt.Errorf("battle %s has no state document", b.PublicID)
	}
	b.State.Version = StateVersion
	raw, err := json.Marshal(b.State)
	if err != nil {
		return err
	}
	b.StateJSON = raw
	return nil
}

// DecodeState parses the stored column into the State field. Unknown
// future versions are rejected rather than half-read.
func (b *Battle) DecodeState() error {
	if len(b.StateJSON) == 0 {
		return fmt.Errorf("battle %s has empty state", b.PublicID)
	}
	var st BattleState
	if err := json.Unmarshal(b.StateJSON, &st); err != nil {
		return err
	}
	if st.Version > StateVersion {
		return fmt.Errorf("battle %s state version %d is newer than supported %d", b.PublicID, st.Version, StateVersion)
	}
	b.State = &st
	return nil
}

// Side returns the participants of the given kind, preserving turn order.
func (s *BattleState) Side(kind ParticipantKind) []*Participant {
	out := make([]*Participant, 0, len(s.Participants))
	for i := range s.Participants {
		if s.Participants[i].Kind == kind {
			out = append(out, &s.Participants[i])
		}
	}
	return out
}

// SideDefeated reports whether every participant of the given kind is down.
func (s *BattleState) SideDefeated(kind ParticipantKind) bool {
	any := false
	for i := range s.Participants {
		if s.Participants[i].Kind != kind {
			continue
		}
		any = true
		if !s.Participants[i].Defeated {
			return false
		}
	}
	return any
}

// ByID returns the participant with the given id, or nil.
func (s *BattleState) ByID(id int) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}
