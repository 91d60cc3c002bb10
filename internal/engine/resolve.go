package engine

import (
	"math"
	"strconv"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
)

// --- Round context and helpers ----------------------------------------

type roundContext struct {
	b       *game.Battle
	st      *game.BattleState
	summary []string
}

func newRoundContext(b *game.Battle) *roundContext {
	return &roundContext{b: b, st: b.State, summary: make([]string, 0, 16)}
}

func (rc *roundContext) add(msg string) { rc.summary = append(rc.summary, msg) }

// attackWithModifiers applies the monster special ability tags that
// affect outgoing damage.
func attackWithModifiers(p *game.Participant) int {
	a := p.Attack
	if p.Kind == game.ParticipantMonster && p.SpecialTag == game.SpecialEnrage && p.CurrentHP*2 < p.MaxHP {
		a = int(float64(a) * 1.5)
	}
	if a < 0 {
		a = 0
	}
	return a
}

// damageTaken applies the target-side ability tags to incoming damage.
// Damage is always at least 1.
func damageTaken(target *game.Participant, raw int) int {
	dmg := raw
	if target.Kind == game.ParticipantMonster && target.SpecialTag == game.SpecialThickHide {
		dmg = int(math.Floor(float64(dmg) * 0.75))
	}
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// opposingKind returns the side an attacker targets.
func opposingKind(k game.ParticipantKind) game.ParticipantKind {
	if k == game.ParticipantCard {
		return game.ParticipantMonster
	}
	return game.ParticipantCard
}

// pickTarget selects the lowest-HP non-defeated participant on the
// opposing side. Ties break toward the earlier turn-order slot so the
// resolution stays deterministic.
func (rc *roundContext) pickTarget(attacker *game.Participant) *game.Participant {
	var best *game.Participant
	for _, c := range rc.st.Side(opposingKind(attacker.Kind)) {
		if c.Defeated {
			continue
		}
		if best == nil || c.CurrentHP < best.CurrentHP {
			best = c
		}
	}
	return best
}

// --- Round resolution ---------------------------------------------------

// AdvanceRound resolves one full round of the battle: every
// non-defeated participant attacks once, in the turn order fixed at
// battle start. Card attackers hit the player-chosen target when
// chosenTargetID names a living monster-side participant; otherwise
// (and for the monster) targeting is lowest-HP-first. HP floors at
// zero; a participant at zero is marked defeated and removed from
// target selection. The round counter increments and the battle
// transitions to won/lost when a whole side is down.
//
// Advancing a terminal battle fails with an invalid-state error and
// mutates nothing.
func AdvanceRound(b *game.Battle, chosenTargetID int) error {
	if b.Status.Terminal() {
		return apperr.InvalidState("battle is already finished")
	}
	if b.State == nil {
		return apperr.Internal("battle state not decoded", nil)
	}
	rc := newRoundContext(b)

	for i := range rc.st.Participants {
		attacker := &rc.st.Participants[i]
		if attacker.Defeated {
			continue
		}
		// The side may already be wiped out mid-round.
		if rc.st.SideDefeated(opposingKind(attacker.Kind)) {
			break
		}

		target := rc.chooseFor(attacker, chosenTargetID)
		if target == nil {
			continue
		}

		atk := attackWithModifiers(attacker)
		dmg := damageTaken(target, atk)
		target.CurrentHP -= dmg
		if target.CurrentHP <= 0 {
			target.CurrentHP = 0
			target.Defeated = true
			if target.Kind == game.ParticipantCard {
				rc.st.CardsLost++
			}
			rc.add(attacker.Name + " hits " + target.Name + " for " + strconv.Itoa(dmg) + ". " + target.Name + " is defeated!")
		} else {
			rc.add(attacker.Name + " hits " + target.Name + " for " + strconv.Itoa(dmg) + " (" + strconv.Itoa(target.CurrentHP) + "/" + strconv.Itoa(target.MaxHP) + " HP left)")
		}
	}

	rc.finalizeRound()
	return nil
}

// chooseFor resolves the attack target for one participant. The
// player-chosen target id applies only to card attackers and only while
// that participant is alive; it falls back to lowest-HP-first otherwise.
func (rc *roundContext) chooseFor(attacker *game.Participant, chosenTargetID int) *game.Participant {
	if attacker.Kind == game.ParticipantCard && chosenTargetID != 0 {
		if t := rc.st.ByID(chosenTargetID); t != nil && !t.Defeated && t.Kind == game.ParticipantMonster {
			return t
		}
	}
	return rc.pickTarget(attacker)
}

// finalizeRound evaluates victory conditions and either prepares the
// next round or moves the battle to a terminal state.
func (rc *roundContext) finalizeRound() {
	rc.st.LastRoundLog = rc.summary

	switch {
	case rc.st.SideDefeated(game.ParticipantMonster):
		rc.b.Status = game.BattleWon
	case rc.st.SideDefeated(game.ParticipantCard):
		rc.b.Status = game.BattleLost
	default:
		rc.b.CurrentRound++
	}
}
