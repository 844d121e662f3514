package service

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Roster answers the membership questions verification needs.
type Roster interface {
	IsOrganizer(ctx context.Context, eventID, userID string) (bool, error)
	IsJudgeAssigned(ctx context.Context, eventID, judgeID string) (bool, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
}

// RosterVerifier verifies users against the event roster: organizers,
// assigned judges and registered participants count as verified actors.
type RosterVerifier struct {
	roster Roster
}

// NewRosterVerifier creates a verifier backed by the given roster.
func NewRosterVerifier(roster Roster) *RosterVerifier {
	return &RosterVerifier{roster: roster}
}

// Verify reports whether (event, user) is a verified actor and with
// which role. Role precedence: organizer, judge, participant.
func (v *RosterVerifier) Verify(ctx context.Context, eventID, userID string) (model.Verification, error) {
	if ok, err := v.roster.IsOrganizer(ctx, eventID, userID); err != nil {
		return model.Verification{}, err
	} else if ok {
		return model.Verification{Verified: true, Role: model.RoleOrganizer}, nil
	}

	if ok, err := v.roster.IsJudgeAssigned(ctx, eventID, userID); err != nil {
		return model.Verification{}, err
	} else if ok {
		return model.Verification{Verified: true, Role: model.RoleJudge}, nil
	}

	if ok, err := v.roster.IsParticipant(ctx, eventID, userID); err != nil {
		return model.Verification{}, err
	} else if ok {
		return model.Verification{Verified: true, Role: model.RoleParticipant}, nil
	}

	return model.Verification{Verified: false, Role: model.RoleNone}, nil
}
