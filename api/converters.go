package api

import (
	"stoneTracker/services/collection"
	"stoneTracker/services/roster"
	"stoneTracker/services/stone"
	"stoneTracker/services/user"
	"stoneTracker/utils"
)

func TransformStone(s stone.Stone) Stone {
	return Stone{
		Id:           s.ID,
		Name:         s.Name,
		Color:        s.Color,
		Power:        s.Power,
		AcquiredFrom: utils.NonEmpty(s.AcquiredFrom),
	}
}

func TransformStones(stones []stone.Stone) []Stone {
	result := make([]Stone, 0, len(stones))
	for _, s := range stones {
		result = append(result, TransformStone(s))
	}
	return result
}

func TransformUser(u user.User) UserRecord {
	return UserRecord{
		Id:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Stones:     TransformStones(u.Stones),
		CreatedAt:  u.CreatedAt,
		StoneCount: u.Count(),
		Progress:   u.Progress(),
		Complete:   u.IsComplete(),
	}
}

func TransformUsers(users []user.User) []UserRecord {
	result := make([]UserRecord, 0, len(users))
	for _, u := range users {
		result = append(result, TransformUser(u))
	}
	return result
}

func TransformSummary(s collection.Summary) Summary {
	return Summary{
		Participants:        s.Participants,
		CompleteCollections: s.CompleteCollections,
		StonesCollected:     s.StonesCollected,
		StoneCapacity:       s.StoneCapacity,
	}
}

func TransformSnapshot(snap roster.Snapshot) RosterResponse {
	result := RosterResponse{
		State:   RosterResponseState(snap.State.String()),
		Version: int(snap.Version),
		Summary: TransformSummary(collection.Summarize(snap.Users)),
		Users:   TransformUsers(snap.Users),
	}
	if snap.Err != nil {
		result.Error = utils.ToPointer(snap.Err.Error())
	}
	if !snap.UpdatedAt.IsZero() {
		result.UpdatedAt = utils.ToPointer(snap.UpdatedAt)
	}
	return result
}

// TransformRank describes where u stands in the roster.
func TransformRank(u user.User, roster []user.User) RankResponse {
	rank, ok := collection.Rank(u, roster)
	result := RankResponse{
		Known: ok,
		Label: collection.RankLabel(rank, ok, u.IsComplete(), len(roster)),
		Total: len(roster),
	}
	if ok {
		result.Rank = utils.ToPointer(rank)
	}
	return result
}
