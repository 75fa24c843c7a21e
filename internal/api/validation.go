package api

import (
	"fmt"

	"github.com/emberhold/fortress-replay-go/internal/verify"
)

// Loadout presets the service currently issues. The preset shapes the
// config that gets hashed into the run token, so only server-defined
// presets exist; free-form loadouts would let a client pick tuning the
// verifier does not replay with.
const defaultLoadout = "vanguard"

// ValidateStartRunRequest validates a start request.
func ValidateStartRunRequest(req *StartRunRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if len(req.UserID) > 128 {
		return fmt.Errorf("userId too long (max 128 characters)")
	}
	if req.CommanderLevel < 0 || req.CommanderLevel > 100 {
		return fmt.Errorf("commanderLevel must be in [0, 100]")
	}
	if req.Loadout != "" && req.Loadout != defaultLoadout {
		return fmt.Errorf("unknown loadout preset '%s'", req.Loadout)
	}
	return nil
}

// ValidateFinishRunRequest validates a finish request. Only transport
// shape is checked here: the verifier owns every semantic check and
// its rejection taxonomy, including the payload bounds, so a
// finish request with an oversized log still gets a classified
// verdict rather than a bare 400.
func ValidateFinishRunRequest(req *FinishRunRequest) error {
	if req.RunToken == "" {
		return fmt.Errorf("runToken is required")
	}
	return nil
}

// submissionFrom converts the API request to a verifier submission.
func submissionFrom(req *FinishRunRequest) verify.Submission {
	return verify.Submission{
		RunToken:       req.RunToken,
		Events:         req.Events,
		Checkpoints:    req.Checkpoints,
		FinalHash:      req.FinalHash,
		ClaimedScore:   req.Score,
		ClaimedSummary: req.Summary,
	}
}
