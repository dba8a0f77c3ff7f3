// Package workflow holds the moderation state machine for users, institutes
// and reviews, and the follow-up machine for enquiries.
package workflow

import (
	"fmt"
	"strings"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// EntityType names a moderated entity kind.
type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityInstitute EntityType = "institute"
	EntityReview    EntityType = "review"
)

// ParseEntityType accepts singular or plural forms ("institute", "institutes").
func ParseEntityType(s string) (EntityType, error) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch EntityType(v) {
	case EntityUser, EntityInstitute, EntityReview:
		return EntityType(v), nil
	}
	return "", fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, s)
}

// Label is the capitalised name used in status messages.
func (e EntityType) Label() string {
	switch e {
	case EntityUser:
		return "User"
	case EntityInstitute:
		return "Institute"
	case EntityReview:
		return "Review"
	}
	return string(e)
}

// Decision is an admin's moderation verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts "approve"/"reject" and the status spellings
// "approved"/"rejected", case-insensitively.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidDecision, s)
}

// Target is the status a decision moves an entity to.
func (d Decision) Target() model.Status {
	if d == DecisionReject {
		return model.StatusRejected
	}
	return model.StatusApproved
}

// Cascade is a secondary write triggered by a primary transition.
type Cascade string

const (
	// CascadeOwnerStatus sets the owning user's status to the plan's target.
	CascadeOwnerStatus Cascade = "owner_status"
	// CascadeRecomputeRating recomputes the institute's aggregate rating.
	CascadeRecomputeRating Cascade = "recompute_rating"
)

// Plan describes the writes a legal transition requires.
type Plan struct {
	Entity   EntityType
	Decision Decision
	From     model.Status
	To       model.Status
	// Active is the review visibility flag to write; nil for other entities.
	Active   *bool
	Cascades []Cascade
}

// Has reports whether the plan includes cascade c.
func (p Plan) Has(c Cascade) bool {
	for _, existing := range p.Cascades {
		if existing == c {
			return true
		}
	}
	return false
}

// Transactional reports whether the plan touches more than one row.
func (p Plan) Transactional() bool {
	return len(p.Cascades) > 0
}

// Message is the human-readable outcome, e.g. "Institute approved".
func (p Plan) Message() string {
	return fmt.Sprintf("%s %s", p.Entity.Label(), p.To)
}

var transitions = map[model.Status][]model.Status{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusApproved: {},
	model.StatusRejected: {},
}

// CanTransition reports whether from → to is a legal moderation transition.
func CanTransition(from, to model.Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a moderation request and returns the writes it needs.
// Checks run in order: actor role, decision, current status.
func Transition(entity EntityType, current model.Status, decision string, actorRole model.Role) (Plan, error) {
	if actorRole != model.RoleAdmin {
		return Plan{}, fmt.Errorf("%w: moderation requires the admin role", apperrors.ErrForbidden)
	}
	d, err := ParseDecision(decision)
	if err != nil {
		return Plan{}, err
	}
	if !current.Valid() {
		return Plan{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, current)
	}
	to := d.Target()
	if !CanTransition(current, to) {
		return Plan{}, fmt.Errorf("%w: %s is already %s", apperrors.ErrAlreadyDecided, strings.ToLower(entity.Label()), current)
	}

	plan := Plan{Entity: entity, Decision: d, From: current, To: to}
	switch entity {
	case EntityInstitute:
		plan.Cascades = []Cascade{CascadeOwnerStatus}
	case EntityReview:
		active := d == DecisionApprove
		plan.Active = &active
		plan.Cascades = []Cascade{CascadeRecomputeRating}
	case EntityUser:
	default:
		return Plan{}, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, entity)
	}
	return plan, nil
}

var enquiryTransitions = map[model.EnquiryStatus][]model.EnquiryStatus{
	model.EnquiryStatusNew:       {model.EnquiryStatusContacted, model.EnquiryStatusResolved},
	model.EnquiryStatusContacted: {model.EnquiryStatusResolved},
	model.EnquiryStatusResolved:  {},
}

// CanAdvanceEnquiry reports whether an enquiry may move from → to. The
// follow-up machine only moves forward.
func CanAdvanceEnquiry(from, to model.EnquiryStatus) bool {
	for _, allowed := range enquiryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseEnquiryStatus maps the accepted spellings onto the canonical states.
func ParseEnquiryStatus(s string) (model.EnquiryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "pending":
		return model.EnquiryStatusNew, nil
	case "contacted", "in-progress", "in_progress":
		return model.EnquiryStatusContacted, nil
	case "resolved", "completed", "closed":
		return model.EnquiryStatusResolved, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, s)
}
