package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a submitted request.
type Status string

// Request statuses as persisted by the backend. A request starts pending and
// moves exactly once to approved or rejected.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a submitted data access request as returned by the backend
// detail endpoint. After creation only status transitions mutate it.
type Request struct {
	UUID             uuid.UUID    `json:"request_uuid"`
	Title            string       `json:"title"`
	Justification    string       `json:"justification"`
	Workspace        Workspace    `json:"workspace"`
	Comment          *string      `json:"comment"`
	TablesAndColumns []TableEntry `json:"tables_and_columns"`
	Status           Status       `json:"status"`
	CreatedOn        time.Time    `json:"created_on"`
	Creator          User         `json:"creator"`
	ReviewerDecision *string      `json:"reviewer_decision"`
	Reviewer         *User        `json:"reviewer"`
	ReviewedOn       *time.Time   `json:"reviewed_on"`
	PipelineLink     *string      `json:"adf_link"`
}

// Review is a data manager's decision on a pending request. Confirmed is the
// explicit "all information above is correct" acknowledgement; the decision
// is never applied without it.
type Review struct {
	Status    Status
	Decision  string
	Confirmed bool
}

// Validate checks the review preconditions and reports every missing one.
func (r Review) Validate() error {
	var problems []string
	if r.Decision == "" {
		problems = append(problems, "the decision justification has to be filled")
	}
	if r.Status != StatusApproved && r.Status != StatusRejected {
		problems = append(problems, "the decision (approve or reject) has to be selected")
	}
	if !r.Confirmed {
		problems = append(problems, "the confirmation checkbox has to be ticked")
	}
	return validationError(problems)
}

// ApplyReview moves a pending request to approved or rejected. The review
// must carry a decision selection, a non-empty justification and the
// confirmation flag; all violations are reported together as a
// ValidationError and nothing is applied.
func (r *Request) ApplyReview(review Review, reviewer User, now time.Time) error {
	if r.Status != StatusPending {
		return &ValidationError{Problems: []string{
			fmt.Sprintf("request is %s and can no longer be reviewed", r.Status),
		}}
	}
	if err := review.Validate(); err != nil {
		return err
	}

	decision := review.Decision
	r.Status = review.Status
	r.ReviewerDecision = &decision
	r.Reviewer = &reviewer
	r.ReviewedOn = &now
	return nil
}

// TriggerProvisioning runs the provisioning pipeline for an approved request
// and attaches the resulting pipeline link. The trigger is idempotent: when
// a link is already attached it is returned as-is and run is not called
// again.
func (r *Request) TriggerProvisioning(run func() (string, error)) (string, error) {
	if r.Status != StatusApproved {
		return "", &ValidationError{Problems: []string{
			fmt.Sprintf("provisioning can only be triggered for an approved request, not %s", r.Status),
		}}
	}
	if r.PipelineLink != nil {
		return *r.PipelineLink, nil
	}

	link, err := run()
	if err != nil {
		return "", fmt.Errorf("failed to trigger provisioning pipeline: %w", err)
	}
	r.PipelineLink = &link
	return link, nil
}

// CanDelete reports whether the request may still be deleted. Only pending
// requests can.
func (r *Request) CanDelete() error {
	if r.Status != StatusPending {
		return &ValidationError{Problems: []string{
			fmt.Sprintf("only a pending request can be deleted, this one is %s", r.Status),
		}}
	}
	return nil
}
