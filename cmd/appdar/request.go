package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
	"github.com/civic-health-innovation-labs/AppDAR/internal/formatter"
	"github.com/civic-health-innovation-labs/AppDAR/internal/request"
)

var (
	reviewScriptUUID   string
	reviewScriptOutput string

	decideUUID     string
	decideApprove  bool
	decideReject   bool
	decideDecision string
	decideConfirm  bool

	provisionUUID string

	deleteUUID string
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List data access requests",
	RunE:  runRequests,
}

var reviewScriptCmd = &cobra.Command{
	Use:   "review-script",
	Short: "Generate the pyspark review script for a request",
	Long: `Fetches a submitted request and writes the pyspark snippet a data
manager pastes into a workbook to inspect the requested tables, columns and
row filters against the real data before deciding.`,
	RunE: runReviewScript,
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Approve or reject a pending request",
	Long: `Submits a review decision on a pending request. The decision direction
(--approve or --reject), a non-empty justification and the explicit
--confirm acknowledgement are all required; every missing precondition is
reported before anything reaches the backend.`,
	RunE: runDecide,
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Trigger dataset provisioning for an approved request",
	Long: `Triggers the provisioning pipeline for an approved request and prints
the pipeline link. A request that already carries a link is returned as-is
without running the pipeline again.`,
	RunE: runProvision,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a pending request",
	RunE:  runDelete,
}

func init() {
	reviewScriptCmd.Flags().StringVar(&reviewScriptUUID, "request-uuid", "", "UUID of the request (required)")
	reviewScriptCmd.Flags().StringVarP(&reviewScriptOutput, "output", "o", "", "Output file (default: stdout)")
	_ = reviewScriptCmd.MarkFlagRequired("request-uuid")

	decideCmd.Flags().StringVar(&decideUUID, "request-uuid", "", "UUID of the request (required)")
	decideCmd.Flags().BoolVar(&decideApprove, "approve", false, "Approve the request")
	decideCmd.Flags().BoolVar(&decideReject, "reject", false, "Reject the request")
	decideCmd.Flags().StringVar(&decideDecision, "decision", "", "Justification of the decision (required)")
	decideCmd.Flags().BoolVar(&decideConfirm, "confirm", false, "Confirm the reviewed information is correct")
	_ = decideCmd.MarkFlagRequired("request-uuid")

	provisionCmd.Flags().StringVar(&provisionUUID, "request-uuid", "", "UUID of the request (required)")
	_ = provisionCmd.MarkFlagRequired("request-uuid")

	deleteCmd.Flags().StringVar(&deleteUUID, "request-uuid", "", "UUID of the request (required)")
	_ = deleteCmd.MarkFlagRequired("request-uuid")
}

func runRequests(cmd *cobra.Command, args []string) error {
	c, err := backendClient(cmd)
	if err != nil {
		return err
	}
	requests, err := c.ListRequests(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tTITLE\tSTATUS\tCREATED")
	for _, req := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			catalogue.ShortUUID(req.UUID.String()),
			catalogue.ShortDescription(req.Title),
			req.Status,
			req.CreatedOn.Format("2006-01-02"))
	}
	return w.Flush()
}

func parseRequestUUID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid request UUID %q: %w", value, err)
	}
	return id, nil
}

func runReviewScript(cmd *cobra.Command, args []string) error {
	id, err := parseRequestUUID(reviewScriptUUID)
	if err != nil {
		return err
	}

	c, err := backendClient(cmd)
	if err != nil {
		return err
	}
	req, err := c.GetRequest(cmd.Context(), id)
	if err != nil {
		return err
	}

	writer, closeFn, err := openOutput(reviewScriptOutput)
	if err != nil {
		return err
	}
	defer closeFn()

	return formatter.NewReviewScriptFormatter(writer).Format(req.TablesAndColumns)
}

func runDecide(cmd *cobra.Command, args []string) error {
	id, err := parseRequestUUID(decideUUID)
	if err != nil {
		return err
	}
	if decideApprove && decideReject {
		return fmt.Errorf("--approve and --reject are mutually exclusive")
	}

	review := request.Review{
		Decision:  decideDecision,
		Confirmed: decideConfirm,
	}
	switch {
	case decideApprove:
		review.Status = request.StatusApproved
	case decideReject:
		review.Status = request.StatusRejected
	}

	c, err := backendClient(cmd)
	if err != nil {
		return err
	}
	if err := c.SubmitReview(cmd.Context(), id, review); err != nil {
		return err
	}

	fmt.Printf("Request %s %s\n", id, review.Status)
	return nil
}

func runProvision(cmd *cobra.Command, args []string) error {
	id, err := parseRequestUUID(provisionUUID)
	if err != nil {
		return err
	}

	c, err := backendClient(cmd)
	if err != nil {
		return err
	}
	link, err := c.CommitProvisioning(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Println(link)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRequestUUID(deleteUUID)
	if err != nil {
		return err
	}

	c, err := backendClient(cmd)
	if err != nil {
		return err
	}

	// The backend refuses non-pending deletes too; checking here gives the
	// user the reason instead of a bare status code.
	req, err := c.GetRequest(cmd.Context(), id)
	if err != nil {
		return err
	}
	if err := req.CanDelete(); err != nil {
		return err
	}

	if err := c.DeleteRequest(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Request %s deleted\n", id)
	return nil
}
