package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/pkg/logging"
)

// FollowUpConfig holds the practice-side notification target.
type FollowUpConfig struct {
	NotificationEmail string
}

// FollowUpNotifier tells the practice about requests that bypass slot
// search — end-of-life care or same-day/24-48h urgency — so a scheduler can
// call the client back.
type FollowUpNotifier struct {
	sender EmailSender
	config FollowUpConfig
	logger *logging.Logger
}

func NewFollowUpNotifier(sender EmailSender, cfg FollowUpConfig, logger *logging.Logger) *FollowUpNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &FollowUpNotifier{sender: sender, config: cfg, logger: logger}
}

// Notify sends the follow-up summary for a manually scheduled request. A
// missing target or sender is logged, not an error: notification is best
// effort and never blocks the submission.
func (n *FollowUpNotifier) Notify(ctx context.Context, req *intake.AppointmentRequest) error {
	if !req.ManualSchedulingRequired {
		return nil
	}
	if n.sender == nil || n.config.NotificationEmail == "" {
		n.logger.Warn("manual follow-up requested but no notification channel configured",
			"entry_flow", req.EntryFlow,
			"reason", req.SchedulingSkippedReason,
		)
		return nil
	}

	msg := EmailMessage{
		To:      n.config.NotificationEmail,
		Subject: followUpSubject(req),
		Body:    FormatFollowUpSummary(req),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send manual follow-up notification",
			"error", err,
			"entry_flow", req.EntryFlow,
		)
		return fmt.Errorf("notify: manual follow-up: %w", err)
	}
	n.logger.Info("manual follow-up notification sent",
		"entry_flow", req.EntryFlow,
		"reason", req.SchedulingSkippedReason,
	)
	return nil
}

func followUpSubject(req *intake.AppointmentRequest) string {
	name := strings.TrimSpace(req.Contact.FirstName + " " + req.Contact.LastName)
	if req.SchedulingSkippedReason == intake.SkipReasonEndOfLife {
		return fmt.Sprintf("End-of-life care request — %s", name)
	}
	return fmt.Sprintf("Urgent scheduling callback — %s", name)
}

// FormatFollowUpSummary generates the plain-text summary the scheduler works
// from.
func FormatFollowUpSummary(req *intake.AppointmentRequest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Client: %s %s\n", req.Contact.FirstName, req.Contact.LastName))
	b.WriteString(fmt.Sprintf("Phone: %s\n", valueOrNA(req.Contact.Phone)))
	b.WriteString(fmt.Sprintf("Email: %s\n", valueOrNA(req.Contact.Email)))
	b.WriteString(fmt.Sprintf("Address: %s, %s, %s %s\n",
		req.PhysicalAddress.Line1, req.PhysicalAddress.City,
		req.PhysicalAddress.State, req.PhysicalAddress.PostalCode))
	b.WriteString(fmt.Sprintf("Urgency: %s\n", req.Urgency))
	b.WriteString(fmt.Sprintf("Reason: %s\n", req.SchedulingSkippedReason))

	switch {
	case req.PetInfoText != "":
		b.WriteString(fmt.Sprintf("Animals: %s\n", req.PetInfoText))
	case len(req.NewClientPets) > 0 || len(req.AllPets) > 0:
		for _, a := range append(req.AllPets, req.NewClientPets...) {
			line := fmt.Sprintf("Animal: %s", valueOrNA(a.Name))
			if a.Species.Name != "" {
				line += fmt.Sprintf(" (%s)", a.Species.Name)
			}
			if need, ok := req.PetSpecificData[a.PetID]; ok {
				line += fmt.Sprintf(" — %s", need.Category)
				if need.Details != "" {
					line += ": " + need.Details
				}
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("Submitted: %s\n", req.SubmittedAt.Format("Mon Jan 2 15:04 MST")))
	return b.String()
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
