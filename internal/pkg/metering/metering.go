// Package metering reports billable pay-as-you-go sessions to the billing
// provider and mirrors each report as a UsageRecord row.
package metering

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/billing/meterevent"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
)

// InitStripe wires the Stripe API key. Call once at startup; a missing key
// leaves metering in record-only mode.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// Meter reports usage events exactly once per billable session.
type Meter struct {
	records   repository.UsageRecordRepository
	meterName string
}

// NewMeter creates a meter writing records through the given repository.
func NewMeter(records repository.UsageRecordRepository, meterName string) *Meter {
	return &Meter{records: records, meterName: meterName}
}

// ReportSession sends one metered usage event for a newly created billable
// session and inserts the matching UsageRecord. Repeat calls for the same
// session are no-ops. A provider failure is logged and recorded as failed;
// it never aborts the inbound event's response.
func (m *Meter) ReportSession(user *models.User, session *models.HelpSession) {
	billed, err := m.records.ExistsForSession(session.ID)
	if err != nil {
		log.Errorf("metering: usage record lookup for session %d failed: %v", session.ID, err)
		return
	}
	if billed {
		return
	}

	record := &models.UsageRecord{
		UserID:    user.ID,
		SessionID: session.ID,
		Status:    models.UsageStatusReported,
	}

	if stripe.Key == "" || user.BillingCustomerID == "" {
		log.Warnf("metering: no billing identity for user %d, recording session %d without report",
			user.ID, session.ID)
		record.Status = models.UsageStatusFailed
	} else {
		event, err := meterevent.New(&stripe.BillingMeterEventParams{
			EventName: stripe.String(m.meterName),
			Payload: map[string]string{
				"stripe_customer_id": user.BillingCustomerID,
				"value":              "1",
			},
		})
		if err != nil {
			log.Errorf("metering: usage report for session %d failed: %v", session.ID, err)
			record.Status = models.UsageStatusFailed
		} else {
			record.ProviderEventID = event.Identifier
		}
	}

	if err := m.records.Create(record); err != nil {
		log.Errorf("metering: usage record insert for session %d failed: %v", session.ID, err)
	}
}
