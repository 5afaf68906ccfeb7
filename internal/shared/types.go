package shared

// Task types and queue names for the asynq worker.
const (
	TypeSendRecallNotice = "compliance:send_recall_notice"

	QueueCompliance = "compliance"
)

// RecallNoticePayload is the unit of recall fan-out: one task per distinct
// customer in the batch's dispatch trail. The committed RecallRecord is the
// idempotency guard; a retried HTTP call never re-enqueues these.
type RecallNoticePayload struct {
	BatchNumber string `json:"batch_number"`
	ProductName string `json:"product_name"`
	Customer    string `json:"customer"`
}
