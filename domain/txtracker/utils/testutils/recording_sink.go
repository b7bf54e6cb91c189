package testutils

import (
	"fmt"

	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

// NotificationKind tells settled and done notifications apart
type NotificationKind string

// Notification kinds
const (
	Settled NotificationKind = "settled"
	Done    NotificationKind = "done"
)

// Notification is a single recorded sink call
type Notification struct {
	Kind        NotificationKind
	Transaction string
	Block       *externalapi.DomainHash
	Type        externalapi.SettlementType
	Successful  bool
}

func (n Notification) String() string {
	return fmt.Sprintf("%s(%s, %s, successful: %t, block: %s)", n.Kind, n.Transaction, n.Type, n.Successful, n.Block)
}

// RecordingSink is a model.NotificationSink that records every call in order
type RecordingSink struct {
	Notifications []Notification
}

// NewRecordingSink returns an empty RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// OnTxSettled implements model.NotificationSink
func (s *RecordingSink) OnTxSettled(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	s.record(Settled, tx, status)
}

// OnTxDone implements model.NotificationSink
func (s *RecordingSink) OnTxDone(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	s.record(Done, tx, status)
}

func (s *RecordingSink) record(kind NotificationKind, tx *externalapi.DomainTransaction,
	status *externalapi.SettlementStatus) {

	s.Notifications = append(s.Notifications, Notification{
		Kind:        kind,
		Transaction: string(tx.Value),
		Block:       status.BlockHash,
		Type:        status.Type,
		Successful:  status.Successful,
	})
}

// OfKind returns the recorded notifications of the given kind, in order
func (s *RecordingSink) OfKind(kind NotificationKind) []Notification {
	var notifications []Notification
	for _, notification := range s.Notifications {
		if notification.Kind == kind {
			notifications = append(notifications, notification)
		}
	}
	return notifications
}

// Reset forgets all recorded notifications
func (s *RecordingSink) Reset() {
	s.Notifications = nil
}

// SettledValid builds the expected notification of a valid settlement
func SettledValid(tx string, block *externalapi.DomainHash, successful bool) Notification {
	return Notification{Kind: Settled, Transaction: tx, Block: block, Type: externalapi.SettlementTypeValid, Successful: successful}
}

// SettledInvalid builds the expected notification of an invalid settlement
func SettledInvalid(tx string, block *externalapi.DomainHash) Notification {
	return Notification{Kind: Settled, Transaction: tx, Block: block, Type: externalapi.SettlementTypeInvalid}
}

// DoneValid builds the expected done notification
func DoneValid(tx string, block *externalapi.DomainHash, successful bool) Notification {
	return Notification{Kind: Done, Transaction: tx, Block: block, Type: externalapi.SettlementTypeValid, Successful: successful}
}

// NotificationsEqual returns whether both notification logs are identical
func NotificationsEqual(a, b []Notification) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Transaction != b[i].Transaction || !a[i].Block.Equal(b[i].Block) ||
			a[i].Type != b[i].Type || a[i].Successful != b[i].Successful {
			return false
		}
	}
	return true
}
