package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// NotificationSink receives the lifecycle notifications of tracked transactions
type NotificationSink interface {
	// OnTxSettled is called once for every fork a transaction is observed on
	OnTxSettled(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus)

	// OnTxDone is called once per transaction, when its settling block is finalized.
	// status.Type is always SettlementTypeValid.
	OnTxDone(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus)
}
