package app

import (
	"fmt"
	"io"

	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

// notificationPrinter is a model.NotificationSink that writes every
// notification as a line of text, naming blocks the way the scenario does
type notificationPrinter struct {
	writer     io.Writer
	blockNames map[externalapi.DomainHash]string
	enabled    bool

	settledCount int
	doneCount    int
}

func newNotificationPrinter(writer io.Writer, blockNames map[externalapi.DomainHash]string,
	enabled bool) *notificationPrinter {

	return &notificationPrinter{
		writer:     writer,
		blockNames: blockNames,
		enabled:    enabled,
	}
}

func (p *notificationPrinter) OnTxSettled(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	p.settledCount++
	p.print("settled", tx, status)
}

func (p *notificationPrinter) OnTxDone(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	p.doneCount++
	p.print("done", tx, status)
}

func (p *notificationPrinter) print(kind string, tx *externalapi.DomainTransaction,
	status *externalapi.SettlementStatus) {

	if !p.enabled {
		return
	}
	outcome := status.Type.String()
	if status.Type == externalapi.SettlementTypeValid {
		if status.Successful {
			outcome += ", successful"
		} else {
			outcome += ", unsuccessful"
		}
	}
	_, err := fmt.Fprintf(p.writer, "%-7s %s in %s (%s)\n", kind, tx, p.blockName(status.BlockHash), outcome)
	if err != nil {
		log.Errorf("Failed printing a %s notification: %s", kind, err)
	}
}

func (p *notificationPrinter) blockName(blockHash *externalapi.DomainHash) string {
	if blockHash == nil {
		return "<none>"
	}
	if name, ok := p.blockNames[*blockHash]; ok {
		return name
	}
	return blockHash.String()
}
