package metrics

import (
	"strconv"

	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

type instrumentedSink struct {
	sink    model.NotificationSink
	metrics *Metrics
}

// InstrumentSink returns a model.NotificationSink that counts notifications
// before passing them on to sink
func (m *Metrics) InstrumentSink(sink model.NotificationSink) model.NotificationSink {
	return &instrumentedSink{sink: sink, metrics: m}
}

func (s *instrumentedSink) OnTxSettled(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	s.metrics.SettledNotifications.WithLabelValues(status.Type.String()).Inc()
	s.sink.OnTxSettled(tx, status)
}

func (s *instrumentedSink) OnTxDone(tx *externalapi.DomainTransaction, status *externalapi.SettlementStatus) {
	s.metrics.DoneNotifications.WithLabelValues(strconv.FormatBool(status.Successful)).Inc()
	s.sink.OnTxDone(tx, status)
}

type instrumentedProvider struct {
	provider model.ChainDataProvider
	metrics  *Metrics
}

// InstrumentProvider returns a model.ChainDataProvider that counts the
// calls made to provider and the blocks it unpinned
func (m *Metrics) InstrumentProvider(provider model.ChainDataProvider) model.ChainDataProvider {
	return &instrumentedProvider{provider: provider, metrics: m}
}

func (p *instrumentedProvider) GetBody(blockHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	p.metrics.ProviderCalls.WithLabelValues("GetBody").Inc()
	return p.provider.GetBody(blockHash)
}

func (p *instrumentedProvider) IsTxValid(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	p.metrics.ProviderCalls.WithLabelValues("IsTxValid").Inc()
	return p.provider.IsTxValid(blockHash, tx)
}

func (p *instrumentedProvider) IsTxSuccessful(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	p.metrics.ProviderCalls.WithLabelValues("IsTxSuccessful").Inc()
	return p.provider.IsTxSuccessful(blockHash, tx)
}

func (p *instrumentedProvider) Unpin(blockHash *externalapi.DomainHash) error {
	p.metrics.ProviderCalls.WithLabelValues("Unpin").Inc()
	err := p.provider.Unpin(blockHash)
	if err != nil {
		return err
	}
	p.metrics.UnpinnedBlocks.Inc()
	return nil
}
