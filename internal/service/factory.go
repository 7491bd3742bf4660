package service

import (
	"chamahub.app/core/internal/queue"
	"chamahub.app/core/internal/store"
)

type Services struct {
	stores     *store.Stores
	txRunner   TxRunner
	dispatcher queue.Producer
}

func NewServices(stores *store.Stores, txRunner TxRunner, dispatcher queue.Producer) *Services {
	return &Services{
		stores:     stores,
		txRunner:   txRunner,
		dispatcher: dispatcher,
	}
}

func (s *Services) Hierarchy() HierarchyService {
	return NewHierarchyService(s.stores, s.txRunner)
}

func (s *Services) Scheduler() SchedulerService {
	return NewSchedulerService(s.stores, s.txRunner)
}

func (s *Services) Reconciler() ReconcilerService {
	return NewReconcilerService(s.stores, s.dispatcher)
}
