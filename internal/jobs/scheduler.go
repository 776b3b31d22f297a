// Package jobs runs the background schedule: the nightly reconciliation
// sweep that audits every balance against its ledger sum.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	ledger "kanau.app/kanaupoints/internal/modules/ledger/service"
)

type Scheduler struct {
	cron          *cron.Cron
	ledgerService ledger.LedgerService
	schedule      string
}

// NewScheduler builds the scheduler in UTC so the sweep follows the same
// day boundary as the ledger's daily-limit window.
func NewScheduler(ledgerService ledger.LedgerService, schedule string) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		ledgerService: ledgerService,
		schedule:      schedule,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Info("[CRON] running ledger reconciliation sweep")
		mismatches, err := s.ledgerService.ReconcileAll(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] reconciliation sweep failed")
			return
		}
		if mismatches > 0 {
			log.WithField("mismatches", mismatches).Error("[CRON] ledger inconsistencies found")
		} else {
			log.Info("[CRON] all balances consistent")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("scheduler started (UTC)")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}
